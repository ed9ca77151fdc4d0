package dto

// ── 院系模块 DTO ──

// CreateDepartmentRequest 创建院系请求
type CreateDepartmentRequest struct {
	SchoolID      string `json:"school_id"      binding:"required,uuid"`
	Name          string `json:"name"           binding:"required,min=2,max=100"`
	Code          string `json:"code"           binding:"omitempty,max=20"`
	TotalStudents int    `json:"total_students" binding:"omitempty,min=0"`
}

// UpdateDepartmentRequest 更新院系请求
type UpdateDepartmentRequest struct {
	Name          *string `json:"name"           binding:"omitempty,min=2,max=100"`
	Code          *string `json:"code"           binding:"omitempty,max=20"`
	TotalStudents *int    `json:"total_students" binding:"omitempty,min=0"`
	IsActive      *bool   `json:"is_active"`
	VersionedRequest
}

// DepartmentListRequest 院系列表查询参数
type DepartmentListRequest struct {
	SchoolID        string `form:"school_id"        binding:"omitempty,uuid"`
	IncludeInactive bool   `form:"include_inactive"`
}

// DepartmentDetailResponse 院系详细信息响应
type DepartmentDetailResponse struct {
	ID            string `json:"id"`
	SchoolID      string `json:"school_id"`
	SchoolName    string `json:"school_name,omitempty"`
	Name          string `json:"name"`
	Code          string `json:"code,omitempty"`
	TotalStudents int    `json:"total_students"`
	IsActive      bool   `json:"is_active"`
	SectionCount  int64  `json:"section_count"`
	Version       int    `json:"version"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}
