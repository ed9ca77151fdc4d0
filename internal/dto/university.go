package dto

// ── 大学模块 DTO ──

// CreateUniversityRequest 创建大学请求
type CreateUniversityRequest struct {
	Name     string `json:"name"     binding:"required,min=2,max=150"`
	Location string `json:"location" binding:"omitempty,max=200"`
}

// UpdateUniversityRequest 更新大学请求
type UpdateUniversityRequest struct {
	Name     *string `json:"name"     binding:"omitempty,min=2,max=150"`
	Location *string `json:"location" binding:"omitempty,max=200"`
}

// UniversityResponse 大学信息响应
type UniversityResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ── 学院模块 DTO ──

// CreateSchoolRequest 创建学院请求
type CreateSchoolRequest struct {
	UniversityID string `json:"university_id" binding:"required,uuid"`
	Name         string `json:"name"          binding:"required,min=2,max=150"`
}

// UpdateSchoolRequest 更新学院请求
type UpdateSchoolRequest struct {
	Name *string `json:"name" binding:"omitempty,min=2,max=150"`
}

// SchoolListRequest 学院列表查询参数
type SchoolListRequest struct {
	UniversityID string `form:"university_id" binding:"omitempty,uuid"`
}

// SchoolResponse 学院信息响应
type SchoolResponse struct {
	ID             string `json:"id"`
	UniversityID   string `json:"university_id"`
	UniversityName string `json:"university_name,omitempty"`
	Name           string `json:"name"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}
