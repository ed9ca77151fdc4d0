package dto

// ── 班级规划 DTO ──

// PlanSectionsRequest 预览班级划分；未指定的参数取院系人数与规划默认值
type PlanSectionsRequest struct {
	DepartmentID      string `json:"department_id"       binding:"required,uuid"`
	SectionCount      int    `json:"section_count"       binding:"required,min=1"`
	BatchesPerSection int    `json:"batches_per_section" binding:"omitempty,min=1"`
	TotalStudents     *int   `json:"total_students"      binding:"omitempty,min=0"`
}

// PlanSectionsResponse 班级划分预览
type PlanSectionsResponse struct {
	DepartmentID   string              `json:"department_id"`
	DepartmentName string              `json:"department_name"`
	TotalStudents  int                 `json:"total_students"`
	Sections       []SectionConfigItem `json:"sections"`
}

// SectionConfigRequest 提交班级配置；已有 section_id 的条目视为已持久化，不会重复创建
type SectionConfigRequest struct {
	DepartmentID   string              `json:"department_id"    binding:"required,uuid"`
	DepartmentName string              `json:"department_name"  binding:"omitempty,max=100"`
	BatchYearRange string              `json:"batch_year_range" binding:"required,len=9"`
	SchemeID       string              `json:"scheme_id"        binding:"required,uuid"`
	Sections       []SectionConfigItem `json:"sections"         binding:"required,min=1,dive"`
}

// SectionConfigItem 配置中的单个班级
type SectionConfigItem struct {
	LocalID       string          `json:"local_id,omitempty"`
	SectionID     string          `json:"section_id,omitempty" binding:"omitempty,uuid"`
	Name          string          `json:"name"                 binding:"required,max=10"`
	NumBatches    int             `json:"num_batches"          binding:"required,min=1"`
	TotalCount    int             `json:"total_count"          binding:"min=0"`
	PreferredRoom string          `json:"preferred_room,omitempty" binding:"omitempty,max=100"`
	Batches       []BatchResponse `json:"batches,omitempty"`
}

// SectionConfigResponse 提交结果：local_id → section_id
type SectionConfigResponse struct {
	Created  map[string]string `json:"created"`
	Skipped  []string          `json:"skipped,omitempty"`
	Sections []SectionResponse `json:"sections"`
}

// ── 班级管理 DTO ──

// SectionListRequest 班级列表查询参数
type SectionListRequest struct {
	DepartmentID   string `form:"department_id"    binding:"omitempty,uuid"`
	SchemeID       string `form:"scheme_id"        binding:"omitempty,uuid"`
	BatchYearRange string `form:"batch_year_range"`
}

// SectionResponse 班级信息响应
type SectionResponse struct {
	ID             string          `json:"id"`
	DepartmentID   string          `json:"department_id"`
	SchemeID       string          `json:"scheme_id"`
	BatchYearRange string          `json:"batch_year_range"`
	Name           string          `json:"name"`
	TotalCount     int             `json:"total_count"`
	PreferredRoom  string          `json:"preferred_room,omitempty"`
	Batches        []BatchResponse `json:"batches"`
	Version        int             `json:"version"`
	CreatedAt      string          `json:"created_at,omitempty"`
	UpdatedAt      string          `json:"updated_at,omitempty"`
}

// BatchResponse 分组信息
type BatchResponse struct {
	ID            string `json:"id,omitempty"`
	Position      int    `json:"position"`
	Name          string `json:"name"`
	Count         int    `json:"count"`
	PreferredRoom string `json:"preferred_room,omitempty"`
}

// RenameSectionRequest 重命名班级（分组名随之级联）
type RenameSectionRequest struct {
	Name string `json:"name" binding:"required,max=10"`
	VersionedRequest
}

// ResizeBatchesRequest 调整分组数量
type ResizeBatchesRequest struct {
	NumBatches int `json:"num_batches" binding:"required,min=1"`
	VersionedRequest
}

// RedistributeRequest 修改班级总人数并重新均分
type RedistributeRequest struct {
	TotalCount *int `json:"total_count" binding:"required,min=0"`
	VersionedRequest
}

// UpdateBatchRoomRequest 设置分组偏好教室，空字符串表示清除
type UpdateBatchRoomRequest struct {
	PreferredRoom string `json:"preferred_room" binding:"omitempty,max=100"`
	VersionedRequest
}

// DistributeDepartmentRequest 将院系总人数重新分配到已有班级
type DistributeDepartmentRequest struct {
	SchemeID       string `json:"scheme_id"        binding:"required,uuid"`
	BatchYearRange string `json:"batch_year_range" binding:"required,len=9"`
	TotalStudents  *int   `json:"total_students"   binding:"omitempty,min=0"`
}
