package dto

// ── 课程方案模块 DTO ──

// CreateSchemeRequest 创建课程方案请求
type CreateSchemeRequest struct {
	UniversityID   string `json:"university_id"    binding:"required,uuid"`
	Name           string `json:"name"             binding:"required,min=2,max=100"`
	BatchYearRange string `json:"batch_year_range" binding:"required,len=9"` // 例如 2024-2028
}

// UpdateSchemeRequest 更新课程方案请求
type UpdateSchemeRequest struct {
	Name           *string `json:"name"             binding:"omitempty,min=2,max=100"`
	BatchYearRange *string `json:"batch_year_range" binding:"omitempty,len=9"`
	IsActive       *bool   `json:"is_active"`
}

// SchemeListRequest 课程方案列表查询参数
type SchemeListRequest struct {
	UniversityID    string `form:"university_id"    binding:"omitempty,uuid"`
	IncludeInactive bool   `form:"include_inactive"`
}

// SchemeResponse 课程方案响应
type SchemeResponse struct {
	ID             string `json:"id"`
	UniversityID   string `json:"university_id"`
	Name           string `json:"name"`
	BatchYearRange string `json:"batch_year_range"`
	IsActive       bool   `json:"is_active"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}
