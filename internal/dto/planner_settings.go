package dto

// ── 规划参数 DTO ──

// UpdatePlannerSettingsRequest 更新规划默认参数请求
type UpdatePlannerSettingsRequest struct {
	DefaultBatchesPerSection *int `json:"default_batches_per_section" binding:"omitempty,min=1,max=26"`
	MaxSections              *int `json:"max_sections"                binding:"omitempty,min=1,max=702"`
	MaxBatchesPerSection     *int `json:"max_batches_per_section"     binding:"omitempty,min=1,max=26"`
}

// PlannerSettingsResponse 规划默认参数响应
type PlannerSettingsResponse struct {
	DefaultBatchesPerSection int    `json:"default_batches_per_section"`
	MaxSections              int    `json:"max_sections"`
	MaxBatchesPerSection     int    `json:"max_batches_per_section"`
	UpdatedAt                string `json:"updated_at"`
}
