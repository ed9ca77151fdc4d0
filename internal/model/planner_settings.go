package model

// PlannerSettings 班级规划默认参数 — 对应 planner_settings（单行强类型）
type PlannerSettings struct {
	Singleton                bool `gorm:"primaryKey;default:true" json:"-"`
	DefaultBatchesPerSection int  `gorm:"not null;default:2"      json:"default_batches_per_section"`
	MaxSections              int  `gorm:"not null;default:26"     json:"max_sections"`
	MaxBatchesPerSection     int  `gorm:"not null;default:6"      json:"max_batches_per_section"`
	BaseModel
}

// TableName 指定表名
func (PlannerSettings) TableName() string { return "planner_settings" }
