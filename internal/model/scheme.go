package model

// Scheme 课程方案表 — 对应 schemes
type Scheme struct {
	SchemeID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"scheme_id"`
	UniversityID   string `gorm:"type:uuid;not null;index"                       json:"university_id"`
	Name           string `gorm:"type:varchar(100);not null"                     json:"name"`
	BatchYearRange string `gorm:"type:varchar(20);not null"                      json:"batch_year_range"` // 例如 "2024-2028"
	IsActive       bool   `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel
}

// TableName 指定表名
func (Scheme) TableName() string { return "schemes" }
