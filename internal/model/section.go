package model

// Section 班级表 — 对应 sections
// 不变式：TotalCount == Σ Batches.Count；Batches 按 Position 升序
type Section struct {
	SectionID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"section_id"`
	DepartmentID   string `gorm:"type:uuid;not null"                             json:"department_id"`
	SchemeID       string `gorm:"type:uuid;not null"                             json:"scheme_id"`
	BatchYearRange string `gorm:"type:varchar(20);not null"                      json:"batch_year_range"`
	Name           string `gorm:"type:varchar(10);not null"                      json:"name"`
	TotalCount     int    `gorm:"not null;default:0"                             json:"total_count"`
	PreferredRoom  string `gorm:"type:varchar(100)"                              json:"preferred_room,omitempty"`
	VersionedModel

	Batches []Batch `gorm:"foreignKey:SectionID;references:SectionID" json:"batches,omitempty"`
}

// TableName 指定表名
func (Section) TableName() string { return "sections" }

// Batch 实验分组表 — 对应 batches，名称由所属班级名与 Position 推导
type Batch struct {
	BatchID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"batch_id"`
	SectionID     string `gorm:"type:uuid;not null"                             json:"section_id"`
	Position      int    `gorm:"not null"                                       json:"position"`
	Name          string `gorm:"type:varchar(16);not null"                      json:"name"`
	Count         int    `gorm:"not null;default:0"                             json:"count"`
	PreferredRoom string `gorm:"type:varchar(100)"                              json:"preferred_room,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Batch) TableName() string { return "batches" }
