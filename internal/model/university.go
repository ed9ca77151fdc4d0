package model

// University 大学表 — 对应 universities
type University struct {
	UniversityID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"university_id"`
	Name         string `gorm:"type:varchar(150);not null"                     json:"name"`
	Location     string `gorm:"type:varchar(200)"                              json:"location,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (University) TableName() string { return "universities" }

// School 学院表 — 对应 schools
type School struct {
	SchoolID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"school_id"`
	UniversityID string `gorm:"type:uuid;not null;index"                       json:"university_id"`
	Name         string `gorm:"type:varchar(150);not null"                     json:"name"`
	SoftDeleteModel

	University *University `gorm:"foreignKey:UniversityID;references:UniversityID" json:"university,omitempty"`
}

// TableName 指定表名
func (School) TableName() string { return "schools" }
