package model

// Department 院系表 — 对应 departments
type Department struct {
	DepartmentID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"department_id"`
	SchoolID      string `gorm:"type:uuid;not null;index"                       json:"school_id"`
	Name          string `gorm:"type:varchar(100);not null"                     json:"name"`
	Code          string `gorm:"type:varchar(20)"                               json:"code,omitempty"`
	TotalStudents int    `gorm:"not null;default:0"                             json:"total_students"`
	IsActive      bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	// 关联
	School *School `gorm:"foreignKey:SchoolID;references:SchoolID" json:"school,omitempty"`
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }
