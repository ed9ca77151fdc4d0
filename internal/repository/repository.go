package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	University      UniversityRepository
	School          SchoolRepository
	Department      DepartmentRepository
	Room            RoomRepository
	Scheme          SchemeRepository
	Section         SectionRepository
	PlannerSettings PlannerSettingsRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		University:      NewUniversityRepo(db),
		School:          NewSchoolRepo(db),
		Department:      NewDepartmentRepo(db),
		Room:            NewRoomRepo(db),
		Scheme:          NewSchemeRepo(db),
		Section:         NewSectionRepo(db),
		PlannerSettings: NewPlannerSettingsRepo(db),
	}
}
