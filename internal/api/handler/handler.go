package handler

import "github.com/Rohitrode264/SchedulizerEMS--sub000/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	University *UniversityHandler
	School     *SchoolHandler
	Department *DepartmentHandler
	Scheme     *SchemeHandler
	Room       *RoomHandler
	Section    *SectionHandler
	Settings   *PlannerSettingsHandler
	Timetable  *TimetableHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		University: NewUniversityHandler(svc.University),
		School:     NewSchoolHandler(svc.School),
		Department: NewDepartmentHandler(svc.Department),
		Scheme:     NewSchemeHandler(svc.Scheme),
		Room:       NewRoomHandler(svc.Room),
		Section:    NewSectionHandler(svc.Section),
		Settings:   NewPlannerSettingsHandler(svc.Settings),
		Timetable:  NewTimetableHandler(svc.Timetable),
		Export:     NewExportHandler(svc.Export),
	}
}
