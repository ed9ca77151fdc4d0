package dto

import "github.com/Rohitrode264/SchedulizerEMS--sub000/internal/availability"

// ── 教室模块 DTO ──

// CreateRoomRequest 创建教室请求；availability 缺省为全部可用
type CreateRoomRequest struct {
	UniversityID    string `json:"university_id"     binding:"required,uuid"`
	Name            string `json:"name"              binding:"required,min=1,max=100"`
	RoomNumber      string `json:"room_number"       binding:"omitempty,max=30"`
	Capacity        int    `json:"capacity"          binding:"omitempty,min=0"`
	IsLab           bool   `json:"is_lab"`
	AcademicBlockID string `json:"academic_block_id" binding:"omitempty,max=64"`
	Availability    []int  `json:"availability"      binding:"omitempty,len=72,dive,oneof=0 1"`
}

// UpdateRoomRequest 更新教室基础信息请求
type UpdateRoomRequest struct {
	Name            *string `json:"name"              binding:"omitempty,min=1,max=100"`
	RoomNumber      *string `json:"room_number"       binding:"omitempty,max=30"`
	Capacity        *int    `json:"capacity"          binding:"omitempty,min=0"`
	IsLab           *bool   `json:"is_lab"`
	AcademicBlockID *string `json:"academic_block_id" binding:"omitempty,max=64"`
	VersionedRequest
}

// RoomListRequest 教室列表查询参数
type RoomListRequest struct {
	UniversityID    string `form:"university_id"     binding:"omitempty,uuid"`
	AcademicBlockID string `form:"academic_block_id"`
	IsLab           *bool  `form:"is_lab"`
	MinCapacity     int    `form:"capacity"          binding:"omitempty,min=0"`
}

// RoomResponse 教室信息响应
type RoomResponse struct {
	ID              string `json:"id"`
	UniversityID    string `json:"university_id"`
	Name            string `json:"name"`
	RoomNumber      string `json:"room_number,omitempty"`
	Capacity        int    `json:"capacity"`
	IsLab           bool   `json:"is_lab"`
	AcademicBlockID string `json:"academic_block_id,omitempty"`
	Availability    []int  `json:"availability"`
	Version         int    `json:"version"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// ── 可用性 ──

// ReplaceAvailabilityRequest 整体替换 72 时段可用性（0 = 可用，1 = 占用）
type ReplaceAvailabilityRequest struct {
	Availability []int `json:"availability" binding:"required,len=72,dive,oneof=0 1"`
	VersionedRequest
}

// ToggleSlotRequest 切换单个时段；Available 非空时直接设置为该值
type ToggleSlotRequest struct {
	Day       *int  `json:"day"       binding:"required,min=0,max=5"`
	Hour      *int  `json:"hour"      binding:"required,min=8,max=19"`
	Available *bool `json:"available"`
	VersionedRequest
}

// BulkAvailabilityRequest 批量设置可用性
type BulkAvailabilityRequest struct {
	Mode string `json:"mode" binding:"required,oneof=all-available all-blocked"`
	VersionedRequest
}

// AvailabilityResponse 教室可用性详情
type AvailabilityResponse struct {
	RoomID         string                         `json:"room_id"`
	RoomName       string                         `json:"room_name"`
	Availability   []int                          `json:"availability"`
	Matrix         []availability.DayAvailability `json:"matrix"`
	AvailableSlots int                            `json:"available_slots"`
	BlockedSlots   int                            `json:"blocked_slots"`
	Summary        string                         `json:"summary"`
	Version        int                            `json:"version"`
}

// AvailableRoomsRequest 可用教室查询参数，time_slot 为 0 起始的小时时段
type AvailableRoomsRequest struct {
	Day             *int   `form:"day"               binding:"required,min=0,max=5"`
	TimeSlot        *int   `form:"time_slot"         binding:"required,min=0,max=11"`
	Capacity        *int   `form:"capacity"          binding:"omitempty,min=0"`
	IsLab           *bool  `form:"is_lab"`
	AcademicBlockID string `form:"academic_block_id"`
	UniversityID    string `form:"university_id"     binding:"omitempty,uuid"`
}

// AvailableRoomsResponse 可用教室查询结果
type AvailableRoomsResponse struct {
	Day       int            `json:"day"`
	DayName   string         `json:"day_name"`
	Hour      int            `json:"hour"`
	SlotIndex int            `json:"slot_index"`
	Rooms     []RoomResponse `json:"rooms"`
}
