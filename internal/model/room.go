package model

import (
	"fmt"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/availability"
)

// Room 教室表 — 对应 rooms
// Availability 为 72 个 0/1（0 = 可用），见 availability 包
type Room struct {
	RoomID          string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"room_id"`
	UniversityID    string   `gorm:"type:uuid;not null;index"                       json:"university_id"`
	Name            string   `gorm:"type:varchar(100);not null"                     json:"name"`
	RoomNumber      string   `gorm:"type:varchar(30)"                               json:"room_number,omitempty"`
	Capacity        int      `gorm:"not null;default:0"                             json:"capacity"`
	IsLab           bool     `gorm:"not null;default:false"                         json:"is_lab"`
	AcademicBlockID string   `gorm:"type:varchar(64);index"                         json:"academic_block_id,omitempty"`
	Availability    IntArray `gorm:"type:int[];not null"                            json:"availability"`
	VersionedModel
}

// TableName 指定表名
func (Room) TableName() string { return "rooms" }

// AvailabilityGrid 解析存储的可用性；空数组视为尚未配置（全部可用），长度或取值非法时返回错误
func (r Room) AvailabilityGrid() (availability.Grid, error) {
	g, err := availability.FromSlice(r.Availability)
	if err != nil {
		return g, fmt.Errorf("room %s: %w", r.RoomID, err)
	}
	return g, nil
}

func (r Room) SeatCapacity() int { return r.Capacity }
func (r Room) Lab() bool         { return r.IsLab }
func (r Room) BlockID() string   { return r.AcademicBlockID }
