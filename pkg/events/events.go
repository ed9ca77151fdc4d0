// Package events 定义领域事件载荷以及向 RabbitMQ 发布事件的 Publisher。
// 发布失败只记录日志并返回错误，由调用方决定是否忽略，不影响主请求流程。
package events

import (
	"context"
	"time"
)

// 队列名称
const (
	QueueSectionsCreated     = "sections.created"
	QueueAvailabilityChanged = "room.availability.changed"
)

// SectionsCreatedEvent 一次班级配置提交成功后发布
type SectionsCreatedEvent struct {
	DepartmentID   string            `json:"department_id"`
	DepartmentName string            `json:"department_name"`
	SchemeID       string            `json:"scheme_id"`
	BatchYearRange string            `json:"batch_year_range"`
	SectionIDs     map[string]string `json:"section_ids"` // local_id → section_id
	CreatedAt      time.Time         `json:"created_at"`
}

// AvailabilityChangedEvent 教室可用性变更后发布
type AvailabilityChangedEvent struct {
	RoomID         string    `json:"room_id"`
	AvailableSlots int       `json:"available_slots"`
	BlockedSlots   int       `json:"blocked_slots"`
	Summary        string    `json:"summary"`
	ChangedAt      time.Time `json:"changed_at"`
}

// Publisher 事件发布接口
type Publisher interface {
	Publish(ctx context.Context, queue string, event interface{}) error
	Close() error
}

// NopPublisher 未启用消息队列时使用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NopPublisher) Close() error                                       { return nil }
