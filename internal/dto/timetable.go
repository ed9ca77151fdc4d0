package dto

import "encoding/json"

// ── 课表查询 ──

// TimetableResponse 外部排课服务生成的课表，data 原样透传
type TimetableResponse struct {
	ScheduleID string          `json:"schedule_id"`
	Source     string          `json:"source"` // cache / upstream
	Data       json.RawMessage `json:"data"`
}
