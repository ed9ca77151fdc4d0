package capacity

import "github.com/google/uuid"

// Identity 班级标识：尚未持久化的本地草稿，或已由存储分配的 ID。
type Identity interface {
	// Key 返回用于日志与响应映射的字符串
	Key() string
	isIdentity()
}

// Pending 客户端/规划阶段生成的临时标识
type Pending struct {
	LocalID string
}

// Persisted 已持久化的班级 ID
type Persisted struct {
	RemoteID string
}

func (p Pending) Key() string   { return p.LocalID }
func (p Persisted) Key() string { return p.RemoteID }

func (Pending) isIdentity()   {}
func (Persisted) isIdentity() {}

// NewPending 生成一个新的临时标识
func NewPending() Pending {
	return Pending{LocalID: uuid.NewString()}
}

// IsPending 判断是否为未持久化的草稿
func IsPending(id Identity) bool {
	_, ok := id.(Pending)
	return ok
}

// PendingOnly 过滤出尚未持久化的班级，提交“创建”请求时只包含这些，避免重复创建
func PendingOnly(sections []Section) []Section {
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		if s.ID == nil || IsPending(s.ID) {
			out = append(out, s)
		}
	}
	return out
}
