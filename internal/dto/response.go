package dto

// ── 通用响应 ──

// IDResponse 仅返回资源 ID
type IDResponse struct {
	ID string `json:"id"`
}

// VersionedRequest 携带客户端读取时的版本号；为 0 时以服务端当前版本为准
type VersionedRequest struct {
	Version int `json:"version" binding:"omitempty,min=1"`
}
