package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrUpstreamUnavailable 外部依赖（排课服务、消息队列等）不可用
var ErrUpstreamUnavailable = errors.New("外部服务暂不可用")
