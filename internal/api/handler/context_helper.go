package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/availability"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/capacity"
	pkgerrors "github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/errors"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/response"
)

// OperatorKey 由 middleware.Operator 注入的操作人 ID
const OperatorKey = "operator_id"

// OperatorID 从 Gin 上下文中提取操作人 ID，未提供时返回空串。
// 空串写入 created_by/updated_by 时保持 NULL。
func OperatorID(c *gin.Context) string {
	v, exists := c.Get(OperatorKey)
	if !exists {
		return ""
	}
	s, _ := v.(string)
	return s
}

// PathID 读取路径参数 :id，为空时写入 400 响应
func PathID(c *gin.Context, label string) (string, bool) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, label+"ID不能为空")
		return "", false
	}
	return id, true
}

// handleCommonError 处理跨模块的通用错误，已写入响应时返回 true
func handleCommonError(c *gin.Context, err error) bool {
	var rangeErr *availability.RangeError
	switch {
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10006, "数据已被其他操作修改，请刷新后重试")
	case errors.As(err, &rangeErr):
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "时段坐标越界", rangeErr.Error())
	case errors.Is(err, availability.ErrInvalidGrid):
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "可用性数据不合法", err.Error())
	case errors.Is(err, capacity.ErrInvalidArgument):
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
	default:
		return false
	}
	return true
}
