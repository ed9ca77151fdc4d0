package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/service"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/response"
)

// TimetableHandler 外部排课结果查询
type TimetableHandler struct {
	timetableSvc service.TimetableService
}

// NewTimetableHandler 创建 TimetableHandler
func NewTimetableHandler(timetableSvc service.TimetableService) *TimetableHandler {
	return &TimetableHandler{timetableSvc: timetableSvc}
}

// GetTimetable 获取排课结果，优先读取缓存
// GET /api/v1/timetables/:id
func (h *TimetableHandler) GetTimetable(c *gin.Context) {
	id, ok := PathID(c, "课表")
	if !ok {
		return
	}

	result, err := h.timetableSvc.Get(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTimetableNotFound):
			response.NotFound(c, 17001, "课表不存在")
		case errors.Is(err, service.ErrTimetableUpstream):
			response.BadGateway(c, 17002, "排课服务暂不可用")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}
