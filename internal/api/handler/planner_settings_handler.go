package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/dto"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/service"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/response"
)

// PlannerSettingsHandler 规划参数 HTTP 处理器
type PlannerSettingsHandler struct {
	settingsSvc service.PlannerSettingsService
}

// NewPlannerSettingsHandler 创建 PlannerSettingsHandler
func NewPlannerSettingsHandler(settingsSvc service.PlannerSettingsService) *PlannerSettingsHandler {
	return &PlannerSettingsHandler{settingsSvc: settingsSvc}
}

// GetSettings 获取规划参数
// GET /api/v1/settings/planner
func (h *PlannerSettingsHandler) GetSettings(c *gin.Context) {
	result, err := h.settingsSvc.Get(c.Request.Context())
	if err != nil {
		h.handleSettingsError(c, err)
		return
	}

	response.OK(c, result)
}

// UpdateSettings 更新规划参数
// PUT /api/v1/settings/planner
func (h *PlannerSettingsHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdatePlannerSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.settingsSvc.Update(c.Request.Context(), &req, OperatorID(c))
	if err != nil {
		h.handleSettingsError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *PlannerSettingsHandler) handleSettingsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPlannerSettingsNotFound):
		response.NotFound(c, 19001, "规划参数未初始化")
	case errors.Is(err, service.ErrPlannerSettingsInvalid):
		response.BadRequest(c, 19002, "默认分组数不能超过单班最大分组数")
	default:
		response.InternalError(c)
	}
}
