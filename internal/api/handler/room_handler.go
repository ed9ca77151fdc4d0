package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/availability"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/dto"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/service"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/response"
)

// RoomHandler 教室与可用性模块 HTTP 处理器
type RoomHandler struct {
	roomSvc service.RoomService
}

// NewRoomHandler 创建 RoomHandler
func NewRoomHandler(roomSvc service.RoomService) *RoomHandler {
	return &RoomHandler{roomSvc: roomSvc}
}

// ListRooms 获取教室列表
// GET /api/v1/rooms
func (h *RoomHandler) ListRooms(c *gin.Context) {
	var req dto.RoomListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	rooms, err := h.roomSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": rooms})
}

// GetRoom 获取教室详情
// GET /api/v1/rooms/:id
func (h *RoomHandler) GetRoom(c *gin.Context) {
	id, ok := PathID(c, "教室")
	if !ok {
		return
	}

	room, err := h.roomSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleRoomError(c, err)
		return
	}

	response.OK(c, room)
}

// CreateRoom 创建教室，未提供可用性时默认全部可用
// POST /api/v1/rooms
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	room, err := h.roomSvc.Create(c.Request.Context(), &req, OperatorID(c))
	if err != nil {
		h.handleRoomError(c, err)
		return
	}

	response.Created(c, room)
}

// UpdateRoom 更新教室基本信息
// PUT /api/v1/rooms/:id
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	id, ok := PathID(c, "教室")
	if !ok {
		return
	}

	var req dto.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	room, err := h.roomSvc.Update(c.Request.Context(), id, &req, OperatorID(c))
	if err != nil {
		h.handleRoomError(c, err)
		return
	}

	response.OK(c, room)
}

// DeleteRoom 删除教室
// DELETE /api/v1/rooms/:id
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	id, ok := PathID(c, "教室")
	if !ok {
		return
	}

	if err := h.roomSvc.Delete(c.Request.Context(), id, OperatorID(c)); err != nil {
		h.handleRoomError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── 可用性 ──

// GetAvailability 获取教室周可用性矩阵
// GET /api/v1/rooms/:id/availability
func (h *RoomHandler) GetAvailability(c *gin.Context) {
	id, ok := PathID(c, "教室")
	if !ok {
		return
	}

	result, err := h.roomSvc.GetAvailability(c.Request.Context(), id)
	if err != nil {
		h.handleRoomError(c, err)
		return
	}

	response.OK(c, result)
}

// ReplaceAvailability 整体替换 72 个时段
// PUT /api/v1/rooms/:id/availability
func (h *RoomHandler) ReplaceAvailability(c *gin.Context) {
	id, ok := PathID(c, "教室")
	if !ok {
		return
	}

	var req dto.ReplaceAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.roomSvc.ReplaceAvailability(c.Request.Context(), id, &req, OperatorID(c))
	if err != nil {
		h.handleRoomError(c, err)
		return
	}

	response.OK(c, result)
}

// ToggleSlot 切换单个时段
// PATCH /api/v1/rooms/:id/availability/slot
func (h *RoomHandler) ToggleSlot(c *gin.Context) {
	id, ok := PathID(c, "教室")
	if !ok {
		return
	}

	var req dto.ToggleSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.roomSvc.ToggleSlot(c.Request.Context(), id, &req, OperatorID(c))
	if err != nil {
		h.handleRoomError(c, err)
		return
	}

	response.OK(c, result)
}

// BulkSetAvailability 一键全部可用 / 全部占用
// PUT /api/v1/rooms/:id/availability/bulk
func (h *RoomHandler) BulkSetAvailability(c *gin.Context) {
	id, ok := PathID(c, "教室")
	if !ok {
		return
	}

	var req dto.BulkAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.roomSvc.BulkSetAvailability(c.Request.Context(), id, &req, OperatorID(c))
	if err != nil {
		h.handleRoomError(c, err)
		return
	}

	response.OK(c, result)
}

// FindAvailable 查询指定时段可用的教室
// GET /api/v1/rooms/available?day=0&time_slot=3&capacity=60&is_lab=false
func (h *RoomHandler) FindAvailable(c *gin.Context) {
	var req dto.AvailableRoomsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.roomSvc.FindAvailable(c.Request.Context(), &req)
	if err != nil {
		h.handleRoomError(c, err)
		return
	}

	response.OK(c, result)
}

// handleRoomError 统一处理教室模块业务错误
func (h *RoomHandler) handleRoomError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		response.NotFound(c, 14001, "教室不存在")
	case errors.Is(err, service.ErrInvalidAvailability):
		response.BadRequest(c, 14002, "可用性数据必须为 72 个 0/1 值")
	case errors.Is(err, availability.ErrUnknownMode):
		response.BadRequest(c, 14003, "未知的批量设置模式")
	case errors.Is(err, service.ErrCorruptAvailability):
		response.ErrorWithDetails(c, http.StatusInternalServerError, 14004, "教室可用性数据损坏，请整体重设", err.Error())
	default:
		response.InternalError(c)
	}
}
