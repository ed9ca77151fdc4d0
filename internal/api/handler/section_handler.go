package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/dto"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/service"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/response"
)

// SectionHandler 班级规划模块 HTTP 处理器
type SectionHandler struct {
	sectionSvc service.SectionService
}

// NewSectionHandler 创建 SectionHandler
func NewSectionHandler(sectionSvc service.SectionService) *SectionHandler {
	return &SectionHandler{sectionSvc: sectionSvc}
}

// PlanSections 预览院系班级划分（不落库）
// POST /api/v1/sections/plan
func (h *SectionHandler) PlanSections(c *gin.Context) {
	var req dto.PlanSectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.sectionSvc.Plan(c.Request.Context(), &req)
	if err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.OK(c, result)
}

// SubmitConfig 提交班级配置，仅创建尚未持久化的班级
// POST /api/v1/sections/config
func (h *SectionHandler) SubmitConfig(c *gin.Context) {
	var req dto.SectionConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.sectionSvc.SubmitConfig(c.Request.Context(), &req, OperatorID(c))
	if err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.Created(c, result)
}

// ListSections 获取班级列表
// GET /api/v1/sections?department_id=xxx&scheme_id=xxx&batch_year_range=2024-2028
func (h *SectionHandler) ListSections(c *gin.Context) {
	var req dto.SectionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.sectionSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetSection 获取班级详情
// GET /api/v1/sections/:id
func (h *SectionHandler) GetSection(c *gin.Context) {
	id, ok := PathID(c, "班级")
	if !ok {
		return
	}

	sec, err := h.sectionSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.OK(c, sec)
}

// RenameSection 重命名班级，分组名级联更新
// PUT /api/v1/sections/:id/name
func (h *SectionHandler) RenameSection(c *gin.Context) {
	id, ok := PathID(c, "班级")
	if !ok {
		return
	}

	var req dto.RenameSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sec, err := h.sectionSvc.Rename(c.Request.Context(), id, &req, OperatorID(c))
	if err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.OK(c, sec)
}

// ResizeBatches 调整分组数量
// PUT /api/v1/sections/:id/batches
func (h *SectionHandler) ResizeBatches(c *gin.Context) {
	id, ok := PathID(c, "班级")
	if !ok {
		return
	}

	var req dto.ResizeBatchesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sec, err := h.sectionSvc.ResizeBatches(c.Request.Context(), id, &req, OperatorID(c))
	if err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.OK(c, sec)
}

// Redistribute 修改班级总人数并重新均分
// PUT /api/v1/sections/:id/total
func (h *SectionHandler) Redistribute(c *gin.Context) {
	id, ok := PathID(c, "班级")
	if !ok {
		return
	}

	var req dto.RedistributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sec, err := h.sectionSvc.Redistribute(c.Request.Context(), id, &req, OperatorID(c))
	if err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.OK(c, sec)
}

// UpdateBatchRoom 设置分组偏好教室
// PUT /api/v1/sections/:id/batches/:position/room
func (h *SectionHandler) UpdateBatchRoom(c *gin.Context) {
	id, ok := PathID(c, "班级")
	if !ok {
		return
	}
	position, err := strconv.Atoi(c.Param("position"))
	if err != nil {
		response.BadRequest(c, 10001, "分组位置必须为整数")
		return
	}

	var req dto.UpdateBatchRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sec, err := h.sectionSvc.UpdateBatchRoom(c.Request.Context(), id, position, &req, OperatorID(c))
	if err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.OK(c, sec)
}

// DistributeDepartment 将院系总人数重新分配到全部班级与分组
// POST /api/v1/departments/:id/sections/distribute
func (h *SectionHandler) DistributeDepartment(c *gin.Context) {
	id, ok := PathID(c, "院系")
	if !ok {
		return
	}

	var req dto.DistributeDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.sectionSvc.DistributeDepartment(c.Request.Context(), id, &req, OperatorID(c))
	if err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// DeleteSection 删除班级及其分组
// DELETE /api/v1/sections/:id
func (h *SectionHandler) DeleteSection(c *gin.Context) {
	id, ok := PathID(c, "班级")
	if !ok {
		return
	}

	if err := h.sectionSvc.Delete(c.Request.Context(), id, OperatorID(c)); err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleSectionError 统一处理班级模块业务错误
func (h *SectionHandler) handleSectionError(c *gin.Context, err error) {
	// 不变式错误包裹了 capacity.ErrInvariantViolation，须先于通用错误判断
	if errors.Is(err, service.ErrSectionInvariant) {
		response.ErrorWithDetails(c, http.StatusInternalServerError, 16009, "班级人数或分组命名不一致", err.Error())
		return
	}
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrSectionNotFound):
		response.NotFound(c, 16001, "班级不存在")
	case errors.Is(err, service.ErrSectionNameExists):
		response.Conflict(c, 16002, "班级名称重复")
	case errors.Is(err, service.ErrSectionLimitExceeded):
		response.BadRequest(c, 16003, "班级或分组数量超过上限")
	case errors.Is(err, service.ErrBatchNotFound):
		response.NotFound(c, 16004, "分组不存在")
	case errors.Is(err, service.ErrNoSectionsToDivide):
		response.BadRequest(c, 16005, "院系在该方案与届别下没有班级")
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.NotFound(c, 16006, "院系不存在")
	case errors.Is(err, service.ErrDepartmentInactive):
		response.BadRequest(c, 16007, "院系已停用")
	case errors.Is(err, service.ErrSchemeNotFound):
		response.NotFound(c, 16008, "课程方案不存在")
	case errors.Is(err, service.ErrInvalidBatchYearRange):
		response.BadRequest(c, 16010, "届别格式应为 YYYY-YYYY")
	default:
		response.InternalError(c)
	}
}
