package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/dto"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/service"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/response"
)

// SchemeHandler 课程方案模块 HTTP 处理器
type SchemeHandler struct {
	schemeSvc service.SchemeService
}

// NewSchemeHandler 创建 SchemeHandler
func NewSchemeHandler(schemeSvc service.SchemeService) *SchemeHandler {
	return &SchemeHandler{schemeSvc: schemeSvc}
}

// ListSchemes 获取课程方案列表
// GET /api/v1/schemes
func (h *SchemeHandler) ListSchemes(c *gin.Context) {
	var req dto.SchemeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.schemeSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetScheme 获取课程方案详情
// GET /api/v1/schemes/:id
func (h *SchemeHandler) GetScheme(c *gin.Context) {
	id, ok := PathID(c, "方案")
	if !ok {
		return
	}

	scheme, err := h.schemeSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleSchemeError(c, err)
		return
	}

	response.OK(c, scheme)
}

// CreateScheme 创建课程方案
// POST /api/v1/schemes
func (h *SchemeHandler) CreateScheme(c *gin.Context) {
	var req dto.CreateSchemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	scheme, err := h.schemeSvc.Create(c.Request.Context(), &req, OperatorID(c))
	if err != nil {
		h.handleSchemeError(c, err)
		return
	}

	response.Created(c, scheme)
}

// UpdateScheme 更新课程方案
// PUT /api/v1/schemes/:id
func (h *SchemeHandler) UpdateScheme(c *gin.Context) {
	id, ok := PathID(c, "方案")
	if !ok {
		return
	}

	var req dto.UpdateSchemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	scheme, err := h.schemeSvc.Update(c.Request.Context(), id, &req, OperatorID(c))
	if err != nil {
		h.handleSchemeError(c, err)
		return
	}

	response.OK(c, scheme)
}

// DeleteScheme 删除课程方案
// DELETE /api/v1/schemes/:id
func (h *SchemeHandler) DeleteScheme(c *gin.Context) {
	id, ok := PathID(c, "方案")
	if !ok {
		return
	}

	if err := h.schemeSvc.Delete(c.Request.Context(), id, OperatorID(c)); err != nil {
		h.handleSchemeError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *SchemeHandler) handleSchemeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSchemeNotFound):
		response.NotFound(c, 15001, "课程方案不存在")
	case errors.Is(err, service.ErrInvalidBatchYearRange):
		response.BadRequest(c, 15002, "届别格式应为 YYYY-YYYY")
	case errors.Is(err, service.ErrUniversityNotFound):
		response.NotFound(c, 15003, "所属大学不存在")
	default:
		response.InternalError(c)
	}
}
