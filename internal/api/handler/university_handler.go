package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/dto"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/service"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/response"
)

// ════════════════════════════════════════════════════════════
// UniversityHandler
// ════════════════════════════════════════════════════════════

// UniversityHandler 大学模块 HTTP 处理器
type UniversityHandler struct {
	universitySvc service.UniversityService
}

// NewUniversityHandler 创建 UniversityHandler
func NewUniversityHandler(universitySvc service.UniversityService) *UniversityHandler {
	return &UniversityHandler{universitySvc: universitySvc}
}

// ListUniversities 获取大学列表
// GET /api/v1/universities
func (h *UniversityHandler) ListUniversities(c *gin.Context) {
	list, err := h.universitySvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetUniversity 获取大学详情
// GET /api/v1/universities/:id
func (h *UniversityHandler) GetUniversity(c *gin.Context) {
	id, ok := PathID(c, "大学")
	if !ok {
		return
	}

	u, err := h.universitySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleUniversityError(c, err)
		return
	}

	response.OK(c, u)
}

// CreateUniversity 创建大学
// POST /api/v1/universities
func (h *UniversityHandler) CreateUniversity(c *gin.Context) {
	var req dto.CreateUniversityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	u, err := h.universitySvc.Create(c.Request.Context(), &req, OperatorID(c))
	if err != nil {
		h.handleUniversityError(c, err)
		return
	}

	response.Created(c, u)
}

// UpdateUniversity 更新大学
// PUT /api/v1/universities/:id
func (h *UniversityHandler) UpdateUniversity(c *gin.Context) {
	id, ok := PathID(c, "大学")
	if !ok {
		return
	}

	var req dto.UpdateUniversityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	u, err := h.universitySvc.Update(c.Request.Context(), id, &req, OperatorID(c))
	if err != nil {
		h.handleUniversityError(c, err)
		return
	}

	response.OK(c, u)
}

// DeleteUniversity 删除大学
// DELETE /api/v1/universities/:id
func (h *UniversityHandler) DeleteUniversity(c *gin.Context) {
	id, ok := PathID(c, "大学")
	if !ok {
		return
	}

	if err := h.universitySvc.Delete(c.Request.Context(), id, OperatorID(c)); err != nil {
		h.handleUniversityError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *UniversityHandler) handleUniversityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUniversityNotFound):
		response.NotFound(c, 11001, "大学不存在")
	default:
		response.InternalError(c)
	}
}

// ════════════════════════════════════════════════════════════
// SchoolHandler
// ════════════════════════════════════════════════════════════

// SchoolHandler 学院模块 HTTP 处理器
type SchoolHandler struct {
	schoolSvc service.SchoolService
}

// NewSchoolHandler 创建 SchoolHandler
func NewSchoolHandler(schoolSvc service.SchoolService) *SchoolHandler {
	return &SchoolHandler{schoolSvc: schoolSvc}
}

// ListSchools 获取学院列表
// GET /api/v1/schools?university_id=xxx
func (h *SchoolHandler) ListSchools(c *gin.Context) {
	var req dto.SchoolListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.schoolSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetSchool 获取学院详情
// GET /api/v1/schools/:id
func (h *SchoolHandler) GetSchool(c *gin.Context) {
	id, ok := PathID(c, "学院")
	if !ok {
		return
	}

	s, err := h.schoolSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleSchoolError(c, err)
		return
	}

	response.OK(c, s)
}

// CreateSchool 创建学院
// POST /api/v1/schools
func (h *SchoolHandler) CreateSchool(c *gin.Context) {
	var req dto.CreateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	s, err := h.schoolSvc.Create(c.Request.Context(), &req, OperatorID(c))
	if err != nil {
		h.handleSchoolError(c, err)
		return
	}

	response.Created(c, s)
}

// UpdateSchool 更新学院
// PUT /api/v1/schools/:id
func (h *SchoolHandler) UpdateSchool(c *gin.Context) {
	id, ok := PathID(c, "学院")
	if !ok {
		return
	}

	var req dto.UpdateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	s, err := h.schoolSvc.Update(c.Request.Context(), id, &req, OperatorID(c))
	if err != nil {
		h.handleSchoolError(c, err)
		return
	}

	response.OK(c, s)
}

// DeleteSchool 删除学院
// DELETE /api/v1/schools/:id
func (h *SchoolHandler) DeleteSchool(c *gin.Context) {
	id, ok := PathID(c, "学院")
	if !ok {
		return
	}

	if err := h.schoolSvc.Delete(c.Request.Context(), id, OperatorID(c)); err != nil {
		h.handleSchoolError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *SchoolHandler) handleSchoolError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSchoolNotFound):
		response.NotFound(c, 12001, "学院不存在")
	case errors.Is(err, service.ErrUniversityNotFound):
		response.NotFound(c, 12002, "所属大学不存在")
	default:
		response.InternalError(c)
	}
}
