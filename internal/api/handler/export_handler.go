package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/service"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportRoomAvailability 导出教室周可用性
// GET /api/v1/export/rooms/:id/availability
func (h *ExportHandler) ExportRoomAvailability(c *gin.Context) {
	id, ok := PathID(c, "教室")
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportRoomAvailability(c.Request.Context(), id)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeXLSX(c, buf, filename)
}

// ExportDepartmentSections 导出院系班级名册
// GET /api/v1/export/departments/:id/sections
func (h *ExportHandler) ExportDepartmentSections(c *gin.Context) {
	id, ok := PathID(c, "院系")
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportDepartmentSections(c.Request.Context(), id)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeXLSX(c, buf, filename)
}

// writeXLSX 设置下载响应头
func writeXLSX(c *gin.Context, buf *bytes.Buffer, filename string) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		response.NotFound(c, 18001, "教室不存在")
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.NotFound(c, 18002, "院系不存在")
	case errors.Is(err, service.ErrExportNoSections):
		response.NotFound(c, 18003, "该院系暂无班级")
	case errors.Is(err, service.ErrCorruptAvailability):
		response.Error(c, http.StatusInternalServerError, 18004, "教室可用性数据损坏，无法导出")
	default:
		response.InternalError(c)
	}
}
