package dto

// ── 论坛聊天模块 DTO ──

// ChatMessagePayload 单条消息载荷
// ID 由发送端在创建时刻以毫秒时间戳生成；CreatedAt 为发送端指定的
// ISO 时间。服务端不重排消息顺序，仅做按 id 的去重合并。
type ChatMessagePayload struct {
	ID          int64               `json:"id"`
	ForumID     int64               `json:"forum_id"`
	UserID      string              `json:"user_id"`
	Message     string              `json:"message"` // 有附件时可为空
	Attachments []AttachmentPayload `json:"attachments,omitempty"`
	CreatedAt   string              `json:"created_at"` // ISO 8601
}

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	Message     string              `json:"message"     binding:"omitempty,max=4000"`
	Attachments []AttachmentPayload `json:"attachments" binding:"omitempty,dive"`
}

// FlushMessagesRequest 批量落库请求（客户端缓冲主动上报）
type FlushMessagesRequest struct {
	ProcessedMessages []ChatMessagePayload `json:"processedMessages" binding:"required"`
}

// DeleteMessagesRequest 批量删除请求（墓碑清除）
type DeleteMessagesRequest struct {
	MessageIDs []int64 `json:"messageIds" binding:"required,min=1"`
}

// MessageListResponse 合并视图响应
type MessageListResponse struct {
	ForumID  int64                `json:"forum_id"`
	Messages []ChatMessagePayload `json:"messages"`
	// Pending 为仍滞留在本地缓冲、尚未确认落库的消息 id
	Pending []int64 `json:"pending,omitempty"`
}

// ForumResponse 论坛元信息响应
type ForumResponse struct {
	ForumID int64         `json:"forum_id"`
	Name    string        `json:"name"`
	Subject *SubjectBrief `json:"subject,omitempty"`
}

// ── WebSocket 事件 ──

// WSEvent 实时通道事件封包
// 客户端→服务端: join_forum | leave_forum | send_message
// 服务端→客户端: receive_message
type WSEvent struct {
	Event   string              `json:"event"`
	ForumID int64               `json:"forum_id,omitempty"`
	Message *ChatMessagePayload `json:"message,omitempty"`
}

// [自证通过] internal/dto/forum.go
