package model

import "time"

// ── 槽位标签常量 ──

const (
	SlotTagLecture = "Lecture"
	SlotTagLab     = "Lab"
	SlotTagSeminar = "Seminar"
)

// TimeTable 课表表 — 对应 time_tables
type TimeTable struct {
	TimeTableID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"time_table_id"`
	ClassID     string `gorm:"type:uuid;not null"                             json:"class_id"`
	Name        string `gorm:"type:varchar(100);not null;default:''"          json:"name"`
	IsActive    bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	// 关联
	Class *Class          `gorm:"foreignKey:ClassID;references:ClassID"          json:"class,omitempty"`
	Slots []TimeTableSlot `gorm:"foreignKey:TimeTableID;references:TimeTableID"  json:"slots,omitempty"`
}

// TableName 指定表名
func (TimeTable) TableName() string { return "time_tables" }

// TimeTableSlot 课表槽位表 — 对应 time_table_slots
//
// day 取 1-6（周一~周六）；start_index/end_index 为 0-11 的小时序号，
// 槽位占据半开区间 [start_index, end_index) 内的所有网格单元。
// 同一课表同一天的槽位区间不得重叠（Service 层保存时校验）。
type TimeTableSlot struct {
	SlotID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"slot_id"`
	TimeTableID string    `gorm:"type:uuid;not null"                             json:"time_table_id"`
	Day         int       `gorm:"type:smallint;not null"                         json:"day"`
	StartIndex  int       `gorm:"type:smallint;not null"                         json:"start_index"`
	EndIndex    int       `gorm:"type:smallint;not null"                         json:"end_index"`
	Title       string    `gorm:"type:varchar(100);not null"                     json:"title"` // 科目名或 "Break"/"Non Academic"
	Tag         string    `gorm:"type:varchar(20);not null;default:'Lecture'"    json:"tag"`   // Lecture | Lab | Seminar
	Location    string    `gorm:"type:varchar(100);not null;default:''"          json:"location"`
	Remarks     string    `gorm:"type:varchar(200);not null;default:''"          json:"remarks"`
	SubjectID   *string   `gorm:"type:uuid"                                      json:"subject_id,omitempty"`
	FacultyID   *string   `gorm:"type:uuid"                                      json:"faculty_id,omitempty"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
	Faculty *User    `gorm:"foreignKey:FacultyID;references:UserID"    json:"faculty,omitempty"`
}

// TableName 指定表名
func (TimeTableSlot) TableName() string { return "time_table_slots" }

// [自证通过] internal/model/timetable.go
