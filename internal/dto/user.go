package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	ClassID      string `form:"class_id"      binding:"omitempty,uuid"`
	Role         string `form:"role"          binding:"omitempty,oneof=student faculty department_admin dean principal"`
	Keyword      string `form:"keyword"       binding:"omitempty,max=50"`
}

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Name         string  `json:"name"          binding:"required,min=2,max=50"`
	Email        string  `json:"email"         binding:"required,email"`
	Password     string  `json:"password"      binding:"required,min=8,max=20"`
	Role         string  `json:"role"          binding:"required,oneof=student faculty department_admin dean principal"`
	RollNo       string  `json:"roll_no"       binding:"omitempty,max=20"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
	ClassID      *string `json:"class_id"      binding:"omitempty,uuid"`
}

// UpdateUserRequest 更新用户信息请求
type UpdateUserRequest struct {
	Name         *string `json:"name"          binding:"omitempty,min=2,max=50"`
	Email        *string `json:"email"         binding:"omitempty,email"`
	RollNo       *string `json:"roll_no"       binding:"omitempty,max=20"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
	ClassID      *string `json:"class_id"      binding:"omitempty,uuid"`
}

// AssignRoleRequest 分配角色请求
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=student faculty department_admin dean principal"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	RollNo     string           `json:"roll_no,omitempty"`
	Role       string           `json:"role"`
	Department *DepartmentBrief `json:"department,omitempty"`
	Class      *ClassBrief      `json:"class,omitempty"`
}

// UserDetailResponse 用户详细信息（GET /auth/me）
type UserDetailResponse struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	RollNo     string           `json:"roll_no,omitempty"`
	Role       string           `json:"role"`
	Department *DepartmentBrief `json:"department,omitempty"`
	Class      *ClassBrief      `json:"class,omitempty"`
	CreatedAt  string           `json:"created_at"`
}

// [自证通过] internal/dto/user.go
