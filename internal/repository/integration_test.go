//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	pkgerrors "univera/backend/pkg/errors"

	"univera/backend/internal/model"
	"univera/backend/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=univera password=univera_password dbname=univera_test sslmode=disable TimeZone=Asia/Kolkata"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 自动迁移测试表结构
	err = testDB.AutoMigrate(
		&model.Department{},
		&model.Course{},
		&model.Class{},
		&model.User{},
		&model.Subject{},
		&model.TimeTable{},
		&model.TimeTableSlot{},
		&model.Forum{},
		&model.ForumMessage{},
		&model.AttendanceRecord{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// setupTestData 创建基础测试数据并返回清理函数
func setupTestData(t *testing.T) (dept *model.Department, course *model.Course, class *model.Class, cleanup func()) {
	t.Helper()
	ctx := context.Background()

	dept = &model.Department{
		Name:     fmt.Sprintf("测试院系-%d", time.Now().UnixNano()),
		IsActive: true,
	}
	if err := testDB.WithContext(ctx).Create(dept).Error; err != nil {
		t.Fatalf("创建院系失败: %v", err)
	}

	course = &model.Course{
		DepartmentID:  dept.DepartmentID,
		Name:          fmt.Sprintf("测试专业-%d", time.Now().UnixNano()),
		Code:          "TST",
		TotalSemester: 8,
	}
	if err := testDB.WithContext(ctx).Create(course).Error; err != nil {
		t.Fatalf("创建专业失败: %v", err)
	}

	class = &model.Class{
		CourseID: course.CourseID,
		Name:     fmt.Sprintf("测试班级-%d", time.Now().UnixNano()),
		Semester: 3,
	}
	if err := testDB.WithContext(ctx).Create(class).Error; err != nil {
		t.Fatalf("创建班级失败: %v", err)
	}

	cleanup = func() {
		testDB.Unscoped().Where("class_id = ?", class.ClassID).Delete(&model.Class{})
		testDB.Unscoped().Where("course_id = ?", course.CourseID).Delete(&model.Course{})
		testDB.Unscoped().Where("department_id = ?", dept.DepartmentID).Delete(&model.Department{})
	}
	return
}

// ═══════════════════════════════════════════════════════════
// Test: Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestOptimisticLock_Department_ConflictDetected(t *testing.T) {
	dept, _, _, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// 模拟并发：获取两份副本
	copy1, _ := repo.Department.GetByID(ctx, dept.DepartmentID)
	copy2, _ := repo.Department.GetByID(ctx, dept.DepartmentID)

	// 第一次更新成功
	copy1.Description = "第一次更新"
	if err := repo.Department.Update(ctx, copy1); err != nil {
		t.Fatalf("第一次更新应成功: %v", err)
	}

	// 第二次更新应失败（version 已过期）
	copy2.Description = "第二次更新"
	err := repo.Department.Update(ctx, copy2)
	if err == nil {
		t.Fatal("期望乐观锁冲突错误，但更新成功了")
	}
	if err != pkgerrors.ErrOptimisticLock {
		t.Errorf("期望 ErrOptimisticLock，得到: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: TimeTable SaveWithSlots
// ═══════════════════════════════════════════════════════════

func TestTimeTable_SaveWithSlots_CreateAndReplace(t *testing.T) {
	_, _, class, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// 首次保存：创建课表 + 两个槽位
	tt := &model.TimeTable{ClassID: class.ClassID, Name: "第一版", IsActive: true}
	slots := []model.TimeTableSlot{
		{Day: 1, StartIndex: 0, EndIndex: 1, Title: "数学"},
		{Day: 2, StartIndex: 2, EndIndex: 4, Title: "物理实验", Tag: model.SlotTagLab},
	}
	if err := repo.TimeTable.SaveWithSlots(ctx, tt, slots); err != nil {
		t.Fatalf("首次保存失败: %v", err)
	}
	defer func() {
		testDB.Unscoped().Where("time_table_id = ?", tt.TimeTableID).Delete(&model.TimeTableSlot{})
		testDB.Unscoped().Where("time_table_id = ?", tt.TimeTableID).Delete(&model.TimeTable{})
	}()

	got, err := repo.TimeTable.GetActiveByClass(ctx, class.ClassID)
	if err != nil {
		t.Fatalf("查询生效课表失败: %v", err)
	}
	if len(got.Slots) != 2 {
		t.Fatalf("期望 2 个槽位，得到 %d 个", len(got.Slots))
	}

	// 二次保存：整体替换为一个槽位
	got.Name = "第二版"
	replacement := []model.TimeTableSlot{
		{Day: 3, StartIndex: 5, EndIndex: 6, Title: "化学"},
	}
	if err := repo.TimeTable.SaveWithSlots(ctx, got, replacement); err != nil {
		t.Fatalf("替换保存失败: %v", err)
	}

	got2, err := repo.TimeTable.GetByID(ctx, tt.TimeTableID)
	if err != nil {
		t.Fatalf("替换后查询失败: %v", err)
	}
	if got2.Name != "第二版" {
		t.Errorf("课表名应已更新，得到: %s", got2.Name)
	}
	if len(got2.Slots) != 1 {
		t.Errorf("替换后期望 1 个槽位，得到 %d 个", len(got2.Slots))
	}
	if got2.Slots[0].Title != "化学" {
		t.Errorf("槽位标题不匹配: %s", got2.Slots[0].Title)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Forum Message Upsert
// ═══════════════════════════════════════════════════════════

func TestForum_SaveMessages_Idempotent(t *testing.T) {
	dept, course, _, cleanup := setupTestData(t)
	defer cleanup()
	_ = dept

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	subject := &model.Subject{CourseID: course.CourseID, Name: "数据结构", Code: "CS201", Semester: 3}
	if err := testDB.WithContext(ctx).Create(subject).Error; err != nil {
		t.Fatalf("创建科目失败: %v", err)
	}
	defer testDB.Unscoped().Where("subject_id = ?", subject.SubjectID).Delete(&model.Subject{})

	user := &model.User{
		Name:         "测试学生",
		Email:        fmt.Sprintf("stu%d@univera.edu", time.Now().UnixNano()),
		PasswordHash: "$2a$10$placeholder",
		Role:         model.RoleStudent,
	}
	if err := testDB.WithContext(ctx).Create(user).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	defer testDB.Unscoped().Where("user_id = ?", user.UserID).Delete(&model.User{})

	forum := &model.Forum{SubjectID: subject.SubjectID, Name: "数据结构讨论区"}
	if err := repo.Forum.Create(ctx, forum); err != nil {
		t.Fatalf("创建论坛失败: %v", err)
	}
	defer func() {
		testDB.Unscoped().Where("forum_id = ?", forum.ForumID).Delete(&model.ForumMessage{})
		testDB.Unscoped().Where("forum_id = ?", forum.ForumID).Delete(&model.Forum{})
	}()

	msgID := time.Now().UnixMilli()
	msg := model.ForumMessage{
		MessageID: msgID,
		ForumID:   forum.ForumID,
		UserID:    user.UserID,
		Message:   "第一版内容",
		CreatedAt: time.Now(),
	}
	if err := repo.Forum.SaveMessages(ctx, []model.ForumMessage{msg}); err != nil {
		t.Fatalf("首次落库失败: %v", err)
	}

	// 同 ID 重复上报应覆盖而非报错
	msg.Message = "修订后内容"
	if err := repo.Forum.SaveMessages(ctx, []model.ForumMessage{msg}); err != nil {
		t.Fatalf("重复落库应幂等成功: %v", err)
	}

	list, err := repo.Forum.ListMessages(ctx, forum.ForumID, 0)
	if err != nil {
		t.Fatalf("ListMessages 失败: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("期望 1 条消息，得到 %d 条", len(list))
	}
	if list[0].Message != "修订后内容" {
		t.Errorf("期望最后写入覆盖，得到: %s", list[0].Message)
	}

	// 删除后查不到
	if err := repo.Forum.DeleteMessages(ctx, []int64{msgID}); err != nil {
		t.Fatalf("DeleteMessages 失败: %v", err)
	}
	list, _ = repo.Forum.ListMessages(ctx, forum.ForumID, 0)
	if len(list) != 0 {
		t.Errorf("删除后期望 0 条消息，得到 %d 条", len(list))
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Attendance ReplaceForDate
// ═══════════════════════════════════════════════════════════

func TestAttendance_ReplaceForDate(t *testing.T) {
	_, course, class, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	subject := &model.Subject{CourseID: course.CourseID, Name: "操作系统", Code: "CS301", Semester: 5}
	if err := testDB.WithContext(ctx).Create(subject).Error; err != nil {
		t.Fatalf("创建科目失败: %v", err)
	}
	defer testDB.Unscoped().Where("subject_id = ?", subject.SubjectID).Delete(&model.Subject{})

	student := &model.User{
		Name:         "签到学生",
		Email:        fmt.Sprintf("att%d@univera.edu", time.Now().UnixNano()),
		PasswordHash: "$2a$10$placeholder",
		Role:         model.RoleStudent,
		RollNo:       "42",
		ClassID:      &class.ClassID,
	}
	if err := testDB.WithContext(ctx).Create(student).Error; err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}
	defer testDB.Unscoped().Where("user_id = ?", student.UserID).Delete(&model.User{})

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	defer testDB.Unscoped().Where("subject_id = ?", subject.SubjectID).Delete(&model.AttendanceRecord{})

	// 首次标记为缺勤
	records := []model.AttendanceRecord{
		{SubjectID: subject.SubjectID, StudentID: student.UserID, ClassDate: date, Present: false},
	}
	if err := repo.Attendance.ReplaceForDate(ctx, subject.SubjectID, date, records); err != nil {
		t.Fatalf("首次签到失败: %v", err)
	}

	// 重新提交为出勤，应整体替换
	records[0].Present = true
	records[0].RecordID = ""
	if err := repo.Attendance.ReplaceForDate(ctx, subject.SubjectID, date, records); err != nil {
		t.Fatalf("重复签到应替换成功: %v", err)
	}

	list, err := repo.Attendance.ListBySubject(ctx, subject.SubjectID)
	if err != nil {
		t.Fatalf("ListBySubject 失败: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("期望 1 条记录，得到 %d 条", len(list))
	}
	if !list[0].Present {
		t.Error("期望替换后为出勤状态")
	}

	count, err := repo.Attendance.CountDates(ctx, subject.SubjectID)
	if err != nil {
		t.Fatalf("CountDates 失败: %v", err)
	}
	if count != 1 {
		t.Errorf("期望 1 个上课日，得到 %d 个", count)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Soft Delete
// ═══════════════════════════════════════════════════════════

func TestClass_SoftDelete(t *testing.T) {
	_, _, class, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// 软删除
	if err := repo.Class.Delete(ctx, class.ClassID, class.ClassID); err != nil {
		t.Fatalf("软删除失败: %v", err)
	}

	// 常规查询应找不到
	_, err := repo.Class.GetByID(ctx, class.ClassID)
	if err == nil {
		t.Fatal("软删除后应查不到记录")
	}

	// Unscoped 查询应能找到
	var found model.Class
	err = testDB.Unscoped().Where("class_id = ?", class.ClassID).First(&found).Error
	if err != nil {
		t.Fatalf("Unscoped 查询应能找到: %v", err)
	}
	if found.DeletedAt.Time.IsZero() {
		t.Error("DeletedAt 应已设置")
	}
}
