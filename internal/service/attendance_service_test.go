package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"univera/backend/internal/dto"
	"univera/backend/internal/model"
)

// ── 学号解析测试 ──

func TestParseRollNumbers(t *testing.T) {
	rollNos, err := ParseRollNumbers("23, 45 67,,  89")
	if err != nil {
		t.Fatalf("解析应成功: %v", err)
	}
	want := []string{"23", "45", "67", "89"}
	if len(rollNos) != len(want) {
		t.Fatalf("期望 %d 个学号，实际 %d", len(want), len(rollNos))
	}
	for i := range want {
		if rollNos[i] != want[i] {
			t.Errorf("位置 %d 期望 %s，实际 %s", i, want[i], rollNos[i])
		}
	}
}

func TestParseRollNumbers_RejectsBadInput(t *testing.T) {
	for _, input := range []string{"23;45", "23 45a", "23-45", "２３"} {
		if _, err := ParseRollNumbers(input); !errors.Is(err, ErrBadRollNoInput) {
			t.Errorf("输入 %q 期望 ErrBadRollNoInput，实际: %v", input, err)
		}
	}
}

func TestParseRollNumbers_DedupKeepsOrder(t *testing.T) {
	rollNos, err := ParseRollNumbers("7, 3, 7, 3, 9")
	if err != nil {
		t.Fatalf("解析应成功: %v", err)
	}
	want := []string{"7", "3", "9"}
	for i := range want {
		if rollNos[i] != want[i] {
			t.Errorf("去重应保持首次出现顺序，位置 %d 期望 %s，实际 %s", i, want[i], rollNos[i])
		}
	}
}

func TestParseRollNumbers_Empty(t *testing.T) {
	rollNos, err := ParseRollNumbers("")
	if err != nil {
		t.Fatalf("空输入应成功: %v", err)
	}
	if len(rollNos) != 0 {
		t.Errorf("空输入期望空结果，实际 %v", rollNos)
	}
}

// ── Mark 测试 ──

func setupTestAttendanceService() (AttendanceService, *mockRepos) {
	repo, mocks := newMockRepository()
	classID := "class-A"
	mocks.subject.subjects["subject-1"] = &model.Subject{SubjectID: "subject-1", Name: "数据结构"}
	for i, roll := range []string{"01", "02", "03"} {
		id := []string{"stu1", "stu2", "stu3"}[i]
		cid := classID
		mocks.user.users[id] = &model.User{
			UserID: id, Name: "学生" + roll, RollNo: roll,
			Role: model.RoleStudent, ClassID: &cid, Email: id + "@test",
		}
	}
	svc := NewAttendanceService(repo, zap.NewNop())
	return svc, mocks
}

func TestAttendanceService_Mark(t *testing.T) {
	svc, mocks := setupTestAttendanceService()

	req := &dto.MarkAttendanceRequest{ClassDate: "2026-03-02", PresentRollNos: "01, 03"}
	resp, err := svc.Mark(context.Background(), "subject-1", "class-A", req, "f1")
	if err != nil {
		t.Fatalf("Mark 应成功: %v", err)
	}
	if resp.Present != 2 || resp.Absent != 1 {
		t.Errorf("期望出勤 2 缺勤 1，实际 %d/%d", resp.Present, resp.Absent)
	}
	if len(mocks.attendance.records) != 3 {
		t.Errorf("在册学生都应有记录，实际 %d 条", len(mocks.attendance.records))
	}
}

func TestAttendanceService_Mark_ResubmitReplaces(t *testing.T) {
	svc, mocks := setupTestAttendanceService()
	ctx := context.Background()

	req := &dto.MarkAttendanceRequest{ClassDate: "2026-03-02", PresentRollNos: "01"}
	if _, err := svc.Mark(ctx, "subject-1", "class-A", req, "f1"); err != nil {
		t.Fatalf("首次 Mark 应成功: %v", err)
	}

	// 同日重复提交整体替换
	req2 := &dto.MarkAttendanceRequest{ClassDate: "2026-03-02", PresentRollNos: "01, 02, 03"}
	resp, err := svc.Mark(ctx, "subject-1", "class-A", req2, "f1")
	if err != nil {
		t.Fatalf("重复 Mark 应成功: %v", err)
	}
	if resp.Present != 3 {
		t.Errorf("替换后期望出勤 3，实际 %d", resp.Present)
	}
	if len(mocks.attendance.records) != 3 {
		t.Errorf("替换后仍应 3 条记录，实际 %d", len(mocks.attendance.records))
	}
}

func TestAttendanceService_Mark_BadInput(t *testing.T) {
	svc, _ := setupTestAttendanceService()
	ctx := context.Background()

	req := &dto.MarkAttendanceRequest{ClassDate: "03/02/2026", PresentRollNos: "01"}
	if _, err := svc.Mark(ctx, "subject-1", "class-A", req, "f1"); !errors.Is(err, ErrBadClassDate) {
		t.Errorf("非法日期期望 ErrBadClassDate，实际: %v", err)
	}

	req = &dto.MarkAttendanceRequest{ClassDate: "2026-03-02", PresentRollNos: "01;02"}
	if _, err := svc.Mark(ctx, "subject-1", "class-A", req, "f1"); !errors.Is(err, ErrBadRollNoInput) {
		t.Errorf("非法学号输入期望 ErrBadRollNoInput，实际: %v", err)
	}

	req = &dto.MarkAttendanceRequest{ClassDate: "2026-03-02", PresentRollNos: "01"}
	if _, err := svc.Mark(ctx, "subject-nope", "class-A", req, "f1"); !errors.Is(err, ErrSubjectNotFound) {
		t.Errorf("科目不存在期望 ErrSubjectNotFound，实际: %v", err)
	}
	if _, err := svc.Mark(ctx, "subject-1", "class-empty", req, "f1"); !errors.Is(err, ErrNoClassBound) {
		t.Errorf("无学生班级期望 ErrNoClassBound，实际: %v", err)
	}
}

// ── Summary 测试 ──

func TestAttendanceService_Summary(t *testing.T) {
	svc, _ := setupTestAttendanceService()
	ctx := context.Background()

	// 两次课：01 全勤，02 出勤一次，03 全缺
	mark := func(date, present string) {
		req := &dto.MarkAttendanceRequest{ClassDate: date, PresentRollNos: present}
		if _, err := svc.Mark(ctx, "subject-1", "class-A", req, "f1"); err != nil {
			t.Fatalf("Mark 应成功: %v", err)
		}
	}
	mark("2026-03-02", "01, 02")
	mark("2026-03-09", "01")

	summary, err := svc.Summary(ctx, "subject-1", "class-A")
	if err != nil {
		t.Fatalf("Summary 应成功: %v", err)
	}
	if summary.TotalClasses != 2 {
		t.Fatalf("期望总课次 2，实际 %d", summary.TotalClasses)
	}

	byRoll := make(map[string]dto.AttendanceStudentSummary)
	for _, s := range summary.Students {
		byRoll[s.RollNo] = s
	}
	if byRoll["01"].Attended != 2 || byRoll["01"].Percentage != 100 {
		t.Errorf("学号 01 期望全勤 100%%，实际 %d/%.0f%%", byRoll["01"].Attended, byRoll["01"].Percentage)
	}
	if byRoll["02"].Attended != 1 || byRoll["02"].Percentage != 50 {
		t.Errorf("学号 02 期望 50%%，实际 %d/%.0f%%", byRoll["02"].Attended, byRoll["02"].Percentage)
	}
	if byRoll["03"].Attended != 0 {
		t.Errorf("学号 03 期望 0 次出勤，实际 %d", byRoll["03"].Attended)
	}
}

func TestAttendanceService_StudentSummary(t *testing.T) {
	svc, _ := setupTestAttendanceService()
	ctx := context.Background()

	req := &dto.MarkAttendanceRequest{ClassDate: "2026-03-02", PresentRollNos: "01"}
	if _, err := svc.Mark(ctx, "subject-1", "class-A", req, "f1"); err != nil {
		t.Fatalf("Mark 应成功: %v", err)
	}

	result, err := svc.StudentSummary(ctx, "stu1")
	if err != nil {
		t.Fatalf("StudentSummary 应成功: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("期望 1 个科目汇总，实际 %d", len(result))
	}
	if result[0].Attended != 1 || result[0].Total != 1 {
		t.Errorf("期望 1/1，实际 %d/%d", result[0].Attended, result[0].Total)
	}
}
