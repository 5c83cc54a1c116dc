package service

import (
	"errors"
	"testing"

	"univera/backend/internal/model"
)

// ── 标签与序号换算测试 ──

func TestLabelFromSlotIndex(t *testing.T) {
	cases := []struct {
		index int
		want  string
	}{
		{0, "8:00 AM"},
		{4, "12:00 PM"},
		{5, "1:00 PM"},
		{11, "7:00 PM"},
		{12, ""},
		{-1, ""},
	}
	for _, c := range cases {
		if got := LabelFromSlotIndex(c.index); got != c.want {
			t.Errorf("LabelFromSlotIndex(%d) 期望 %q，实际 %q", c.index, c.want, got)
		}
	}
}

func TestLabelFromBoundary_TailBoundary(t *testing.T) {
	if got := LabelFromBoundary(12); got != "8:00 PM" {
		t.Errorf("边界 12 期望 8:00 PM，实际 %q", got)
	}
}

func TestSlotIndexFromLabel_RoundTrip(t *testing.T) {
	for i := 0; i < SlotsPerDay; i++ {
		label := LabelFromSlotIndex(i)
		got, err := SlotIndexFromLabel(label)
		if err != nil {
			t.Fatalf("SlotIndexFromLabel(%q) 应成功: %v", label, err)
		}
		if got != i {
			t.Errorf("往返换算期望 %d，实际 %d", i, got)
		}
	}
}

func TestSlotIndexFromLabel_Unknown(t *testing.T) {
	if _, err := SlotIndexFromLabel("8:30 AM"); !errors.Is(err, ErrBadTimeLabel) {
		t.Errorf("期望 ErrBadTimeLabel，实际: %v", err)
	}
	// "8:00 PM" 是合法收尾边界，但不是合法起始格
	if _, err := SlotIndexFromLabel("8:00 PM"); !errors.Is(err, ErrBadTimeLabel) {
		t.Errorf("期望 ErrBadTimeLabel，实际: %v", err)
	}
}

func TestDayIndexFromName(t *testing.T) {
	day, err := DayIndexFromName("Tuesday")
	if err != nil {
		t.Fatalf("DayIndexFromName 应成功: %v", err)
	}
	if day != 2 {
		t.Errorf("期望 Tuesday=2，实际 %d", day)
	}
	if _, err := DayIndexFromName("Sunday"); !errors.Is(err, ErrBadTimeLabel) {
		t.Errorf("Sunday 非教学日，期望 ErrBadTimeLabel，实际: %v", err)
	}
}

func TestSlotKey(t *testing.T) {
	if got := SlotKey("Tuesday", "10:00 AM"); got != "Tuesday-10:00 AM" {
		t.Errorf("期望 Tuesday-10:00 AM，实际 %q", got)
	}
}

// ── 渲染决策测试 ──

func TestRenderDay_StartContinuationEmpty(t *testing.T) {
	slots := []model.TimeTableSlot{
		{Day: 1, StartIndex: 1, EndIndex: 3, Title: "数据结构"},
		{Day: 1, StartIndex: 5, EndIndex: 6, Title: "午休"},
		{Day: 2, StartIndex: 0, EndIndex: 2, Title: "其他天的槽位"},
	}

	cells := RenderDay(slots, 1)

	if cells[0].Render != RenderEmpty {
		t.Errorf("格 0 期望 empty，实际 %s", cells[0].Render)
	}
	if cells[1].Render != RenderStart || cells[1].Span != 2 {
		t.Errorf("格 1 期望 start/span=2，实际 %s/span=%d", cells[1].Render, cells[1].Span)
	}
	if cells[1].Slot == nil || cells[1].Slot.Title != "数据结构" {
		t.Error("start 格应携带槽位本体")
	}
	if cells[2].Render != RenderContinuation {
		t.Errorf("格 2 期望 continuation，实际 %s", cells[2].Render)
	}
	if cells[2].Slot != nil {
		t.Error("continuation 格不应携带槽位")
	}
	if cells[3].Render != RenderEmpty || cells[4].Render != RenderEmpty {
		t.Error("格 3、4 期望 empty")
	}
	if cells[5].Render != RenderStart || cells[5].Span != 1 {
		t.Errorf("格 5 期望 start/span=1，实际 %s/span=%d", cells[5].Render, cells[5].Span)
	}
}

func TestRenderDay_IgnoresOtherDays(t *testing.T) {
	slots := []model.TimeTableSlot{
		{Day: 3, StartIndex: 0, EndIndex: 12, Title: "全天"},
	}
	cells := RenderDay(slots, 1)
	for i := range cells {
		if cells[i].Render != RenderEmpty {
			t.Fatalf("其他天的槽位不应出现在当天，格 %d 实际 %s", i, cells[i].Render)
		}
	}
}

func TestRenderDay_OverlapLatecomerIgnored(t *testing.T) {
	slots := []model.TimeTableSlot{
		{Day: 1, StartIndex: 2, EndIndex: 5, Title: "先到"},
		{Day: 1, StartIndex: 3, EndIndex: 4, Title: "后到重叠"},
	}
	cells := RenderDay(slots, 1)
	if cells[2].Render != RenderStart || cells[2].Span != 3 {
		t.Errorf("先到槽位应完整渲染，实际 %s/span=%d", cells[2].Render, cells[2].Span)
	}
	if cells[3].Render != RenderContinuation {
		t.Errorf("重叠的后到槽位应被忽略，格 3 实际 %s", cells[3].Render)
	}
}

func TestRenderDay_FullDaySlot(t *testing.T) {
	slots := []model.TimeTableSlot{
		{Day: 6, StartIndex: 0, EndIndex: 12, Title: "运动会"},
	}
	cells := RenderDay(slots, 6)
	if cells[0].Render != RenderStart || cells[0].Span != 12 {
		t.Errorf("整天槽位期望 start/span=12，实际 %s/span=%d", cells[0].Render, cells[0].Span)
	}
	for i := 1; i < SlotsPerDay; i++ {
		if cells[i].Render != RenderContinuation {
			t.Fatalf("格 %d 期望 continuation，实际 %s", i, cells[i].Render)
		}
	}
}

// ── 校验测试 ──

func TestValidateSlotBounds(t *testing.T) {
	bad := []model.TimeTableSlot{
		{Day: 0, StartIndex: 0, EndIndex: 1},
		{Day: 7, StartIndex: 0, EndIndex: 1},
		{Day: 1, StartIndex: -1, EndIndex: 1},
		{Day: 1, StartIndex: 3, EndIndex: 3},
		{Day: 1, StartIndex: 3, EndIndex: 2},
		{Day: 1, StartIndex: 0, EndIndex: 13},
	}
	for i := range bad {
		if err := ValidateSlotBounds(&bad[i]); err == nil {
			t.Errorf("槽位 %d 应校验失败: %+v", i, bad[i])
		}
	}

	good := model.TimeTableSlot{Day: 6, StartIndex: 11, EndIndex: 12}
	if err := ValidateSlotBounds(&good); err != nil {
		t.Errorf("合法槽位不应报错: %v", err)
	}
}

func TestValidateNoOverlap(t *testing.T) {
	ok := []model.TimeTableSlot{
		{Day: 1, StartIndex: 0, EndIndex: 2},
		{Day: 1, StartIndex: 2, EndIndex: 4}, // 首尾相接不算重叠
		{Day: 2, StartIndex: 0, EndIndex: 2}, // 不同天互不影响
	}
	if err := ValidateNoOverlap(ok); err != nil {
		t.Errorf("无重叠槽位不应报错: %v", err)
	}

	bad := []model.TimeTableSlot{
		{Day: 1, StartIndex: 0, EndIndex: 3},
		{Day: 1, StartIndex: 2, EndIndex: 4},
	}
	if err := ValidateNoOverlap(bad); err == nil {
		t.Error("重叠槽位应校验失败")
	}
}
