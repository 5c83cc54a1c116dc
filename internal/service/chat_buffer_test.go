package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"univera/backend/pkg/cache"
)

func newTestBuffer() *MessageBuffer {
	return NewMessageBuffer(cache.NewMemory(), zap.NewNop())
}

// ── 缓冲区读写测试 ──

func TestMessageBuffer_AppendLoad(t *testing.T) {
	b := newTestBuffer()
	ctx := context.Background()

	_ = b.Append(ctx, 7, msg(1, "第一条"))
	_ = b.Append(ctx, 7, msg(2, "第二条"))
	_ = b.Append(ctx, 8, msg(3, "其他论坛"))

	msgs, err := b.Load(ctx, 7)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("期望 2 条，实际 %d", len(msgs))
	}
	if msgs[0].ID != 1 || msgs[1].ID != 2 {
		t.Error("期望保持追加顺序")
	}
}

func TestMessageBuffer_CorruptEntrySkipped(t *testing.T) {
	store := cache.NewMemory()
	b := NewMessageBuffer(store, zap.NewNop())
	ctx := context.Background()

	_ = b.Append(ctx, 7, msg(1, "正常"))
	_ = store.ListPush(ctx, "forum_7", "{not json")
	_ = b.Append(ctx, 7, msg(2, "正常"))

	msgs, err := b.Load(ctx, 7)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if len(msgs) != 2 {
		t.Errorf("损坏条目应跳过，期望 2 条，实际 %d", len(msgs))
	}
}

func TestMessageBuffer_RemoveByID(t *testing.T) {
	b := newTestBuffer()
	ctx := context.Background()

	_ = b.Append(ctx, 7, msg(1, "a"))
	_ = b.Append(ctx, 7, msg(2, "b"))
	_ = b.Append(ctx, 7, msg(3, "c"))

	if err := b.RemoveByID(ctx, 7, []int64{1, 3}); err != nil {
		t.Fatalf("RemoveByID 应成功: %v", err)
	}

	msgs, _ := b.Load(ctx, 7)
	if len(msgs) != 1 || msgs[0].ID != 2 {
		t.Errorf("期望仅剩 id=2，实际 %+v", msgs)
	}
}

// ── 墓碑测试 ──

func TestMessageBuffer_TombstoneLifecycle(t *testing.T) {
	b := newTestBuffer()
	ctx := context.Background()

	if err := b.AddTombstones(ctx, []int64{10, 20}); err != nil {
		t.Fatalf("AddTombstones 应成功: %v", err)
	}

	tombstones, err := b.Tombstones(ctx)
	if err != nil {
		t.Fatalf("Tombstones 应成功: %v", err)
	}
	if len(tombstones) != 2 {
		t.Fatalf("期望 2 个墓碑，实际 %d", len(tombstones))
	}
	if _, ok := tombstones[10]; !ok {
		t.Error("期望墓碑包含 id=10")
	}

	// 仅清除确认删除的那部分
	if err := b.RemoveTombstones(ctx, []int64{10}); err != nil {
		t.Fatalf("RemoveTombstones 应成功: %v", err)
	}
	tombstones, _ = b.Tombstones(ctx)
	if len(tombstones) != 1 {
		t.Fatalf("期望剩余 1 个墓碑，实际 %d", len(tombstones))
	}
	if _, ok := tombstones[20]; !ok {
		t.Error("期望剩余墓碑为 id=20")
	}
}

// ── 重复发送抑制测试 ──

func TestSendSuppressor_SameTextWithinWindow(t *testing.T) {
	s := newSendSuppressor(50 * time.Millisecond)
	now := time.Now()

	if s.Suppress(1, "u1", "hello", now) {
		t.Error("首次发送不应被抑制")
	}
	if !s.Suppress(1, "u1", "hello", now.Add(10*time.Millisecond)) {
		t.Error("窗口内同文本重发应被抑制")
	}
	if s.Suppress(1, "u1", "hello", now.Add(10*time.Millisecond+51*time.Millisecond)) {
		t.Error("窗口外重发不应被抑制")
	}
}

func TestSendSuppressor_DifferentTextOrScope(t *testing.T) {
	s := newSendSuppressor(50 * time.Millisecond)
	now := time.Now()

	_ = s.Suppress(1, "u1", "hello", now)
	if s.Suppress(1, "u1", "world", now.Add(time.Millisecond)) {
		t.Error("不同文本不应被抑制")
	}
	_ = s.Suppress(2, "u1", "hello", now)
	if s.Suppress(3, "u1", "hello", now.Add(time.Millisecond)) {
		t.Error("不同论坛不应相互抑制")
	}
	_ = s.Suppress(5, "u1", "hello", now)
	if s.Suppress(5, "u2", "hello", now.Add(time.Millisecond)) {
		t.Error("不同用户不应相互抑制")
	}
}
