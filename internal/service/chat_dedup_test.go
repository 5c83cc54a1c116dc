package service

import (
	"testing"

	"univera/backend/internal/dto"
)

func msg(id int64, text string) dto.ChatMessagePayload {
	return dto.ChatMessagePayload{ID: id, Message: text}
}

// ── 合并去重测试 ──

func TestMergeMessages_ConcatAndDedup(t *testing.T) {
	remote := []dto.ChatMessagePayload{msg(1, "a"), msg(2, "b")}
	buffered := []dto.ChatMessagePayload{msg(3, "c"), msg(2, "b")}

	merged := MergeMessages(remote, buffered)
	if len(merged) != 3 {
		t.Fatalf("期望 3 条，实际 %d", len(merged))
	}
	for i, want := range []int64{1, 2, 3} {
		if merged[i].ID != want {
			t.Errorf("位置 %d 期望 id=%d，实际 %d", i, want, merged[i].ID)
		}
	}
}

func TestMergeMessages_SelfMergeIdempotent(t *testing.T) {
	// 同一列表与自身合并：每个 id 恰好出现一次，顺序不变
	batch := []dto.ChatMessagePayload{msg(1, "a"), msg(2, "b"), msg(3, "c")}

	merged := MergeMessages(batch, batch)
	if len(merged) != len(batch) {
		t.Fatalf("期望 %d 条，实际 %d", len(batch), len(merged))
	}
	seen := make(map[int64]int)
	for _, m := range merged {
		seen[m.ID]++
	}
	for i, want := range []int64{1, 2, 3} {
		if merged[i].ID != want {
			t.Errorf("位置 %d 期望 id=%d，实际 %d", i, want, merged[i].ID)
		}
		if seen[want] != 1 {
			t.Errorf("id=%d 期望出现 1 次，实际 %d 次", want, seen[want])
		}
	}
}

func TestMergeMessages_LastWriteWinsAtFirstPosition(t *testing.T) {
	first := []dto.ChatMessagePayload{msg(1, "旧内容"), msg(2, "b")}
	second := []dto.ChatMessagePayload{msg(1, "新内容")}

	merged := MergeMessages(first, second)
	if len(merged) != 2 {
		t.Fatalf("期望 2 条，实际 %d", len(merged))
	}
	// 内容取后出现的，位置保持首次出现处
	if merged[0].ID != 1 || merged[0].Message != "新内容" {
		t.Errorf("期望位置 0 为 id=1 新内容，实际 id=%d %q", merged[0].ID, merged[0].Message)
	}
	if merged[1].ID != 2 {
		t.Errorf("位置 1 期望 id=2，实际 %d", merged[1].ID)
	}
}

func TestMergeMessages_NoTimestampReorder(t *testing.T) {
	// id 即毫秒时间戳；合并不按时间重排，保持拼接顺序
	batch := []dto.ChatMessagePayload{msg(300, "晚"), msg(100, "早"), msg(200, "中")}
	merged := MergeMessages(batch)
	for i, want := range []int64{300, 100, 200} {
		if merged[i].ID != want {
			t.Errorf("位置 %d 期望 id=%d，实际 %d", i, want, merged[i].ID)
		}
	}
}

func TestMergeMessages_Empty(t *testing.T) {
	if got := MergeMessages(); len(got) != 0 {
		t.Errorf("空输入期望空输出，实际 %d 条", len(got))
	}
	if got := MergeMessages(nil, nil); len(got) != 0 {
		t.Errorf("nil 批次期望空输出，实际 %d 条", len(got))
	}
}

// ── 墓碑过滤测试 ──

func TestFilterTombstones(t *testing.T) {
	msgs := []dto.ChatMessagePayload{msg(1, "a"), msg(2, "b"), msg(3, "c")}
	tombstones := map[int64]struct{}{2: {}}

	kept := FilterTombstones(msgs, tombstones)
	if len(kept) != 2 {
		t.Fatalf("期望剩余 2 条，实际 %d", len(kept))
	}
	if kept[0].ID != 1 || kept[1].ID != 3 {
		t.Errorf("期望剩余 id 1、3，实际 %d、%d", kept[0].ID, kept[1].ID)
	}
}

func TestFilterTombstones_EmptySetReturnsInput(t *testing.T) {
	msgs := []dto.ChatMessagePayload{msg(1, "a")}
	if got := FilterTombstones(msgs, nil); len(got) != 1 {
		t.Errorf("空墓碑集合不应过滤任何消息，实际 %d 条", len(got))
	}
}
