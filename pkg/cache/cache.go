package cache

import "context"

// Store 本地持久缓存抽象
//
// 设计说明：
//   - 聊天缓冲区、删除墓碑、课表草稿槽位图都经由该接口读写，
//     不直接依赖具体 Redis 客户端，便于注入与测试。
//   - 值一律为 JSON 文本，序列化由调用方负责。
//   - 键约定：forum_<forumId>（待落库消息列表）、deletedMessageIds（墓碑集合）、
//     classId-<classId>（课表槽位图）。
type Store interface {
	// Get 读取字符串键；键不存在时返回 ok=false
	Get(ctx context.Context, key string) (val string, ok bool, err error)
	// Set 写入字符串键（覆盖）
	Set(ctx context.Context, key, val string) error
	// Delete 删除若干键
	Delete(ctx context.Context, keys ...string) error

	// ListPush 向列表尾部追加元素
	ListPush(ctx context.Context, key string, vals ...string) error
	// ListRange 读取整个列表（保持插入顺序）
	ListRange(ctx context.Context, key string) ([]string, error)
	// ListReplace 整体替换列表内容；vals 为空时等价于删除
	ListReplace(ctx context.Context, key string, vals []string) error

	// SetAdd 向集合添加成员
	SetAdd(ctx context.Context, key string, members ...string) error
	// SetMembers 读取集合全部成员
	SetMembers(ctx context.Context, key string) ([]string, error)
	// SetRemove 从集合移除成员
	SetRemove(ctx context.Context, key string, members ...string) error
}
