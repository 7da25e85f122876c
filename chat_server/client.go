package chatserver

import (
	"sync"
	"time"
)

// ConnLike is the slice of *websocket.Conn the hub actually touches,
// so tests can stand in a fake socket.
type ConnLike interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Client struct {
	Conn     ConnLike
	ThreadID uint64
	UserID   uint64

	// PublicUserID is the encoded id that goes out in event payloads,
	// raw db ids never leave the process.
	PublicUserID string

	Mu         sync.Mutex
	IsClosing  bool
	LastActive time.Time
}

func NewClient(conn ConnLike, threadID uint64, userID uint64, publicUserID string) *Client {
	return &Client{
		Conn:         conn,
		ThreadID:     threadID,
		UserID:       userID,
		PublicUserID: publicUserID,
		LastActive:   time.Now(),
	}
}
