package chatserver

import (
	"context"
	"time"

	"github.com/techwiz42/cyberiad/db/chat_db/model"
)

// MessageStore is the durable side of the chat. The hub never holds a
// message longer than the broadcast that announces it; history lives
// behind this interface.
type MessageStore interface {
	// CreateMessage must have committed before the corresponding
	// broadcast goes out, so reconnecting clients never see an event
	// that is missing from history.
	CreateMessage(ctx context.Context, threadID uint64, userID uint64, content string, metadata map[string]interface{}) (*model.Messages, error)

	// CreateReadReceipt upserts a receipt. Receipts are auxiliary: a
	// failure here is logged and the read event still goes out.
	CreateReadReceipt(ctx context.Context, messageID uint64, userID uint64, readAt time.Time) error
}
