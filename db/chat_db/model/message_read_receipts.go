package model

import "time"

type MessageReadReceipts struct {
	ID        uint64    `db:"id"`
	MessageID uint64    `db:"message_id"`
	UserID    uint64    `db:"user_id"`
	ReadAt    time.Time `db:"read_at"`
}
