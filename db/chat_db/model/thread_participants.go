package model

import (
	"database/sql"
	"time"
)

type ThreadParticipants struct {
	ThreadID   uint64       `db:"thread_id"`
	UserID     uint64       `db:"user_id"`
	JoinedAt   time.Time    `db:"joined_at"`
	LastReadAt sql.NullTime `db:"last_read_at"`
	IsActive   bool         `db:"is_active"`
}
