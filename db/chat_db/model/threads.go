package model

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/techwiz42/cyberiad/security_helpers"
)

type Threads struct {
	ID          uint64         `db:"id"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   sql.NullTime   `db:"updated_at"`
	Salt        string         `db:"object_salt"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	OwnerID     uint64         `db:"owner_id"`
	Status      string         `db:"status"`
	Settings    sql.NullString `db:"settings"`
}

func (t Threads) PublicID() string {
	return security_helpers.Encode(t.ID, THREADS_TYPE, t.Salt)
}

func (t Threads) ToFiberMap() fiber.Map {
	return fiber.Map{
		"id":          t.PublicID(),
		"created_at":  t.CreatedAt.Format(time.RFC3339),
		"title":       t.Title,
		"description": t.Description.String,
		"status":      t.Status,
	}
}

var THREADS_TYPE = "Threads"

const (
	THREAD_STATUS_ACTIVE   = "active"
	THREAD_STATUS_ARCHIVED = "archived"
	THREAD_STATUS_CLOSED   = "closed"
)
