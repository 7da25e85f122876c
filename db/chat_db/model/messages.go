package model

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/techwiz42/cyberiad/security_helpers"
)

// Messages carry exactly one of user_id or agent_id; both null is a
// system message.
type Messages struct {
	ID                uint64         `db:"id"`
	CreatedAt         time.Time      `db:"created_at"`
	Salt              string         `db:"object_salt"`
	ThreadID          uint64         `db:"thread_id"`
	UserID            sql.NullInt64  `db:"user_id"`
	AgentID           sql.NullInt64  `db:"agent_id"`
	Content           string         `db:"content"`
	Metadata          sql.NullString `db:"metadata"`
	ParentID          sql.NullInt64  `db:"parent_id"`
	Edited            bool           `db:"edited"`
	EditedAt          sql.NullTime   `db:"edited_at"`
	Deleted           bool           `db:"deleted"`
	DeletedAt         sql.NullTime   `db:"deleted_at"`
	ClientGeneratedID sql.NullString `db:"client_generated_id"`
}

func (m Messages) PublicID() string {
	return security_helpers.Encode(m.ID, MESSAGES_TYPE, m.Salt)
}

func (m Messages) MetadataMap() map[string]interface{} {
	meta := map[string]interface{}{}

	if m.Metadata.Valid && m.Metadata.String != "" {
		json.Unmarshal([]byte(m.Metadata.String), &meta)
	}

	return meta
}

func (m Messages) ToFiberMap() fiber.Map {
	return fiber.Map{
		"id":         m.PublicID(),
		"created_at": m.CreatedAt.Format(time.RFC3339),
		"content":    m.Content,
		"metadata":   m.MetadataMap(),
		"edited":     m.Edited,
		"deleted":    m.Deleted,
	}
}

var MESSAGES_TYPE = "Messages"
