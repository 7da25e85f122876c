package model

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/techwiz42/cyberiad/security_helpers"
)

type ThreadAgents struct {
	ID        uint64         `db:"id"`
	CreatedAt time.Time      `db:"created_at"`
	Salt      string         `db:"object_salt"`
	ThreadID  uint64         `db:"thread_id"`
	AgentType string         `db:"agent_type"`
	IsActive  bool           `db:"is_active"`
	Settings  sql.NullString `db:"settings"`
}

func (a ThreadAgents) PublicID() string {
	return security_helpers.Encode(a.ID, THREAD_AGENTS_TYPE, a.Salt)
}

func (a ThreadAgents) ToFiberMap() fiber.Map {
	return fiber.Map{
		"id":         a.PublicID(),
		"agent_type": a.AgentType,
		"is_active":  a.IsActive,
	}
}

var THREAD_AGENTS_TYPE = "ThreadAgents"
