package handlers

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/techwiz42/cyberiad/agents"
	"github.com/techwiz42/cyberiad/db/chat_db/model"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type ToggleAgentInput struct {
	AgentType string `json:"agent_type" validate:"required"`
	IsActive  bool   `json:"is_active"`
}

// ToggleAgent enables or disables an agent role on a thread, creating
// the row on first enable. Owner only.
func ToggleAgent(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, rdb *redis.Client, queue *asynq.Client) error {
	user, ok := c.Locals("viewer").(model.Users)

	if !ok {
		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Not logged in"}},
		})
	}

	thread, ok := FindThread(db, c.Params("thread_id"))

	if !ok {
		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Thread not found"}},
		})
	}

	if thread.OwnerID != user.ID {
		slog.Info("💀 Non-owner agent toggle attempt")

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Only the thread owner can manage agents"}},
		})
	}

	input := new(ToggleAgentInput)

	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Validation errors"}},
		})
	}

	if errs := ValidateInput(*input); len(errs) > 0 {
		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": errs,
		})
	}

	if !agents.IsValidRole(input.AgentType) {
		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Unknown agent role"}},
		})
	}

	var agent model.ThreadAgents

	err := db.GetContext(ctx, &agent,
		"SELECT * FROM thread_agents WHERE thread_id = ? AND agent_type = ? LIMIT 1",
		thread.ID, input.AgentType)

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		slog.Error("💀 Unable to look up thread agent",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Internal server error"}},
		})
	}

	if agent.ID == 0 {
		_, err = db.ExecContext(ctx,
			"INSERT INTO thread_agents (created_at, object_salt, thread_id, agent_type, is_active) VALUES (UTC_TIMESTAMP(), ?, ?, ?, ?)",
			uuid.NewString(), thread.ID, input.AgentType, input.IsActive)
	} else {
		_, err = db.ExecContext(ctx,
			"UPDATE thread_agents SET is_active = ? WHERE id = ?",
			input.IsActive, agent.ID)
	}

	if err != nil {
		slog.Error("💀 Unable to toggle agent",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Internal server error"}},
		})
	}

	if err := db.GetContext(ctx, &agent,
		"SELECT * FROM thread_agents WHERE thread_id = ? AND agent_type = ? LIMIT 1",
		thread.ID, input.AgentType); err != nil {
		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Internal server error"}},
		})
	}

	slog.Info("✅ Toggled agent",
		slog.String("agent_type", input.AgentType))

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{
		"agent": agent.ToFiberMap(),
	})
}
