package handlers

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/techwiz42/cyberiad/db/chat_db/model"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type CreateThreadInput struct {
	Title       string `json:"title" validate:"required,gte=1,lte=250"`
	Description string `json:"description" validate:"lte=1000"`
}

func CreateThread(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, rdb *redis.Client, queue *asynq.Client) error {
	slog.Info("Creating a thread")

	user, ok := c.Locals("viewer").(model.Users)

	if !ok {
		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Not logged in"}},
		})
	}

	input := new(CreateThreadInput)

	if err := c.BodyParser(input); err != nil {
		slog.Error("💀 Error validating input",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Validation errors"}},
		})
	}

	if errors := ValidateInput(*input); len(errors) > 0 {
		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": errors,
		})
	}

	tx, err := db.BeginTxx(ctx, nil)

	if err != nil {
		slog.Error("💀 Unable to start transaction",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Internal server error"}},
		})
	}

	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO threads (created_at, object_salt, title, description, owner_id, status) VALUES (UTC_TIMESTAMP(), ?, ?, ?, ?, ?)",
		uuid.NewString(), input.Title, input.Description, user.ID, model.THREAD_STATUS_ACTIVE)

	if err != nil {
		slog.Error("💀 Unable to create thread",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Internal server error"}},
		})
	}

	var threadID uint64

	if err := tx.GetContext(ctx, &threadID, "SELECT LAST_INSERT_ID()"); err != nil {
		slog.Error("💀 Unable to read thread id",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Internal server error"}},
		})
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO thread_participants (thread_id, user_id, joined_at, is_active) VALUES (?, ?, UTC_TIMESTAMP(), true)",
		threadID, user.ID)

	if err != nil {
		slog.Error("💀 Unable to add thread owner as participant",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Internal server error"}},
		})
	}

	if err := tx.Commit(); err != nil {
		slog.Error("💀 Unable to commit thread",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Internal server error"}},
		})
	}

	var thread model.Threads

	if err := db.GetContext(ctx, &thread, "SELECT * FROM threads WHERE id = ?", threadID); err != nil {
		slog.Error("💀 Unable to fetch thread",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Internal server error"}},
		})
	}

	slog.Info("✅ Created thread")

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{
		"thread": thread.ToFiberMap(),
	})
}
