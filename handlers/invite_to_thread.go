package handlers

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/techwiz42/cyberiad/db/chat_db/model"
	"github.com/techwiz42/cyberiad/tasks"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type InviteToThreadInput struct {
	Email string `json:"email" validate:"required,email"`
}

func InviteToThread(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, rdb *redis.Client, queue *asynq.Client) error {
	slog.Info("Inviting to thread")

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
		slog.Info("💀 Non-owner invite attempt")

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Only the thread owner can invite"}},
		})
	}

	input := new(InviteToThreadInput)

	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Validation errors"}},
		})
	}

	if errors := ValidateInput(*input); len(errors) > 0 {
		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": errors,
		})
	}

	var invitee model.Users

	err := db.GetContext(ctx, &invitee, "SELECT * FROM users WHERE email = ?", input.Email)

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		slog.Error("💀 Unable to look up invitee",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Internal server error"}},
		})
	}

	if invitee.ID != 0 {
		_, err = db.ExecContext(ctx,
			`INSERT INTO thread_participants (thread_id, user_id, joined_at, is_active)
			 VALUES (?, ?, UTC_TIMESTAMP(), true)
			 ON DUPLICATE KEY UPDATE is_active = true`,
			thread.ID, invitee.ID)

		if err != nil {
			slog.Error("💀 Unable to add participant",
				slog.String("error", err.Error()))

			return c.Status(fiber.StatusOK).JSON(&fiber.Map{
				"errors": []fiber.Map{{"message": "Internal server error"}},
			})
		}
	}

	task, err := tasks.NewInviteEmailTask(input.Email, user.Username, thread.Title)

	if err == nil {
		if _, err := queue.Enqueue(task); err != nil {
			slog.Error("💀 Unable to enqueue invite email",
				slog.String("error", err.Error()))
		}
	}

	slog.Info("✅ Invite sent")

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{
		"ok": true,
	})
}
