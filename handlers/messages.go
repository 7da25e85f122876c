package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/techwiz42/cyberiad/db/chat_db/model"
	"github.com/techwiz42/cyberiad/persistence"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func Messages(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, rdb *redis.Client, queue *asynq.Client) error {
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

	if !IsThreadParticipant(db, thread.ID, user.ID) {
		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Not a thread participant"}},
		})
	}

	limit := c.QueryInt("limit", 50)

	var before *time.Time

	if raw := c.Query("before"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)

		if err != nil {
			return c.Status(fiber.StatusOK).JSON(&fiber.Map{
				"errors": []fiber.Map{{"message": "Invalid before timestamp"}},
			})
		}

		before = &parsed
	}

	store := persistence.NewStore(db)

	messages, err := store.GetThreadMessages(ctx, thread.ID, limit, before)

	if err != nil {
		slog.Error("💀 Unable to fetch messages",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Internal server error"}},
		})
	}

	out := make([]fiber.Map, 0, len(messages))

	for _, message := range messages {
		out = append(out, message.ToFiberMap())
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{
		"messages": out,
	})
}
