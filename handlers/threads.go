package handlers

import (
	"context"
	"log/slog"

	"github.com/techwiz42/cyberiad/db/chat_db/model"
	"github.com/techwiz42/cyberiad/persistence"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func Threads(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, rdb *redis.Client, queue *asynq.Client) error {
	user, ok := c.Locals("viewer").(model.Users)

	if !ok {
		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Not logged in"}},
		})
	}

	threads := []model.Threads{}

	err := db.SelectContext(ctx, &threads,
		`SELECT t.* FROM threads t
		 INNER JOIN thread_participants tp ON tp.thread_id = t.id
		 WHERE tp.user_id = ? AND tp.is_active = true AND t.status != ?
		 ORDER BY t.created_at DESC`,
		user.ID, model.THREAD_STATUS_CLOSED)

	if err != nil {
		slog.Error("💀 Unable to fetch threads",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Internal server error"}},
		})
	}

	store := persistence.NewStore(db)

	out := make([]fiber.Map, 0, len(threads))

	for _, thread := range threads {
		m := thread.ToFiberMap()

		unread, err := store.UnreadCount(ctx, thread.ID, user.ID)

		if err != nil {
			slog.Error("💀 Unable to count unread messages",
				slog.String("error", err.Error()))

			unread = 0
		}

		m["unread_count"] = unread

		out = append(out, m)
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{
		"threads": out,
	})
}
