package handlers

import (
	"context"
	"log/slog"

	"github.com/techwiz42/cyberiad/db/chat_db/model"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func Me(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, rdb *redis.Client, queue *asynq.Client) error {
	user, ok := c.Locals("viewer").(model.Users)

	if !ok {
		slog.Info("💀 Not logged in")

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Not logged in"}},
		})
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{
		"me": user.ToFiberMap(),
	})
}
