package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/techwiz42/cyberiad/db/chat_db/model"
	"github.com/techwiz42/cyberiad/persistence"
	"github.com/techwiz42/cyberiad/security_helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func DeleteMessage(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, rdb *redis.Client, queue *asynq.Client) error {
	user, ok := c.Locals("viewer").(model.Users)

	if !ok {
		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Not logged in"}},
		})
	}

	messageID, objectType := security_helpers.Decode(c.Params("message_id"))

	if messageID == 0 || objectType != model.MESSAGES_TYPE {
		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Message not found"}},
		})
	}

	store := persistence.NewStore(db)

	if err := store.SoftDeleteMessage(ctx, messageID, user.ID); err != nil {
		if errors.Is(err, persistence.ErrNotMessageAuthor) {
			slog.Info("💀 Non-author delete attempt")

			return c.Status(fiber.StatusOK).JSON(&fiber.Map{
				"errors": []fiber.Map{{"message": "Only the author can delete a message"}},
			})
		}

		slog.Error("💀 Unable to delete message",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Internal server error"}},
		})
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{
		"ok": true,
	})
}
