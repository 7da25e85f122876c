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

type EditMessageInput struct {
	Content string `json:"content" validate:"required,gte=1,lte=4000"`
}

func EditMessage(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, rdb *redis.Client, queue *asynq.Client) error {
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

	input := new(EditMessageInput)

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

	store := persistence.NewStore(db)

	message, err := store.UpdateMessage(ctx, messageID, user.ID, input.Content)

	if err != nil {
		if errors.Is(err, persistence.ErrNotMessageAuthor) {
			slog.Info("💀 Non-author edit attempt")

			return c.Status(fiber.StatusOK).JSON(&fiber.Map{
				"errors": []fiber.Map{{"message": "Only the author can edit a message"}},
			})
		}

		slog.Error("💀 Unable to edit message",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Internal server error"}},
		})
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{
		"message": message.ToFiberMap(),
	})
}
