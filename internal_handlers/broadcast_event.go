package internal_handlers

import (
	"context"
	"log/slog"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	chatserver "github.com/techwiz42/cyberiad/chat_server"

	"github.com/gofiber/fiber/v2"
)

// BroadcastEventInput is the private hop other processes use to push an
// event into this process's hub.
type BroadcastEventInput struct {
	ThreadID      uint64           `json:"thread_id" validate:"required"`
	ExcludeUserID *uint64          `json:"exclude_user_id"`
	Event         chatserver.Event `json:"event"`
}

func BroadcastEvent(c *fiber.Ctx, ctx context.Context, hub *chatserver.Hub) error {
	slog.Info("Broadcasting event ✅")

	input := new(BroadcastEventInput)

	if err := c.BodyParser(input); err != nil {
		slog.Warn("Invalid input 💀")

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"error": "Invalid input.",
		})
	}

	validate := validator.New()
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	en_translations.RegisterDefaultTranslations(validate, trans)
	err := validate.Struct(input)

	var errors []fiber.Map

	if err != nil {
		slog.Error("💀 Unable to broadcast event, input 💀",
			slog.String("error", err.Error()))

		errs := err.(validator.ValidationErrors)

		for _, v := range errs {
			errors = append(errors, fiber.Map{
				"field":   v.Field(),
				"message": v.Translate(trans),
			})
		}
	}

	if len(errors) > 0 {
		slog.Error("💀 Unable to broadcast event, input error 💀")

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": errors,
		})
	}

	if input.Event.Type == "" {
		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"error": "Invalid input.",
		})
	}

	hub.Broadcast(input.ThreadID, input.Event, input.ExcludeUserID)

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{
		"ok": true,
	})
}
