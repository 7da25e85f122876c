package handlers

import (
	"context"
	"log/slog"
	"os"
	"time"

	chatserver "github.com/techwiz42/cyberiad/chat_server"
	"github.com/techwiz42/cyberiad/db/chat_db/model"
	"github.com/techwiz42/cyberiad/internal_handlers"
	"github.com/techwiz42/cyberiad/persistence"
	"github.com/techwiz42/cyberiad/tasks"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/imroc/req/v3"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type CreateMessageInput struct {
	Content string `json:"content" validate:"required,gte=1,lte=4000"`
}

// CreateMessage is the REST path into a thread. The websocket loop is
// the hot path, this one exists for clients without a live socket. The
// broadcast hops to the websocket process over the internal api.
func CreateMessage(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, rdb *redis.Client, queue *asynq.Client) error {
	slog.Info("Creating a message")

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
		slog.Info("💀 Non-participant message attempt")

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Not a thread participant"}},
		})
	}

	input := new(CreateMessageInput)

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

	store := persistence.NewStore(db)

	message, err := store.CreateMessage(ctx, thread.ID, user.ID, input.Content, nil)

	if err != nil {
		slog.Error("💀 Unable to create message",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{"message": "Internal server error"}},
		})
	}

	event := chatserver.NewMessageEvent(user.PublicID(), message.Content, time.Now())

	httpClient := req.C()

	_, err = httpClient.R().
		SetContentType("application/json").
		SetBody(&internal_handlers.BroadcastEventInput{
			ThreadID:      thread.ID,
			ExcludeUserID: &user.ID,
			Event:         event,
		}).
		Post(os.Getenv("PRIVATE_WS_INTERNAL_API") + "/broadcast-event")

	if err != nil {
		slog.Error("Couldn't broadcast message 💀",
			slog.String("error", err.Error()))
	}

	enqueueAgentReplies(ctx, db, queue, thread.ID, input.Content)

	slog.Info("✅ Created message")

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{
		"message": message.ToFiberMap(),
	})
}

// enqueueAgentReplies schedules one reply task per active agent on the
// thread. Failures are logged, the user message already landed.
func enqueueAgentReplies(ctx context.Context, db *sqlx.DB, queue *asynq.Client, threadID uint64, content string) {
	threadAgents := []model.ThreadAgents{}

	err := db.SelectContext(ctx, &threadAgents,
		"SELECT * FROM thread_agents WHERE thread_id = ? AND is_active = true", threadID)

	if err != nil {
		slog.Error("💀 Unable to fetch thread agents",
			slog.String("error", err.Error()))

		return
	}

	for _, agent := range threadAgents {
		task, err := tasks.NewAgentReplyTask(threadID, agent.ID, agent.AgentType, content)

		if err != nil {
			continue
		}

		if _, err := queue.Enqueue(task); err != nil {
			slog.Error("💀 Unable to enqueue agent reply",
				slog.String("error", err.Error()))
		}
	}
}
