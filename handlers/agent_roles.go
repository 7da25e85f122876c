package handlers

import (
	"context"

	"github.com/techwiz42/cyberiad/agents"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func AgentRoles(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, rdb *redis.Client, queue *asynq.Client) error {
	roles := agents.Roles()

	out := make([]fiber.Map, 0, len(roles))

	for _, role := range roles {
		prompt, ok := agents.PromptFor(role)

		if !ok {
			continue
		}

		out = append(out, fiber.Map{
			"role":       string(role),
			"disclaimer": prompt.Disclaimer,
		})
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{
		"roles": out,
	})
}
