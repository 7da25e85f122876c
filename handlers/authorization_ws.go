package handlers

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/golang-jwt/jwt/v5"
	"github.com/techwiz42/cyberiad/db/chat_db/model"
	"github.com/techwiz42/cyberiad/security_helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// AuthorizationWS authenticates the websocket handshake from the query
// token, before the upgrade. Bad tokens never reach the hub; this is
// expected client misuse, not a server error.
func AuthorizationWS(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, rdb *redis.Client, queue *asynq.Client) error {
	jwtToken := c.Query("token")

	if len(jwtToken) == 0 {
		slog.Info("Unauthorized, missing jwt")

		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		return c.Status(fiber.StatusUnauthorized).SendString("Missing authorization token")
	}

	token, err := jwt.Parse(jwtToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			slog.Info("Unauthorized, HMAC error in jwt")

			return nil, errors.New("unexpected signing method")
		}

		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil {
		slog.Info("Unauthorized, HMAC signature did not validate")

		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		return c.Status(fiber.StatusUnauthorized).SendString(err.Error())
	}

	claims, ok := token.Claims.(jwt.MapClaims)

	if !ok {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		return c.Status(fiber.StatusUnauthorized).SendString("Missing authorization token")
	}

	id, ok := claims["id"].(string)

	if !ok {
		return c.Status(fiber.StatusUnauthorized).SendString("Missing authorization token")
	}

	dbId, objectType := security_helpers.Decode(id)

	if dbId == 0 || objectType != model.USERS_TYPE {
		slog.Info("💀 Unauthorized user attempt 💀")

		return c.Status(fiber.StatusUnauthorized).SendString("Unable to authorize")
	}

	viewer, ok := fetchViewer(ctx, db, rdb, dbId)

	if !ok {
		return c.Status(fiber.StatusUnauthorized).SendString("Unable to authorize")
	}

	slog.Info("Attached viewer")

	c.Locals("viewer", viewer)

	return c.Next()
}
