package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/techwiz42/cyberiad/db/chat_db/model"
	"github.com/techwiz42/cyberiad/security_helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// AuthorizationREST resolves the jwt middleware's token into the viewer
// user, via the redis cache with a database fallback.
func AuthorizationREST(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, rdb *redis.Client, queue *asynq.Client) error {
	jwtToken, ok := c.Locals("user").(*jwt.Token)

	if !ok {
		slog.Info("Guest user request")
		return c.Next()
	}

	claims, ok := jwtToken.Claims.(jwt.MapClaims)

	if !ok {
		return c.Next()
	}

	id, ok := claims["id"].(string)

	if !ok {
		return c.Next()
	}

	dbId, objectType := security_helpers.Decode(id)

	if dbId == 0 || objectType != model.USERS_TYPE {
		slog.Error("💀 Unauthorized user attempt 💀")

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to authorize",
			}},
		})
	}

	viewer, ok := fetchViewer(ctx, db, rdb, dbId)

	if !ok {
		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to authorize",
			}},
		})
	}

	go func() {
		db.Exec("UPDATE users SET last_active_at = ? WHERE id = ?", time.Now(), viewer.ID)
	}()

	c.Locals("viewer", viewer)

	return c.Next()
}

// fetchViewer is the cache-first user lookup shared by the REST and
// websocket authorization paths.
func fetchViewer(ctx context.Context, db *sqlx.DB, rdb *redis.Client, userID uint64) (model.Users, bool) {
	val, err := rdb.Get(ctx, fmt.Sprintf("user-%d", userID)).Result()

	if err == nil {
		viewer := model.Users{}

		json.Unmarshal([]byte(val), &viewer)

		if viewer.ID != 0 {
			return viewer, true
		}
	}

	slog.Warn(fmt.Sprintf("Couldn't fetch user from Redis, going to database user-%d", userID))

	user := model.Users{}

	err = db.Get(&user, "SELECT * FROM users WHERE id = ?", userID)

	if err != nil || user.ID == 0 {
		if err != nil {
			slog.Error("💀 User doesn't exist 💀",
				slog.String("error", err.Error()))
		} else {
			slog.Error("💀 User doesn't exist 💀")
		}

		return model.Users{}, false
	}

	if p, err := json.Marshal(user); err == nil {
		go func() {
			_, err := rdb.Set(ctx, fmt.Sprintf("user-%d", user.ID), p, 1*time.Hour).Result()

			if err != nil {
				slog.Error("💀 Couldn't cache user 💀",
					slog.String("error", err.Error()))
			}
		}()
	}

	return user, true
}
