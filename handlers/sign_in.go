package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/techwiz42/cyberiad/db/chat_db/model"
	"github.com/techwiz42/cyberiad/security_helpers"
)

type SignInInput struct {
	Email    string `json:"email" validate:"required,email,lte=200"`
	Password string `json:"password" validate:"required,gte=6,lte=50"`
}

func SignIn(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, rdb *redis.Client, queue *asynq.Client) error {
	slog.Info("Starting user sign_in ✅")

	input := new(SignInInput)

	if err := c.BodyParser(input); err != nil {
		slog.Error("💀 Invalid input 💀")
		slog.Error(err.Error())

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to login",
			}},
		})
	}

	if errors := ValidateInput(input); len(errors) > 0 {
		slog.Error("💀 Unable to sign_in, input error 💀")

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": errors,
		})
	}

	addr, err := mail.ParseAddress(input.Email)

	if err != nil {
		slog.Error("💀 Email not valid 💀")
		slog.Error(err.Error())

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"field":   "email",
				"message": "Not a valid email",
			}},
		})
	}

	email := strings.ToLower(addr.Address)

	user := model.Users{}

	err = db.Get(&user, "SELECT * FROM users WHERE email = ? LIMIT 1", email)

	if err != nil || user.PasswordHash == "" {
		slog.Warn("💀 User does not exist 💀")

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Incorrect email or password",
			}},
		})
	}

	if !security_helpers.CheckPasswordHash(input.Password, user.PasswordHash) {
		slog.Warn("💀 Unable to sign_in 💀")

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"field":   "password",
				"message": "Incorrect email or password",
			}},
		})
	}

	go func() {
		db.Exec("UPDATE users SET last_login_at = ? WHERE id = ?", time.Now(), user.ID)
	}()

	p, err := json.Marshal(user)

	if err == nil {
		go func() {
			_, err := rdb.Set(ctx, fmt.Sprintf("user-%d", user.ID), p, 1*time.Hour).Result()

			if err != nil {
				slog.Error("💀 Couldn't cache user 💀",
					slog.String("error", err.Error()))
			}
		}()
	}

	claims := jwt.MapClaims{
		"id":  user.PublicID(),
		"exp": time.Now().Add((time.Hour * 24) * 31).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	t, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))

	if err != nil {
		slog.Error("💀 Unable to sign_in 💀")
		slog.Error(err.Error())

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to login",
			}},
		})
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{
		"token": t,
		"user":  user.ToFiberMap(),
	})
}
