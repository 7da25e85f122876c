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
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/techwiz42/cyberiad/db/chat_db/model"
	"github.com/techwiz42/cyberiad/security_helpers"
)

type SignUpInput struct {
	Username string `json:"username" validate:"required,gte=2,lte=60"`
	Email    string `json:"email" validate:"required,email,lte=200"`
	Password string `json:"password" validate:"required,gte=6,lte=50"`
}

func SignUp(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, rdb *redis.Client, queue *asynq.Client) error {
	slog.Info("Starting user sign_up ✅")

	input := new(SignUpInput)

	if err := c.BodyParser(input); err != nil {
		slog.Error("💀 Invalid input 💀")
		slog.Error(err.Error())

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to register",
			}},
		})
	}

	if errors := ValidateInput(input); len(errors) > 0 {
		slog.Error("💀 Unable to sign_up, input error 💀")

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
	username := security_helpers.Truncate(input.Username, 60)

	var userCount int

	err = db.Get(&userCount, "SELECT count(*) FROM users WHERE email = ? OR username = ?", email, username)

	if err != nil {
		slog.Error("💀 Unable to sign_up 💀")
		slog.Error(err.Error())

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to register",
			}},
		})
	}

	if userCount > 0 {
		slog.Warn("💀 User already exists 💀")

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Username or email already registered",
			}},
		})
	}

	passwordHash, err := security_helpers.HashPassword(input.Password)

	if err != nil {
		slog.Error("💀 Unable to sign_up 💀")
		slog.Error(err.Error())

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to register",
			}},
		})
	}

	salt := uuid.New().String()
	createdAt := time.Now()

	_, err = db.Exec("INSERT INTO users (created_at, object_salt, username, email, password_hash, role, last_active_at, is_active) VALUES (?, ?, ?, ?, ?, ?, ?, true)",
		createdAt, salt, username, email, passwordHash, model.ROLE_USER, createdAt)

	if err != nil {
		slog.Error("💀 Unable to sign_up, db issue 💀",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to register",
			}},
		})
	}

	user := model.Users{}

	err = db.Get(&user, "SELECT * FROM users WHERE email = ? LIMIT 1", email)

	if err != nil {
		slog.Error("💀 Unable to sign_up 💀")
		slog.Error(err.Error())

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to register",
			}},
		})
	}

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
		slog.Error("💀 Unable to sign_up 💀")
		slog.Error(err.Error())

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to register",
			}},
		})
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{
		"token": t,
		"user":  user.ToFiberMap(),
	})
}
