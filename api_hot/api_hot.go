package main

import (
	"context"
	"time"

	"log/slog"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/idempotency"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/techwiz42/cyberiad/db/chat_db/model"
	"github.com/techwiz42/cyberiad/handlers"
	"github.com/techwiz42/cyberiad/persistence"

	"github.com/redis/go-redis/v9"

	jwtware "github.com/gofiber/contrib/jwt"
)

func main() {
	lg := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(lg)

	slog.Info("🚀 Starting rest api ✅")

	if len(os.Getenv("PORT")) > 0 {
		time.Sleep(4 * time.Second)
	}

	ctx := context.Background()

	godotenv.Load("../.env")

	redisOpts, err := redis.ParseURL(os.Getenv("REDIS_URL"))

	if err != nil {
		slog.Error("Unable to read redis database",
			slog.String("error", err.Error()))

		panic(err)
	}

	queue := asynq.NewClient(asynq.RedisClientOpt{
		Network:  redisOpts.Network,
		Addr:     redisOpts.Addr,
		Username: redisOpts.Username,
		Password: redisOpts.Password,
		DB:       redisOpts.DB,
	})

	defer queue.Close()

	db, err := persistence.ConnectDatabase(os.Getenv("DATABASE_URL"))

	if err != nil {
		panic(err)
	}

	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisOpts.Addr,
		Username: redisOpts.Username,
		Password: redisOpts.Password,
		DB:       redisOpts.DB,
		OnConnect: func(ctx context.Context, cn *redis.Conn) error {
			slog.Info("Redis connected")
			return nil
		},
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		slog.Error("Redis error",
			slog.String("error", err.Error()))
	}

	app := fiber.New(fiber.Config{
		Network:   "tcp",
		BodyLimit: 10485760,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(logger.New())
	app.Use(idempotency.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		DisableColors: false,
		Format:        "${pid} ${locals:requestid} ${status} - ${method} ${path}​",
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("I'm healthy!")
	})

	app.Get("/metrics", monitor.New(monitor.Config{Title: "Metrics"}))

	v1 := fiber.New()
	app.Mount("/v1", v1)

	v1.Use(func(c *fiber.Ctx) error {
		c.Accepts("application/json")
		return c.Next()
	})

	auth := fiber.New()

	auth.Use(limiter.New(limiter.Config{
		Max:               30,
		Expiration:        1 * time.Hour,
		LimiterMiddleware: limiter.SlidingWindow{},
	}))

	v1.Mount("/auth", auth)

	auth.Post("/sign_in", func(c *fiber.Ctx) error {
		return handlers.SignIn(c, ctx, db, rdb, queue)
	})

	auth.Post("/sign_up", func(c *fiber.Ctx) error {
		return handlers.SignUp(c, ctx, db, rdb, queue)
	})

	v1.Use(jwtware.New(jwtware.Config{
		SuccessHandler: func(c *fiber.Ctx) error {
			lg.Info("jwt authorized ✅")
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, h error) error {
			lg.Info("jwt unauthorized 👀")
			return c.Next()
		},
		SigningKey: jwtware.SigningKey{Key: []byte(os.Getenv("JWT_SECRET"))},
	}))

	v1.Use(func(c *fiber.Ctx) error {
		return handlers.AuthorizationREST(c, ctx, db, rdb, queue)
	})

	v1.Get("/agents/roles", func(c *fiber.Ctx) error {
		return handlers.AgentRoles(c, ctx, db, rdb, queue)
	})

	v1.Use(func(c *fiber.Ctx) error {
		_, ok := c.Locals("viewer").(model.Users)

		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(&fiber.Map{
				"errors": []fiber.Map{{
					"message": "Not allowed.",
				}},
			})
		}

		return c.Next()
	})

	v1.Get("/me", func(c *fiber.Ctx) error {
		return handlers.Me(c, ctx, db, rdb, queue)
	})

	v1.Get("/threads", func(c *fiber.Ctx) error {
		return handlers.Threads(c, ctx, db, rdb, queue)
	})

	v1.Post("/threads/create", func(c *fiber.Ctx) error {
		return handlers.CreateThread(c, ctx, db, rdb, queue)
	})

	v1.Post("/threads/:thread_id/invite", func(c *fiber.Ctx) error {
		return handlers.InviteToThread(c, ctx, db, rdb, queue)
	})

	v1.Get("/threads/:thread_id/messages", func(c *fiber.Ctx) error {
		return handlers.Messages(c, ctx, db, rdb, queue)
	})

	v1.Post("/threads/:thread_id/messages/create", func(c *fiber.Ctx) error {
		return handlers.CreateMessage(c, ctx, db, rdb, queue)
	})

	v1.Post("/threads/:thread_id/read", func(c *fiber.Ctx) error {
		return handlers.MarkThreadRead(c, ctx, db, rdb, queue)
	})

	v1.Post("/threads/:thread_id/agents/toggle", func(c *fiber.Ctx) error {
		return handlers.ToggleAgent(c, ctx, db, rdb, queue)
	})

	v1.Post("/messages/:message_id/edit", func(c *fiber.Ctx) error {
		return handlers.EditMessage(c, ctx, db, rdb, queue)
	})

	v1.Post("/messages/:message_id/delete", func(c *fiber.Ctx) error {
		return handlers.DeleteMessage(c, ctx, db, rdb, queue)
	})

	port := ":3001"

	if envPort := os.Getenv("PORT"); envPort != "" {
		port = ":" + envPort
	}

	app.Listen(port)
}
