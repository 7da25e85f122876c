package main

import (
	"context"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"log/slog"
	"os"

	_ "github.com/go-sql-driver/mysql"
	chatserver "github.com/techwiz42/cyberiad/chat_server"
	"github.com/techwiz42/cyberiad/db/chat_db/model"
	"github.com/techwiz42/cyberiad/handlers"
	"github.com/techwiz42/cyberiad/internal_handlers"
	"github.com/techwiz42/cyberiad/persistence"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/idempotency"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/redis/go-redis/v9"
)

// durationFromEnv reads a whole-second duration, falling back when the
// variable is unset or garbage.
func durationFromEnv(name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)

	if raw == "" {
		return fallback
	}

	seconds, err := strconv.Atoi(raw)

	if err != nil || seconds <= 0 {
		slog.Warn("Ignoring bad duration",
			slog.String("name", name),
			slog.String("value", raw))

		return fallback
	}

	return time.Duration(seconds) * time.Second
}

func main() {
	lg := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(lg)

	slog.Info("🚀 Booting ws api ✅")

	if len(os.Getenv("PORT")) > 0 {
		time.Sleep(4 * time.Second)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

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

	slog.Info("🦄 Database connected")

	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisOpts.Addr,
		Username: redisOpts.Username,
		Password: redisOpts.Password,
		DB:       redisOpts.DB,
		OnConnect: func(ctx context.Context, cn *redis.Conn) error {
			slog.Info("🦄 Redis Connected")
			return nil
		},
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		slog.Error("Redis Error",
			slog.String("error", err.Error()))
	}

	hub := chatserver.NewHub()

	store := persistence.NewStore(db)

	go hub.StartReaper(ctx,
		durationFromEnv("REAP_INTERVAL_SECONDS", chatserver.DefaultReapInterval),
		durationFromEnv("IDLE_THRESHOLD_SECONDS", chatserver.DefaultIdleThreshold))

	app := fiber.New(fiber.Config{
		Network:   "tcp",
		BodyLimit: 4 * 1024 * 1024,
	})

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

	app.Use("/ws", func(c *fiber.Ctx) error {
		return handlers.AuthorizationWS(c, ctx, db, rdb, queue)
	})

	app.Use("/ws/:thread_id", func(c *fiber.Ctx) error {
		user, ok := c.Locals("viewer").(model.Users)

		if !ok {
			return c.SendStatus(fiber.StatusUnauthorized)
		}

		thread, ok := handlers.FindThread(db, c.Params("thread_id"))

		if !ok {
			return c.SendStatus(fiber.StatusNotFound)
		}

		if !handlers.IsThreadParticipant(db, thread.ID, user.ID) {
			slog.Info("💀 Non-participant socket attempt")

			return c.SendStatus(fiber.StatusForbidden)
		}

		c.Locals("thread", thread)

		return c.Next()
	})

	app.Use("/ws/:thread_id", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}

		return c.SendStatus(fiber.StatusUpgradeRequired)
	})

	app.Get("/ws/:thread_id", websocket.New(func(c *websocket.Conn) {
		user, ok := c.Locals("viewer").(model.Users)

		if !ok {
			c.Close()

			return
		}

		thread, ok := c.Locals("thread").(model.Threads)

		if !ok {
			c.Close()

			return
		}

		slog.Info("😍 Client connected")

		client := chatserver.NewClient(c, thread.ID, user.ID, user.PublicID())

		hub.Connect(client)

		hub.HandleClient(ctx, client, store)
	}, websocket.Config{
		RecoverHandler: func(conn *websocket.Conn) {
			if err := recover(); err != nil {
				user, ok := conn.Locals("viewer").(model.Users)

				if ok {
					slog.Error("💀 Handing an unrecoverable error on the connection 💀 ",
						slog.String("affected user", user.Email))
				} else {
					slog.Error("💀 Unauthorized user had an unrecoverable error 💀 ")
				}

				conn.WriteJSON(fiber.Map{"error": "an error occurred"})
			}
		}}))

	v1 := fiber.New()
	app.Mount("/v1", v1)

	v1.Use(func(c *fiber.Ctx) error {
		c.Accepts("application/json")
		return c.Next()
	})

	internal := fiber.New()

	v1.Mount("/internal", internal)

	internal.Post("/broadcast-event", func(c *fiber.Ctx) error {
		return internal_handlers.BroadcastEvent(c, ctx, hub)
	})

	port := ":3006"

	if envPort := os.Getenv("PORT"); envPort != "" {
		port = ":" + envPort
	}

	// A signal cancels the boot context, which stops the reaper and
	// unblocks Listen so every tracked socket gets closed.
	go func() {
		<-ctx.Done()

		slog.Info("Shutting down ws api")

		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			slog.Error("💀 Shutdown error",
				slog.String("error", err.Error()))
		}
	}()

	app.Listen(port)

	hub.CloseAll()
}
