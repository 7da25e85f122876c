package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/techwiz42/cyberiad/agents"
	"github.com/techwiz42/cyberiad/persistence"
	"github.com/techwiz42/cyberiad/tasks"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
)

func main() {
	lg := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(lg)

	slog.Info("🚀 Starting scheduler ✅")

	if len(os.Getenv("PORT")) > 0 {
		time.Sleep(4 * time.Second)
	}

	godotenv.Load("../.env")

	db, err := persistence.ConnectDatabase(os.Getenv("DATABASE_URL"))

	if err != nil {
		panic(err)
	}

	defer db.Close()

	redisOpts, err := redis.ParseURL(os.Getenv("REDIS_URL"))

	if err != nil {
		slog.Error("Unable to read redis database",
			slog.String("error", err.Error()))

		panic(err)
	}

	manager := agents.NewManager()

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Network:  redisOpts.Network,
			Addr:     redisOpts.Addr,
			Username: redisOpts.Username,
			Password: redisOpts.Password,
			DB:       redisOpts.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	mux := asynq.NewServeMux()

	mux.HandleFunc(tasks.TypeInviteEmail, tasks.HandleInviteEmailTask)

	mux.HandleFunc(tasks.TypeAgentReply, func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleAgentReplyTask(ctx, t, db, manager)
	})

	if err := srv.Run(mux); err != nil {
		slog.Error("Scheduler crashed",
			slog.String("error", err.Error()))
	}
}
