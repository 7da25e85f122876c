package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/mrz1836/postmark"
)

const (
	TypeInviteEmail = "invite:deliver"
)

type InviteEmailPayload struct {
	To          string
	InviterName string
	ThreadTitle string
}

func NewInviteEmailTask(to string, inviterName string, threadTitle string) (*asynq.Task, error) {
	payload, err := json.Marshal(InviteEmailPayload{
		To:          to,
		InviterName: inviterName,
		ThreadTitle: threadTitle,
	})

	slog.Info("Scheduling invite email for delivery")

	if err != nil {
		slog.Error("Unable to schedule invite email")
		slog.Error(err.Error())

		return nil, err
	}

	return asynq.NewTask(TypeInviteEmail, payload), nil
}

func HandleInviteEmailTask(ctx context.Context, t *asynq.Task) error {
	slog.Info("Sending invite email")

	var p InviteEmailPayload

	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		slog.Error("Could not send invite email")
		slog.Error(err.Error())

		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	client := postmark.NewClient(os.Getenv("POSTMARK_SERVER_TOKEN"), os.Getenv("POSTMARK_ACCOUNT_TOKEN"))

	templatedEmail := postmark.TemplatedEmail{
		TemplateAlias: "thread-invite",
		TemplateModel: map[string]interface{}{
			"inviter_name": p.InviterName,
			"thread_title": p.ThreadTitle,
		},
		From:       os.Getenv("POSTMARK_FROM"),
		To:         p.To,
		TrackOpens: true,
		TrackLinks: "HtmlAndText",
	}

	_, err := client.SendTemplatedEmail(ctx, templatedEmail)

	if err != nil {
		slog.Error("Could not send invite email")
		slog.Error(err.Error())

		return err
	}

	slog.Info("✅ Invite email delivered")

	return nil
}
