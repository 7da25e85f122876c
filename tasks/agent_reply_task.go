package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/imroc/req/v3"
	"github.com/jmoiron/sqlx"
	"github.com/techwiz42/cyberiad/agents"
	chatserver "github.com/techwiz42/cyberiad/chat_server"
	"github.com/techwiz42/cyberiad/db/chat_db/model"
	"github.com/techwiz42/cyberiad/internal_handlers"
	"github.com/techwiz42/cyberiad/persistence"
)

const (
	TypeAgentReply = "agent:reply"
)

type AgentReplyPayload struct {
	ThreadID    uint64
	AgentID     uint64
	AgentType   string
	UserMessage string
}

func NewAgentReplyTask(threadID uint64, agentID uint64, agentType string, userMessage string) (*asynq.Task, error) {
	payload, err := json.Marshal(AgentReplyPayload{
		ThreadID:    threadID,
		AgentID:     agentID,
		AgentType:   agentType,
		UserMessage: userMessage,
	})

	slog.Info("Scheduling agent reply",
		slog.String("agent_type", agentType))

	if err != nil {
		slog.Error("Unable to schedule agent reply")
		slog.Error(err.Error())

		return nil, err
	}

	return asynq.NewTask(TypeAgentReply, payload), nil
}

// HandleAgentReplyTask generates one agent reply, persists it, then
// hands the event to the websocket process. Persistence comes first so
// the broadcast never announces a message history doesn't have.
func HandleAgentReplyTask(ctx context.Context, t *asynq.Task, db *sqlx.DB, manager *agents.Manager) error {
	slog.Info("Generating agent reply")

	var p AgentReplyPayload

	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		slog.Error("Could not decode agent reply payload")
		slog.Error(err.Error())

		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	if !agents.IsValidRole(p.AgentType) {
		slog.Error("Unknown agent role, dropping task",
			slog.String("agent_type", p.AgentType))

		return fmt.Errorf("unknown agent role %q: %w", p.AgentType, asynq.SkipRetry)
	}

	store := persistence.NewStore(db)

	threadContext, err := recentThreadContext(ctx, store, p.ThreadID)

	if err != nil {
		slog.Warn("Couldn't load thread context, replying without it",
			slog.String("error", err.Error()))
	}

	response, err := manager.GetResponse(ctx, agents.Role(p.AgentType), p.UserMessage, threadContext)

	if err != nil {
		return err
	}

	message, err := store.CreateAgentMessage(ctx, p.ThreadID, p.AgentID, response.Content, response.Metadata)

	if err != nil {
		return err
	}

	agent := model.ThreadAgents{}

	if err := db.Get(&agent, "SELECT * FROM thread_agents WHERE id = ? LIMIT 1", p.AgentID); err != nil {
		return err
	}

	event := chatserver.NewMessageEvent(agent.PublicID(), message.Content, time.Now())

	client := req.C()

	_, err = client.R().
		SetContentType("application/json").
		SetBody(&internal_handlers.BroadcastEventInput{
			ThreadID: p.ThreadID,
			Event:    event,
		}).
		Post(os.Getenv("PRIVATE_WS_INTERNAL_API") + "/broadcast-event")

	if err != nil {
		slog.Error("Couldn't broadcast agent reply 💀",
			slog.String("error", err.Error()))

		return err
	}

	slog.Info("✅ Agent reply delivered",
		slog.String("agent_type", p.AgentType))

	return nil
}

// recentThreadContext flattens the latest few messages into the prompt
// context, oldest first.
func recentThreadContext(ctx context.Context, store *persistence.Store, threadID uint64) (string, error) {
	messages, err := store.GetThreadMessages(ctx, threadID, 10, nil)

	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(messages))

	for i := len(messages) - 1; i >= 0; i-- {
		lines = append(lines, messages[i].Content)
	}

	return strings.Join(lines, "\n"), nil
}
