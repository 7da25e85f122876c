package agents

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type Response struct {
	Content  string
	Metadata map[string]interface{}
}

// Manager fronts the chat-completion API for every agent role.
type Manager struct {
	client *openai.Client
	model  string
}

func NewManager() *Manager {
	model := os.Getenv("OPENAI_MODEL")

	if model == "" {
		model = openai.GPT4
	}

	return &Manager{
		client: openai.NewClient(os.Getenv("OPENAI_API_KEY")),
		model:  model,
	}
}

func buildMessages(prompt Prompt, message string, threadContext string) []openai.ChatCompletionMessage {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompt.Context},
		{Role: openai.ChatMessageRoleSystem, Content: prompt.Disclaimer},
	}

	if len(prompt.Guidelines) > 0 {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: "Guidelines:\n- " + strings.Join(prompt.Guidelines, "\n- "),
		})
	}

	if threadContext != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: "Previous context: " + threadContext,
		})
	}

	return append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})
}

// GetResponse generates one in-character reply. The role disclaimer is
// appended to whatever the model produced.
func (m *Manager) GetResponse(ctx context.Context, role Role, message string, threadContext string) (*Response, error) {
	prompt, ok := PromptFor(role)

	if !ok {
		return nil, fmt.Errorf("unknown agent role %q", role)
	}

	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.model,
		Messages:    buildMessages(prompt, message, threadContext),
		Temperature: 0.7,
		MaxTokens:   1000,
	})

	if err != nil {
		slog.Error("Couldn't generate agent response 💀",
			slog.String("role", string(role)),
			slog.String("error", err.Error()))

		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("agent %q returned no choices", role)
	}

	content := resp.Choices[0].Message.Content

	return &Response{
		Content: content + "\n\n" + prompt.Disclaimer,
		Metadata: map[string]interface{}{
			"role":              string(role),
			"model":             m.model,
			"prompt_tokens":     resp.Usage.PromptTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
		},
	}, nil
}
