package agents

import (
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

func TestRolesAreClosedSet(t *testing.T) {
	roles := Roles()

	require.Len(t, roles, 6)

	for _, role := range roles {
		require.True(t, IsValidRole(string(role)))

		prompt, ok := PromptFor(role)

		require.True(t, ok)
		require.NotEmpty(t, prompt.Context)
		require.NotEmpty(t, prompt.Disclaimer)
	}

	require.False(t, IsValidRole("wizard"))
	require.False(t, IsValidRole(""))

	_, ok := PromptFor(Role("wizard"))

	require.False(t, ok)
}

func TestBuildMessages(t *testing.T) {
	prompt, ok := PromptFor(RoleLawyer)

	require.True(t, ok)

	messages := buildMessages(prompt, "can I sublet?", "earlier chatter")

	require.GreaterOrEqual(t, len(messages), 4)

	require.Equal(t, openai.ChatMessageRoleSystem, messages[0].Role)
	require.Equal(t, prompt.Context, messages[0].Content)

	last := messages[len(messages)-1]

	require.Equal(t, openai.ChatMessageRoleUser, last.Role)
	require.Equal(t, "can I sublet?", last.Content)

	// Without thread context the history message is dropped.
	bare := buildMessages(prompt, "can I sublet?", "")

	require.Len(t, messages, len(bare)+1)
}
