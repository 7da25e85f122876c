package chatserver

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodeFrame(t *testing.T) {
	frame, err := DecodeFrame([]byte(`{"type":"message","content":"hi"}`))

	require.NoError(t, err)
	require.Equal(t, FrameMessage, frame.Type)
	require.Equal(t, "hi", frame.Content)

	frame, err = DecodeFrame([]byte(`{"type":"typing","is_typing":true}`))

	require.NoError(t, err)
	require.True(t, frame.IsTyping)

	frame, err = DecodeFrame([]byte(`{"type":"read","message_id":"m1"}`))

	require.NoError(t, err)
	require.Equal(t, "m1", frame.MessageID)

	_, err = DecodeFrame([]byte(`{"content":"no type"}`))
	require.Error(t, err)

	_, err = DecodeFrame([]byte(`{"type":"teleport"}`))
	require.Error(t, err)

	_, err = DecodeFrame([]byte(`}{`))
	require.Error(t, err)
}

func TestEventWireShape(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	data, err := json.Marshal(NewMessageEvent("u1", "hello", at))

	require.NoError(t, err)
	require.JSONEq(t,
		`{"type":"message","user_id":"u1","content":"hello","timestamp":"2024-03-01T12:30:00Z"}`,
		string(data))

	// is_typing serializes for both states, absent fields stay off the
	// wire entirely.
	data, err = json.Marshal(NewTypingStatusEvent("u1", false, at))

	require.NoError(t, err)
	require.JSONEq(t,
		`{"type":"typing_status","user_id":"u1","is_typing":false,"timestamp":"2024-03-01T12:30:00Z"}`,
		string(data))

	data, err = json.Marshal(NewUserLeftEvent("u1", at))

	require.NoError(t, err)
	require.JSONEq(t,
		`{"type":"user_left","user_id":"u1","timestamp":"2024-03-01T12:30:00Z"}`,
		string(data))
}
