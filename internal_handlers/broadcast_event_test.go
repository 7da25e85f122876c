package internal_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	chatserver "github.com/techwiz42/cyberiad/chat_server"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type stubConn struct {
	mu      sync.Mutex
	written [][]byte
}

func (s *stubConn) ReadMessage() (int, []byte, error) {
	select {}
}

func (s *stubConn) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.written = append(s.written, data)

	return nil
}

func (s *stubConn) Close() error { return nil }

func (s *stubConn) last() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.written) == 0 {
		return nil
	}

	return s.written[len(s.written)-1]
}

func testApp(hub *chatserver.Hub) *fiber.App {
	app := fiber.New()

	app.Post("/broadcast-event", func(c *fiber.Ctx) error {
		return BroadcastEvent(c, context.Background(), hub)
	})

	return app
}

func TestBroadcastEventDeliversToHub(t *testing.T) {
	hub := chatserver.NewHub()

	conn := &stubConn{}

	hub.Connect(chatserver.NewClient(conn, 7, 10, "user-10"))

	body, err := json.Marshal(&BroadcastEventInput{
		ThreadID: 7,
		Event:    chatserver.NewMessageEvent("agent-1", "hello from the other side", time.Now()),
	})

	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/broadcast-event", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := testApp(hub).Test(req)

	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	payload, err := io.ReadAll(resp.Body)

	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(payload))

	var delivered chatserver.Event

	require.NoError(t, json.Unmarshal(conn.last(), &delivered))
	require.Equal(t, chatserver.EventMessage, delivered.Type)
	require.Equal(t, "hello from the other side", delivered.Content)
}

func TestBroadcastEventRejectsBadInput(t *testing.T) {
	hub := chatserver.NewHub()

	for _, body := range []string{
		`{"event":{"type":"message"}}`,
		`{"thread_id":7,"event":{}}`,
		`not json`,
	} {
		req := httptest.NewRequest("POST", "/broadcast-event", bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")

		resp, err := testApp(hub).Test(req)

		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		payload, err := io.ReadAll(resp.Body)

		require.NoError(t, err)
		require.Contains(t, string(payload), "error")
	}
}
