package chatserver

import (
	"encoding/json"
	"log/slog"

	"github.com/gofiber/contrib/websocket"
)

// Broadcast serializes the event once and pushes it to every live
// connection in the thread except excludeUser. Deliveries are best
// effort and independent: a dead socket is noted, the pass continues,
// and failures are unregistered only after the full fan-out so the map
// is never mutated mid-iteration.
func (h *Hub) Broadcast(threadID uint64, event Event, excludeUser *uint64) {
	marshalled, err := json.Marshal(event)

	if err != nil {
		slog.Error("💀 Couldn't marshal event",
			slog.String("error", err.Error()))

		return
	}

	var failed []*Client

	for _, client := range h.snapshot(threadID) {
		if excludeUser != nil && client.UserID == *excludeUser {
			continue
		}

		if err := h.writeTo(client, marshalled); err != nil {
			slog.Error("💀 Couldn't write to connection",
				slog.Uint64("thread_id", threadID),
				slog.Uint64("user_id", client.UserID),
				slog.String("error", err.Error()))

			failed = append(failed, client)
		}
	}

	for _, client := range failed {
		h.disconnectClient(client)
	}
}

// SendDirect delivers an event to one connection. A failed write
// unregisters that connection and nothing else.
func (h *Hub) SendDirect(threadID uint64, userID uint64, event Event) {
	client := h.lookup(threadID, userID)

	if client == nil {
		return
	}

	marshalled, err := json.Marshal(event)

	if err != nil {
		slog.Error("💀 Couldn't marshal event",
			slog.String("error", err.Error()))

		return
	}

	if err := h.writeTo(client, marshalled); err != nil {
		slog.Error("💀 Couldn't write direct message",
			slog.Uint64("thread_id", threadID),
			slog.Uint64("user_id", userID),
			slog.String("error", err.Error()))

		h.disconnectClient(client)
	}
}

// writeTo serializes writes on the client's own mutex. On failure the
// client is latched closing and the socket torn down; the caller is
// responsible for unregistering it.
func (h *Hub) writeTo(client *Client, data []byte) error {
	client.Mu.Lock()
	defer client.Mu.Unlock()

	if client.IsClosing {
		return nil
	}

	if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
		client.IsClosing = true

		// Try close the connection
		client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
		client.Conn.Close()

		return err
	}

	return nil
}
