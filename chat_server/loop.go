package chatserver

import (
	"context"
	"log/slog"
	"time"

	"github.com/techwiz42/cyberiad/db/chat_db/model"
	"github.com/techwiz42/cyberiad/security_helpers"
)

// HandleClient is the per-connection read loop. It runs until the
// transport reports a disconnect, then unregisters its own key and
// announces the departure. Malformed frames are logged and skipped, a
// noisy client doesn't lose its connection over bad JSON.
func (h *Hub) HandleClient(ctx context.Context, client *Client, store MessageStore) {
	defer func() {
		if h.disconnectClient(client) {
			h.Broadcast(client.ThreadID, NewUserLeftEvent(client.PublicUserID, time.Now()), nil)
		}
	}()

	for {
		_, data, err := client.Conn.ReadMessage()

		if err != nil {
			slog.Info("Client read loop finished",
				slog.Uint64("thread_id", client.ThreadID),
				slog.Uint64("user_id", client.UserID))

			return
		}

		h.touch(client)

		frame, err := DecodeFrame(data)

		if err != nil {
			slog.Error("Invalid inbound frame",
				slog.Uint64("user_id", client.UserID),
				slog.String("error", err.Error()))

			continue
		}

		switch frame.Type {
		case FrameMessage:
			if err := h.handleMessageFrame(ctx, client, store, frame); err != nil {
				slog.Error("💀 Couldn't persist message, closing connection",
					slog.Uint64("thread_id", client.ThreadID),
					slog.Uint64("user_id", client.UserID),
					slog.String("error", err.Error()))

				client.Conn.Close()

				return
			}

		case FrameTyping:
			h.UpdateTypingStatus(client.ThreadID, client.UserID, client.PublicUserID, frame.IsTyping)

		case FrameRead:
			h.handleReadFrame(ctx, client, store, frame)
		}
	}
}

// handleMessageFrame writes through to the store first; the broadcast
// only happens once the message is durable. The sender is excluded from
// the fan-out, it learns the outcome from its own frame succeeding.
func (h *Hub) handleMessageFrame(ctx context.Context, client *Client, store MessageStore, frame InboundFrame) error {
	if _, err := store.CreateMessage(ctx, client.ThreadID, client.UserID, frame.Content, nil); err != nil {
		return err
	}

	h.Broadcast(client.ThreadID, NewMessageEvent(client.PublicUserID, frame.Content, time.Now()), &client.UserID)

	return nil
}

func (h *Hub) handleReadFrame(ctx context.Context, client *Client, store MessageStore, frame InboundFrame) {
	messageID, objectType := security_helpers.Decode(frame.MessageID)

	if messageID != 0 && objectType == model.MESSAGES_TYPE {
		if err := store.CreateReadReceipt(ctx, messageID, client.UserID, time.Now()); err != nil {
			slog.Error("Couldn't save read receipt",
				slog.Uint64("user_id", client.UserID),
				slog.String("error", err.Error()))
		}
	}

	h.Broadcast(client.ThreadID, NewReadEvent(client.PublicUserID, frame.MessageID, time.Now()), nil)
}
