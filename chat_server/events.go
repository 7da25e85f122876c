package chatserver

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventType string

const (
	EventMessage      EventType = "message"
	EventTypingStatus EventType = "typing_status"
	EventRead         EventType = "read"
	EventUserJoined   EventType = "user_joined"
	EventUserLeft     EventType = "user_left"
)

// Event is the outbound frame. Exactly one constructor per EventType,
// nothing else goes over the wire.
type Event struct {
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content,omitempty"`
	IsTyping  *bool     `json:"is_typing,omitempty"`
	MessageID string    `json:"message_id,omitempty"`
	Timestamp string    `json:"timestamp"`
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func NewMessageEvent(userID string, content string, at time.Time) Event {
	return Event{Type: EventMessage, UserID: userID, Content: content, Timestamp: stamp(at)}
}

func NewTypingStatusEvent(userID string, isTyping bool, at time.Time) Event {
	return Event{Type: EventTypingStatus, UserID: userID, IsTyping: &isTyping, Timestamp: stamp(at)}
}

func NewReadEvent(userID string, messageID string, at time.Time) Event {
	return Event{Type: EventRead, UserID: userID, MessageID: messageID, Timestamp: stamp(at)}
}

func NewUserJoinedEvent(userID string, at time.Time) Event {
	return Event{Type: EventUserJoined, UserID: userID, Timestamp: stamp(at)}
}

func NewUserLeftEvent(userID string, at time.Time) Event {
	return Event{Type: EventUserLeft, UserID: userID, Timestamp: stamp(at)}
}

type FrameType string

const (
	FrameMessage FrameType = "message"
	FrameTyping  FrameType = "typing"
	FrameRead    FrameType = "read"
)

// InboundFrame is one client frame. The type discriminator is a closed
// set, anything outside it is rejected at the decode boundary.
type InboundFrame struct {
	Type      FrameType `json:"type"`
	Content   string    `json:"content"`
	IsTyping  bool      `json:"is_typing"`
	MessageID string    `json:"message_id"`
}

func DecodeFrame(data []byte) (InboundFrame, error) {
	var frame InboundFrame

	if err := json.Unmarshal(data, &frame); err != nil {
		return InboundFrame{}, fmt.Errorf("invalid frame: %w", err)
	}

	switch frame.Type {
	case FrameMessage, FrameTyping, FrameRead:
		return frame, nil
	case "":
		return InboundFrame{}, fmt.Errorf("frame is missing a type")
	default:
		return InboundFrame{}, fmt.Errorf("unknown frame type %q", frame.Type)
	}
}
