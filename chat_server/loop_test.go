package chatserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoopPersistsThenBroadcastsMessages(t *testing.T) {
	h := NewHub()
	store := &fakeStore{}

	alice, aliceConn := connect(h, 1, 10)
	_, bobConn := connect(h, 1, 11)

	aliceConn.queue(`{"type":"message","content":"hello there"}`)

	h.HandleClient(context.Background(), alice, store)

	require.Equal(t, []string{"hello there"}, store.stored())

	messages := bobConn.eventsOfType(EventMessage)

	require.Len(t, messages, 1)
	require.Equal(t, "hello there", messages[0].Content)
	require.Equal(t, publicID(10), messages[0].UserID)

	// The sender hears nothing back about its own message.
	require.Empty(t, aliceConn.eventsOfType(EventMessage))
}

func TestLoopClosesConnectionWhenPersistFails(t *testing.T) {
	h := NewHub()
	store := &fakeStore{fail: true}

	alice, aliceConn := connect(h, 1, 10)
	_, bobConn := connect(h, 1, 11)

	aliceConn.queue(`{"type":"message","content":"doomed"}`)

	h.HandleClient(context.Background(), alice, store)

	// Nothing was announced and the socket is gone.
	require.Empty(t, bobConn.eventsOfType(EventMessage))
	require.True(t, aliceConn.isClosed())
	require.False(t, h.IsOnline(1, 10))
}

func TestLoopSkipsMalformedFrames(t *testing.T) {
	h := NewHub()
	store := &fakeStore{}

	alice, aliceConn := connect(h, 1, 10)
	_, bobConn := connect(h, 1, 11)

	aliceConn.queue(
		`not json at all`,
		`{"type":"teleport"}`,
		`{"content":"no type"}`,
		`{"type":"message","content":"still here"}`,
	)

	h.HandleClient(context.Background(), alice, store)

	// The garbage was skipped, the valid frame after it still landed.
	require.Equal(t, []string{"still here"}, store.stored())
	require.Len(t, bobConn.eventsOfType(EventMessage), 1)
}

func TestLoopAnnouncesDeparture(t *testing.T) {
	h := NewHub()
	store := &fakeStore{}

	alice, aliceConn := connect(h, 1, 10)
	_, bobConn := connect(h, 1, 11)

	aliceConn.queue()

	h.HandleClient(context.Background(), alice, store)

	require.False(t, h.IsOnline(1, 10))

	left := bobConn.eventsOfType(EventUserLeft)

	require.Len(t, left, 1)
	require.Equal(t, publicID(10), left[0].UserID)
}

func TestSupersededLoopExitsSilently(t *testing.T) {
	h := NewHub()
	store := &fakeStore{}

	first, firstConn := connect(h, 1, 10)

	_, _ = connect(h, 1, 10)

	_, bobConn := connect(h, 1, 11)

	firstConn.queue()

	h.HandleClient(context.Background(), first, store)

	// The replacement is still registered and nobody heard a departure.
	require.True(t, h.IsOnline(1, 10))
	require.Empty(t, bobConn.eventsOfType(EventUserLeft))
}

func TestTypingFrames(t *testing.T) {
	h := NewHub()
	store := &fakeStore{}

	alice, aliceConn := connect(h, 1, 10)
	_, bobConn := connect(h, 1, 11)

	aliceConn.queue(
		`{"type":"typing","is_typing":true}`,
		`{"type":"typing","is_typing":false}`,
	)

	h.HandleClient(context.Background(), alice, store)

	events := bobConn.eventsOfType(EventTypingStatus)

	require.Len(t, events, 2)
	require.NotNil(t, events[0].IsTyping)
	require.True(t, *events[0].IsTyping)
	require.NotNil(t, events[1].IsTyping)
	require.False(t, *events[1].IsTyping)

	// The originator is excluded from its own status updates.
	require.Empty(t, aliceConn.eventsOfType(EventTypingStatus))

	require.Empty(t, h.TypingUsers(1))
}

func TestReadFramesBroadcastToEveryone(t *testing.T) {
	h := NewHub()
	store := &fakeStore{}

	alice, aliceConn := connect(h, 1, 10)
	_, bobConn := connect(h, 1, 11)

	aliceConn.queue(`{"type":"read","message_id":"some-message"}`)

	h.HandleClient(context.Background(), alice, store)

	read := bobConn.eventsOfType(EventRead)

	require.Len(t, read, 1)
	require.Equal(t, "some-message", read[0].MessageID)
	require.Equal(t, publicID(10), read[0].UserID)

	// Read events are not excluded from the reader's own connection.
	require.Len(t, aliceConn.eventsOfType(EventRead), 1)
}

func TestTypingTable(t *testing.T) {
	h := NewHub()

	h.SetTyping(1, 10, true)
	h.SetTyping(1, 11, true)

	require.ElementsMatch(t, []uint64{10, 11}, h.TypingUsers(1))
	require.Empty(t, h.TypingUsers(2))

	h.SetTyping(1, 10, false)

	require.ElementsMatch(t, []uint64{11}, h.TypingUsers(1))

	// Clearing an absent mark is a no-op.
	h.SetTyping(1, 99, false)
}
