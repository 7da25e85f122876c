package chatserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBroadcastReachesWholeThread(t *testing.T) {
	h := NewHub()

	_, aliceConn := connect(h, 1, 10)
	_, bobConn := connect(h, 1, 11)
	_, carolConn := connect(h, 2, 12)

	h.Broadcast(1, NewMessageEvent(publicID(10), "hello", time.Now()), nil)

	require.Len(t, aliceConn.eventsOfType(EventMessage), 1)
	require.Len(t, bobConn.eventsOfType(EventMessage), 1)

	// Other threads never see it.
	require.Empty(t, carolConn.eventsOfType(EventMessage))

	got := bobConn.eventsOfType(EventMessage)[0]

	require.Equal(t, "hello", got.Content)
	require.Equal(t, publicID(10), got.UserID)
	require.NotEmpty(t, got.Timestamp)
}

func TestBroadcastExcludesSender(t *testing.T) {
	h := NewHub()

	_, aliceConn := connect(h, 1, 10)
	_, bobConn := connect(h, 1, 11)

	sender := uint64(10)

	h.Broadcast(1, NewMessageEvent(publicID(10), "hello", time.Now()), &sender)

	require.Empty(t, aliceConn.eventsOfType(EventMessage))
	require.Len(t, bobConn.eventsOfType(EventMessage), 1)
}

func TestBroadcastSurvivesDeadConnection(t *testing.T) {
	h := NewHub()

	_, aliceConn := connect(h, 1, 10)
	_, bobConn := connect(h, 1, 11)
	_, carolConn := connect(h, 1, 12)

	bobConn.mu.Lock()
	bobConn.failWrites = true
	bobConn.mu.Unlock()

	h.Broadcast(1, NewMessageEvent(publicID(10), "hello", time.Now()), nil)

	// The healthy connections got the event either side of the failure.
	require.Len(t, aliceConn.eventsOfType(EventMessage), 1)
	require.Len(t, carolConn.eventsOfType(EventMessage), 1)

	// The dead one was torn down and unregistered.
	require.False(t, h.IsOnline(1, 11))
	require.True(t, bobConn.isClosed())
	require.True(t, h.IsOnline(1, 10))
	require.True(t, h.IsOnline(1, 12))
}

func TestWriteFailureLatchesClientClosing(t *testing.T) {
	h := NewHub()

	bob, bobConn := connect(h, 1, 11)

	bobConn.mu.Lock()
	bobConn.failWrites = true
	bobConn.mu.Unlock()

	h.Broadcast(1, NewMessageEvent(publicID(10), "hello", time.Now()), nil)

	bob.Mu.Lock()
	latched := bob.IsClosing
	bob.Mu.Unlock()

	require.True(t, latched)

	// Further writes skip the latched client even once the transport
	// would accept them again.
	bobConn.mu.Lock()
	bobConn.failWrites = false
	before := len(bobConn.written)
	bobConn.mu.Unlock()

	h.writeTo(bob, []byte(`{"type":"message","user_id":"u"}`))

	bobConn.mu.Lock()
	after := len(bobConn.written)
	bobConn.mu.Unlock()

	require.Equal(t, before, after)
}

func TestSendDirect(t *testing.T) {
	h := NewHub()

	_, aliceConn := connect(h, 1, 10)
	_, bobConn := connect(h, 1, 11)

	h.SendDirect(1, 11, NewReadEvent(publicID(10), "msg-1", time.Now()))

	require.Empty(t, aliceConn.eventsOfType(EventRead))
	require.Len(t, bobConn.eventsOfType(EventRead), 1)

	// Unknown target is a no-op.
	h.SendDirect(1, 99, NewReadEvent(publicID(10), "msg-1", time.Now()))
}
