package chatserver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setLastActive(client *Client, at time.Time) {
	client.Mu.Lock()
	client.LastActive = at
	client.Mu.Unlock()
}

func TestSweepEvictsIdleConnections(t *testing.T) {
	h := NewHub()

	stale, staleConn := connect(h, 1, 10)
	fresh, _ := connect(h, 1, 11)

	setLastActive(stale, time.Now().Add(-2*time.Hour))
	setLastActive(fresh, time.Now())

	h.Sweep(time.Hour)

	require.False(t, h.IsOnline(1, 10))
	require.True(t, staleConn.isClosed())

	require.True(t, h.IsOnline(1, 11))
}

func TestSweepKeepsConnectionsWithinThreshold(t *testing.T) {
	h := NewHub()

	client, _ := connect(h, 1, 10)

	setLastActive(client, time.Now().Add(-time.Hour))

	// Idle must exceed the threshold, not merely approach it.
	h.Sweep(time.Hour + time.Minute)

	require.True(t, h.IsOnline(1, 10))
}

func TestEvictionSparesReconnectedClient(t *testing.T) {
	h := NewHub()

	stale, _ := connect(h, 1, 10)

	setLastActive(stale, time.Now().Add(-2*time.Hour))

	// The user reconnects after the sweep noted the old client as
	// stale; the most recent connect must win.
	fresh, freshConn := connect(h, 1, 10)

	h.evict(stale)

	require.True(t, h.IsOnline(1, 10))
	require.Same(t, fresh, h.lookup(1, 10))
	require.False(t, freshConn.isClosed())
}

func TestSweepPrunesEmptyTypingMaps(t *testing.T) {
	h := NewHub()

	h.SetTyping(1, 10, true)
	h.SetTyping(1, 10, false)

	h.Sweep(time.Hour)

	h.mu.RLock()
	_, ok := h.typing[1]
	h.mu.RUnlock()

	require.False(t, ok)
}

func TestReadActivityResetsIdleClock(t *testing.T) {
	h := NewHub()
	store := &fakeStore{}

	alice, aliceConn := connect(h, 1, 10)

	setLastActive(alice, time.Now().Add(-2*time.Hour))

	aliceConn.queue(`{"type":"typing","is_typing":true}`)

	h.HandleClient(context.Background(), alice, store)

	alice.Mu.Lock()
	idle := time.Since(alice.LastActive)
	alice.Mu.Unlock()

	require.Less(t, idle, time.Minute)
}

func TestReaperStopsOnCancel(t *testing.T) {
	h := NewHub()

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})

	go func() {
		h.StartReaper(ctx, 5*time.Millisecond, time.Hour)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reaper did not stop on cancel")
	}
}
