package chatserver

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultReapInterval  = 300 * time.Second
	DefaultIdleThreshold = 3600 * time.Second
)

// StartReaper runs the idle sweep until the context is cancelled. A
// connection is considered dead once it has been silent longer than the
// threshold; its blocked read never notices, the timestamp does.
func (h *Hub) StartReaper(ctx context.Context, interval time.Duration, threshold time.Duration) {
	if interval <= 0 {
		interval = DefaultReapInterval
	}

	if threshold <= 0 {
		threshold = DefaultIdleThreshold
	}

	slog.Info("🚀 Starting the idle connection reaper ✅",
		slog.Duration("interval", interval),
		slog.Duration("threshold", threshold))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Reaper stopped")

			return

		case <-ticker.C:
			h.Sweep(threshold)
		}
	}
}

// Sweep evicts every connection idle past the threshold and prunes
// typing maps that have emptied out. Evictions are isolated: one bad
// connection never stops the rest of the pass.
func (h *Hub) Sweep(threshold time.Duration) {
	now := time.Now()

	var stale []*Client

	h.mu.RLock()

	for _, thread := range h.connections {
		for _, client := range thread {
			client.Mu.Lock()
			idle := now.Sub(client.LastActive)
			client.Mu.Unlock()

			if idle > threshold {
				stale = append(stale, client)
			}
		}
	}

	h.mu.RUnlock()

	for _, client := range stale {
		h.evict(client)
	}

	h.mu.Lock()

	for threadID, thread := range h.typing {
		if len(thread) == 0 {
			delete(h.typing, threadID)
		}
	}

	h.mu.Unlock()

	if len(stale) > 0 {
		slog.Info("Reaped idle connections", slog.Int("count", len(stale)))
	}
}

// evict removes one stale client. The removal is identity-aware so a
// reconnect landing after the sweep's snapshot keeps its registry entry;
// the superseded socket was already torn down by Connect.
func (h *Hub) evict(client *Client) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("💀 Eviction failed, continuing sweep",
				slog.Uint64("thread_id", client.ThreadID),
				slog.Uint64("user_id", client.UserID))
		}
	}()

	if !h.disconnectClient(client) {
		return
	}

	client.Mu.Lock()
	client.IsClosing = true
	client.Mu.Unlock()

	client.Conn.Close()
}
