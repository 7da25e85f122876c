package chatserver

import (
	"log/slog"
	"sync"
	"time"
)

// Hub is the process-wide registry of live connections, keyed
// (thread, user). All mutation goes through Connect/Disconnect under the
// hub mutex; the broadcast side only ever snapshots the maps.
type Hub struct {
	mu          sync.RWMutex
	connections map[uint64]map[uint64]*Client
	typing      map[uint64]map[uint64]time.Time
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[uint64]map[uint64]*Client),
		typing:      make(map[uint64]map[uint64]time.Time),
	}
}

// Connect registers a client, superseding any prior entry for the same
// (thread, user) key, and announces the join to the whole thread. The
// superseded socket is latched closing and closed; its read loop's
// cleanup is identity-aware so it can't evict the replacement.
func (h *Hub) Connect(client *Client) {
	h.mu.Lock()

	thread, ok := h.connections[client.ThreadID]

	if !ok {
		thread = make(map[uint64]*Client)
		h.connections[client.ThreadID] = thread
	}

	if prior, ok := thread[client.UserID]; ok {
		prior.Mu.Lock()
		prior.IsClosing = true
		prior.Mu.Unlock()

		// Once out of the registry the orphan is invisible to the
		// reaper, so reclaim its socket here.
		prior.Conn.Close()

		slog.Warn("Superseding a live connection",
			slog.Uint64("thread_id", client.ThreadID),
			slog.Uint64("user_id", client.UserID))
	}

	thread[client.UserID] = client

	h.mu.Unlock()

	slog.Info("😍 Client connected",
		slog.Uint64("thread_id", client.ThreadID),
		slog.Uint64("user_id", client.UserID))

	h.Broadcast(client.ThreadID, NewUserJoinedEvent(client.PublicUserID, time.Now()), nil)
}

// Disconnect removes the (thread, user) entry. Removing a key that isn't
// registered is a no-op. Empty thread maps are pruned so the registry
// doesn't accumulate dead threads.
func (h *Hub) Disconnect(threadID uint64, userID uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(threadID, userID, nil)
}

// disconnectClient removes the entry only if it still belongs to this
// exact client, so a loop tearing itself down after being superseded
// leaves the replacement alone. Reports whether an entry was removed.
func (h *Hub) disconnectClient(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.removeLocked(client.ThreadID, client.UserID, client)
}

func (h *Hub) removeLocked(threadID uint64, userID uint64, owner *Client) bool {
	thread, ok := h.connections[threadID]

	if !ok {
		return false
	}

	current, ok := thread[userID]

	if !ok || (owner != nil && current != owner) {
		return false
	}

	delete(thread, userID)

	if len(thread) == 0 {
		delete(h.connections, threadID)
	}

	slog.Info("Connection unregistered",
		slog.Uint64("thread_id", threadID),
		slog.Uint64("user_id", userID))

	return true
}

func (h *Hub) IsOnline(threadID uint64, userID uint64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	thread, ok := h.connections[threadID]

	if !ok {
		return false
	}

	_, ok = thread[userID]

	return ok
}

// ActiveUsers returns the user ids with a live connection in the thread.
func (h *Hub) ActiveUsers(threadID uint64) []uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	thread := h.connections[threadID]
	users := make([]uint64, 0, len(thread))

	for userID := range thread {
		users = append(users, userID)
	}

	return users
}

func (h *Hub) lookup(threadID uint64, userID uint64) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.connections[threadID][userID]
}

// snapshot copies a thread's member list so fan-out never iterates the
// live map.
func (h *Hub) snapshot(threadID uint64) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	thread := h.connections[threadID]
	clients := make([]*Client, 0, len(thread))

	for _, client := range thread {
		clients = append(clients, client)
	}

	return clients
}

func (h *Hub) touch(client *Client) {
	client.Mu.Lock()
	client.LastActive = time.Now()
	client.Mu.Unlock()
}

// CloseAll tears down every tracked socket at shutdown. Close failures
// are ignored, the process is going away.
func (h *Hub) CloseAll() {
	h.mu.Lock()

	clients := make([]*Client, 0)

	for _, thread := range h.connections {
		for _, client := range thread {
			clients = append(clients, client)
		}
	}

	h.connections = make(map[uint64]map[uint64]*Client)
	h.typing = make(map[uint64]map[uint64]time.Time)

	h.mu.Unlock()

	for _, client := range clients {
		client.Mu.Lock()
		client.IsClosing = true
		client.Mu.Unlock()

		client.Conn.Close()
	}

	slog.Info("Closed all connections", slog.Int("count", len(clients)))
}
