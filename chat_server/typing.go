package chatserver

import "time"

// SetTyping records or clears a user's typing mark. The table is a best
// effort UI hint: entries are not expired on a timer, the reaper only
// prunes thread maps that have emptied out.
func (h *Hub) SetTyping(threadID uint64, userID uint64, isTyping bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	thread, ok := h.typing[threadID]

	if !ok {
		thread = make(map[uint64]time.Time)
		h.typing[threadID] = thread
	}

	if isTyping {
		thread[userID] = time.Now()
	} else {
		delete(thread, userID)
	}
}

// TypingUsers returns the user ids currently marked typing in a thread.
func (h *Hub) TypingUsers(threadID uint64) []uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	thread := h.typing[threadID]
	users := make([]uint64, 0, len(thread))

	for userID := range thread {
		users = append(users, userID)
	}

	return users
}

// UpdateTypingStatus mutates the typing table and tells everyone else in
// the thread. The originator already knows.
func (h *Hub) UpdateTypingStatus(threadID uint64, userID uint64, publicUserID string, isTyping bool) {
	h.SetTyping(threadID, userID, isTyping)

	h.Broadcast(threadID, NewTypingStatusEvent(publicUserID, isTyping, time.Now()), &userID)
}
