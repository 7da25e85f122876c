package chatserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/techwiz42/cyberiad/db/chat_db/model"
)

// fakeConn is an in-memory ConnLike. Reads are fed through a channel so
// loop tests can script frames and then hang up.
type fakeConn struct {
	mu         sync.Mutex
	written    [][]byte
	failWrites bool
	closed     bool

	reads chan []byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{reads: make(chan []byte, 16)}
}

func (f *fakeConn) queue(frames ...string) {
	for _, frame := range frames {
		f.reads <- []byte(frame)
	}

	close(f.reads)
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	data, ok := <-f.reads

	if !ok {
		return 0, nil, errors.New("connection gone")
	}

	return 1, data, nil
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWrites {
		return errors.New("broken pipe")
	}

	f.written = append(f.written, data)

	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true

	return nil
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.closed
}

// events decodes everything written so far.
func (f *fakeConn) events() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Event, 0, len(f.written))

	for _, data := range f.written {
		var ev Event

		if json.Unmarshal(data, &ev) == nil && ev.Type != "" {
			out = append(out, ev)
		}
	}

	return out
}

func (f *fakeConn) eventsOfType(t EventType) []Event {
	var out []Event

	for _, ev := range f.events() {
		if ev.Type == t {
			out = append(out, ev)
		}
	}

	return out
}

type fakeStore struct {
	mu       sync.Mutex
	messages []string
	receipts []uint64
	fail     bool
}

func (s *fakeStore) CreateMessage(ctx context.Context, threadID uint64, userID uint64, content string, metadata map[string]interface{}) (*model.Messages, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail {
		return nil, errors.New("db down")
	}

	s.messages = append(s.messages, content)

	return &model.Messages{ID: uint64(len(s.messages)), ThreadID: threadID, Content: content}, nil
}

func (s *fakeStore) CreateReadReceipt(ctx context.Context, messageID uint64, userID uint64, readAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.receipts = append(s.receipts, messageID)

	return nil
}

func (s *fakeStore) stored() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.messages...)
}

func connect(h *Hub, threadID uint64, userID uint64) (*Client, *fakeConn) {
	conn := newFakeConn()
	client := NewClient(conn, threadID, userID, publicID(userID))

	h.Connect(client)

	return client, conn
}

func publicID(userID uint64) string {
	return fmt.Sprintf("user-%d", userID)
}

func TestConnectAndDisconnect(t *testing.T) {
	h := NewHub()

	connect(h, 1, 10)
	connect(h, 1, 11)

	require.True(t, h.IsOnline(1, 10))
	require.True(t, h.IsOnline(1, 11))
	require.False(t, h.IsOnline(1, 12))
	require.False(t, h.IsOnline(2, 10))

	require.ElementsMatch(t, []uint64{10, 11}, h.ActiveUsers(1))

	h.Disconnect(1, 10)

	require.False(t, h.IsOnline(1, 10))
	require.True(t, h.IsOnline(1, 11))

	// Disconnecting an unknown key is a no-op.
	h.Disconnect(1, 10)
	h.Disconnect(99, 10)

	require.ElementsMatch(t, []uint64{11}, h.ActiveUsers(1))
}

func TestReconnectSupersedesPriorConnection(t *testing.T) {
	h := NewHub()

	first, firstConn := connect(h, 1, 10)

	second, _ := connect(h, 1, 10)

	require.Same(t, second, h.lookup(1, 10))

	first.Mu.Lock()
	latched := first.IsClosing
	first.Mu.Unlock()

	require.True(t, latched, "superseded connection should be latched closing")

	// The orphaned socket is reclaimed right away, not leaked until
	// the transport notices.
	require.True(t, firstConn.isClosed())

	// The orphaned loop's own cleanup must not evict the replacement.
	require.False(t, h.disconnectClient(first))
	require.True(t, h.IsOnline(1, 10))
	require.Same(t, second, h.lookup(1, 10))
}

func TestUserJoinedAnnouncedToThread(t *testing.T) {
	h := NewHub()

	_, aliceConn := connect(h, 1, 10)

	_, _ = connect(h, 1, 11)

	// The first event is the user's own join echo, the second is the
	// peer arriving.
	joined := aliceConn.eventsOfType(EventUserJoined)

	require.Len(t, joined, 2)
	require.Equal(t, publicID(10), joined[0].UserID)
	require.Equal(t, publicID(11), joined[1].UserID)
}

func TestCloseAllEmptiesRegistry(t *testing.T) {
	h := NewHub()

	_, c1 := connect(h, 1, 10)
	_, c2 := connect(h, 2, 20)

	h.SetTyping(1, 10, true)

	h.CloseAll()

	require.False(t, h.IsOnline(1, 10))
	require.False(t, h.IsOnline(2, 20))
	require.Empty(t, h.TypingUsers(1))

	require.True(t, c1.isClosed())
	require.True(t, c2.isClosed())
}
