package hub_test

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/arcadia-live/chat-service/internal/config"
	"github.com/arcadia-live/chat-service/internal/hub"
)

// fakeConn implements hub.Conn without a real WebSocket.
type fakeConn struct {
	writes chan []byte
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		writes: make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	<-f.closed
	return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	if messageType == websocket.TextMessage {
		f.writes <- data
	}
	return nil
}

func (f *fakeConn) SetReadLimit(int64)                {}
func (f *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func testWSConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		PingInterval:   time.Minute,
		PongWait:       time.Minute,
		WriteWait:      time.Second,
		MaxMessageSize: 4096,
		SendBuffer:     64,
	}
}

func newTestHub(t *testing.T) *hub.Hub {
	t.Helper()
	h := hub.NewHub(testWSConfig())
	go h.Run()
	t.Cleanup(h.Stop)
	return h
}

func addClient(t *testing.T, h *hub.Hub, id string) (*hub.Client, *fakeConn) {
	t.Helper()
	conn := newFakeConn()
	client := hub.NewClient(id, h, conn, testWSConfig())
	h.Register(client)
	go client.WritePump()
	return client, conn
}

func nextEvent(t *testing.T, conn *fakeConn) map[string]any {
	t.Helper()
	select {
	case data := <-conn.writes:
		var ev map[string]any
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func requireNoEvent(t *testing.T, conn *fakeConn) {
	t.Helper()
	select {
	case data := <-conn.writes:
		t.Fatalf("unexpected event: %s", data)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	req := require.New(t)
	h := newTestHub(t)

	_, conn1 := addClient(t, h, "c1")
	_, conn2 := addClient(t, h, "c2")

	req.NoError(h.Broadcast(map[string]string{"type": "ping-all"}, ""))

	req.Equal("ping-all", nextEvent(t, conn1)["type"])
	req.Equal("ping-all", nextEvent(t, conn2)["type"])

	// Both registrations were processed before the broadcast round-trip.
	req.Equal(2, h.Count())
}

func TestBroadcastExcludesOriginator(t *testing.T) {
	req := require.New(t)
	h := newTestHub(t)

	_, conn1 := addClient(t, h, "c1")
	_, conn2 := addClient(t, h, "c2")

	req.NoError(h.Broadcast(map[string]string{"type": "relay"}, "c1"))

	req.Equal("relay", nextEvent(t, conn2)["type"])
	requireNoEvent(t, conn1)
}

func TestUnregisterRemovesClient(t *testing.T) {
	req := require.New(t)
	h := newTestHub(t)

	client1, conn1 := addClient(t, h, "c1")
	_, conn2 := addClient(t, h, "c2")

	h.Unregister(client1)
	req.NoError(h.Broadcast(map[string]string{"type": "after-leave"}, ""))

	req.Equal("after-leave", nextEvent(t, conn2)["type"])
	req.Equal(1, h.Count())
	_ = conn1
}

func TestUnregisterTwiceIsSafe(t *testing.T) {
	req := require.New(t)
	h := newTestHub(t)

	client, _ := addClient(t, h, "c1")
	h.Unregister(client)
	h.Unregister(client)
	req.Zero(h.Count())
}

func TestSendEventTargetsSingleClient(t *testing.T) {
	req := require.New(t)
	h := newTestHub(t)

	client1, conn1 := addClient(t, h, "c1")
	_, conn2 := addClient(t, h, "c2")

	req.NoError(client1.SendEvent(map[string]string{"type": "direct"}))

	req.Equal("direct", nextEvent(t, conn1)["type"])
	requireNoEvent(t, conn2)
}
