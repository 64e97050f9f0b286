package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"

	"github.com/skyharbor/flightdeck/pkg/logger"
)

type staticSnapshot struct {
	msgs []*Message
}

func (s *staticSnapshot) SnapshotMessages() []*Message {
	return s.msgs
}

func startTestServer(t *testing.T, provider SnapshotProvider) (*Server, string) {
	t.Helper()
	server := NewServer(16, logger.NewNop())
	if provider != nil {
		server.SetSnapshotProvider(provider)
	}
	go server.Run()

	httpSrv := httptest.NewServer(http.HandlerFunc(server.HandleConnection))
	t.Cleanup(httpSrv.Close)
	return server, "ws" + strings.TrimPrefix(httpSrv.URL, "http")
}

func dialTestServer(t *testing.T, url string) *gws.Conn {
	t.Helper()
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *gws.Conn) *Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	return &msg
}

func TestJoinSnapshotDelivery(t *testing.T) {
	provider := &staticSnapshot{msgs: []*Message{
		{Type: MessageTypeAircraft, Data: []map[string]any{
			{"callsign": "BAW22"},
			{"callsign": "DLH5"},
		}},
		{Type: MessageTypeControllers, Data: []map[string]any{
			{"airport": "IRFD"},
		}},
	}}
	_, url := startTestServer(t, provider)

	conn := dialTestServer(t, url)

	first := readMessage(t, conn)
	if first.Type != MessageTypeAircraft {
		t.Fatalf("first message type = %q, want %q", first.Type, MessageTypeAircraft)
	}
	roster, ok := first.Data.([]any)
	if !ok {
		t.Fatalf("snapshot data has type %T", first.Data)
	}
	if len(roster) != 2 {
		t.Errorf("snapshot aircraft = %d, want 2", len(roster))
	}

	second := readMessage(t, conn)
	if second.Type != MessageTypeControllers {
		t.Errorf("second message type = %q, want %q", second.Type, MessageTypeControllers)
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	server, url := startTestServer(t, nil)

	connA := dialTestServer(t, url)
	connB := dialTestServer(t, url)

	// Wait for both registrations before broadcasting.
	deadline := time.Now().Add(5 * time.Second)
	for server.ClientCount() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("clients did not register")
		}
		time.Sleep(10 * time.Millisecond)
	}

	server.Broadcast(&Message{Type: MessageTypeFlightPlan, Data: map[string]any{"callsign": "BAW22"}})

	for _, conn := range []*gws.Conn{connA, connB} {
		msg := readMessage(t, conn)
		if msg.Type != MessageTypeFlightPlan {
			t.Errorf("message type = %q, want %q", msg.Type, MessageTypeFlightPlan)
		}
	}
}

func TestClientCountDropsOnDisconnect(t *testing.T) {
	server, url := startTestServer(t, nil)

	conn := dialTestServer(t, url)

	deadline := time.Now().Add(5 * time.Second)
	for server.ClientCount() < 1 {
		if time.Now().After(deadline) {
			t.Fatal("client did not register")
		}
		time.Sleep(10 * time.Millisecond)
	}

	conn.Close()

	deadline = time.Now().Add(5 * time.Second)
	for server.ClientCount() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("client was not unregistered after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
