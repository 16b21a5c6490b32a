package feed

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"greencycle/pkg/types"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewHub(logger)
}

func dialFeed(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func waitForSubscribers(t *testing.T, hub *Hub, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers() != want {
		if time.Now().After(deadline) {
			t.Fatalf("subscribers = %d, want %d", hub.Subscribers(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	hub := newTestHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	first := dialFeed(t, srv)
	second := dialFeed(t, srv)
	waitForSubscribers(t, hub, 2)

	sent := Event{
		Type:     EventPickupAccepted,
		PickupID: "pickup-1",
		LenderID: "lender-1",
		Status:   types.PickupStatusPendingVerification,
		At:       time.Now().UTC().Truncate(time.Second),
	}
	hub.Broadcast(sent)

	for _, ws := range []*websocket.Conn{first, second} {
		ws.SetReadDeadline(time.Now().Add(2 * time.Second))

		var got Event
		require.NoError(t, ws.ReadJSON(&got))
		require.Equal(t, sent.Type, got.Type)
		require.Equal(t, sent.PickupID, got.PickupID)
		require.Equal(t, sent.Status, got.Status)
	}
}

func TestSubscriberRemovedOnDisconnect(t *testing.T) {
	hub := newTestHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	ws := dialFeed(t, srv)
	waitForSubscribers(t, hub, 1)

	ws.Close()
	waitForSubscribers(t, hub, 0)

	// broadcasting with nobody connected is a no-op
	hub.Broadcast(Event{Type: EventPickupScheduled, PickupID: "pickup-2"})
}
