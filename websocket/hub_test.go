package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tunesmith/types"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startHub runs a hub behind a test server. Clients follow the batch named
// in the "batch" query parameter.
func startHub(t *testing.T) (Hub, string) {
	t.Helper()
	h := NewHub()
	go h.Run()
	t.Cleanup(h.Stop)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(h, conn, r.URL.Query().Get("batch"))
		h.RegisterClient(client)
		client.StartPumps()
	}))
	t.Cleanup(server.Close)

	return h, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url, batch string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url+"?batch="+batch, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) types.BatchEvent {
	t.Helper()
	var event types.BatchEvent
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func TestHubDeliversToBatchAndAllClients(t *testing.T) {
	h, url := startHub(t)

	batchConn := dial(t, url, "b1")
	otherConn := dial(t, url, "b2")
	allConn := dial(t, url, AllBatches)

	require.Eventually(t, func() bool { return h.ClientCount() == 3 }, 2*time.Second, 10*time.Millisecond)

	h.BroadcastEvent(types.BatchEvent{BatchID: "b1", Type: "file", FileID: "a.mp3", Progress: 50})

	event := readEvent(t, batchConn)
	assert.Equal(t, "b1", event.BatchID)
	assert.Equal(t, "file", event.Type)
	assert.Equal(t, "a.mp3", event.FileID)
	assert.Equal(t, float64(50), event.Progress)
	assert.False(t, event.Timestamp.IsZero())

	event = readEvent(t, allConn)
	assert.Equal(t, "b1", event.BatchID)

	// b2 only sees its own batch
	h.BroadcastEvent(types.BatchEvent{BatchID: "b2", Type: "status", Status: "processing"})
	event = readEvent(t, otherConn)
	assert.Equal(t, "b2", event.BatchID)
	assert.Equal(t, "processing", event.Status)
}

func TestHubNotifyReachesAllClients(t *testing.T) {
	h, url := startHub(t)
	allConn := dial(t, url, AllBatches)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	h.Notify(types.Notification{
		Severity:    types.SeveritySuccess,
		Title:       "Batch Rename Complete",
		Description: "Renamed 2 of 2 files.",
	})

	event := readEvent(t, allConn)
	assert.Equal(t, AllBatches, event.BatchID)
	assert.Equal(t, "notify", event.Type)
	assert.Equal(t, "success", event.Status)
	assert.Equal(t, "Batch Rename Complete: Renamed 2 of 2 files.", event.Message)
}

func TestHubUnregistersClosedClients(t *testing.T) {
	h, url := startHub(t)
	conn := dial(t, url, "b1")
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubStopIsIdempotent(t *testing.T) {
	h := NewHub()
	go h.Run()
	h.Stop()
	h.Stop()
	assert.Equal(t, 0, h.ClientCount())
}
