package stream

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/storystream/errors"
	"github.com/c360/storystream/event"
)

func TestDialerSelection(t *testing.T) {
	tests := []struct {
		endpoint string
		want     any
	}{
		{"http://example.com/api/events/stream", &sseDialer{}},
		{"https://example.com/api/events/stream", &sseDialer{}},
		{"ws://example.com/api/events/stream", &wsDialer{}},
		{"wss://example.com/api/events/stream", &wsDialer{}},
	}
	for _, tt := range tests {
		d, err := dialerFor(tt.endpoint)
		require.NoError(t, err, tt.endpoint)
		assert.IsType(t, tt.want, d, tt.endpoint)
	}

	_, err := dialerFor("ftp://example.com/stream")
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err), "unsupported scheme is a construction failure")
}

// sseHandler writes pre-canned SSE payload chunks and then blocks until the
// client goes away.
func sseHandler(t *testing.T, chunks ...string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		for _, chunk := range chunks {
			fmt.Fprint(w, chunk)
			flusher.Flush()
		}
		<-r.Context().Done()
	}
}

func TestSSETransportReceive(t *testing.T) {
	server := httptest.NewServer(sseHandler(t,
		": keepalive\n\n",
		"data: first\n\n",
		"event: update\nid: 7\ndata: second\n\n",
		"data: line one\ndata: line two\n\n",
	))
	defer server.Close()

	transport, err := newSSEDialer().Dial(server.URL)
	require.NoError(t, err)
	defer transport.Close()

	frame, err := transport.Receive()
	require.NoError(t, err)
	assert.Equal(t, "first", string(frame), "comments are skipped")

	frame, err = transport.Receive()
	require.NoError(t, err)
	assert.Equal(t, "second", string(frame), "event and id fields are ignored")

	frame, err = transport.Receive()
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", string(frame), "multi-line data joins with newline")
}

func TestSSETransportCloseUnblocksReceive(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, "data: one\n\n"))
	defer server.Close()

	transport, err := newSSEDialer().Dial(server.URL)
	require.NoError(t, err)

	_, err = transport.Receive()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := transport.Receive()
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, transport.Close())
	require.NoError(t, transport.Close(), "close is idempotent")

	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, errors.IsTransient(err))
	case <-time.After(2 * time.Second):
		t.Fatal("Receive did not unblock after Close")
	}
}

func TestSSETransportRejectsBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newSSEDialer().Dial(server.URL)
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err), "server errors must drive the retry loop")
}

func TestWebsocketTransportReceive(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{0x01}))
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("hello")))
		time.Sleep(100 * time.Millisecond)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	transport, err := (&wsDialer{}).Dial(wsURL)
	require.NoError(t, err)
	defer transport.Close()

	frame, err := transport.Receive()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(frame), "binary frames are skipped")
}

func TestWebsocketDialFailure(t *testing.T) {
	_, err := (&wsDialer{}).Dial("ws://127.0.0.1:1/stream")
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err), "refused dials must drive the retry loop")
}

// End-to-end: a Subscription consuming a real SSE server.
func TestSubscriptionOverSSE(t *testing.T) {
	server := httptest.NewServer(sseHandler(t,
		`data: {"id":"e1","type":"story","title":"Opening"}`+"\n\n",
		"data: not an event\n\n",
		`data: {"id":"e2","type":"decision_required","title":"Choose","data":{"options":["a","b"]}}`+"\n\n",
	))
	defer server.Close()

	cfg := testConfig()
	cfg.Endpoint = server.URL

	var decisions atomic.Int32
	cfg.OnDecisionEvent = func(event.RealtimeEvent, *event.DecisionEventData) {
		decisions.Add(1)
	}

	sub, err := New(cfg)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, sub.Start())
	require.Eventually(t, func() bool {
		return len(sub.Events()) == 2 && decisions.Load() == 1
	}, 2*time.Second, time.Millisecond)

	events := sub.Events()
	assert.Equal(t, "e2", events[0].ID)
	assert.Equal(t, "e1", events[1].ID)
	assert.Equal(t, StateConnected, sub.State())
}

// End-to-end: a Subscription consuming a real websocket server.
func TestSubscriptionOverWebsocket(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		err = conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"id":"w1","type":"system","title":"Maintenance"}`))
		require.NoError(t, err)
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Endpoint = "ws" + strings.TrimPrefix(server.URL, "http")

	sub, err := New(cfg)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, sub.Start())
	require.Eventually(t, func() bool {
		return len(sub.Events()) == 1
	}, 2*time.Second, time.Millisecond)
	assert.Equal(t, "w1", sub.Events()[0].ID)
}
