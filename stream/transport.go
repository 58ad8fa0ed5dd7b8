package stream

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/c360/storystream/errors"
)

// handshakeTimeout bounds how long a single dial may take.
const handshakeTimeout = 45 * time.Second

// Transport is one open, receive-only connection to the event stream.
type Transport interface {
	// Receive blocks until the next frame arrives or the connection fails.
	Receive() ([]byte, error)

	// Close tears the connection down, unblocking any pending Receive.
	Close() error
}

// Dialer opens Transports against a fixed endpoint.
type Dialer interface {
	Dial(endpoint string) (Transport, error)
}

// dialerFor selects the transport implementation from the endpoint scheme.
// An unparseable or unsupported endpoint is a construction failure, reported
// as fatal so callers do not enter a retry loop they can never win.
func dialerFor(endpoint string) (Dialer, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.WrapFatal(err, "Transport", "Dial", "parse endpoint")
	}
	switch u.Scheme {
	case "http", "https":
		return newSSEDialer(), nil
	case "ws", "wss":
		return &wsDialer{}, nil
	default:
		return nil, errors.WrapFatal(
			fmt.Errorf("%w: scheme %q", errors.ErrInvalidConfig, u.Scheme),
			"Transport", "Dial", "select transport")
	}
}

// sseDialer opens server-sent-event streams over HTTP.
type sseDialer struct {
	client *http.Client
}

func newSSEDialer() *sseDialer {
	return &sseDialer{
		client: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: handshakeTimeout,
			},
		},
	}
}

func (d *sseDialer) Dial(endpoint string) (Transport, error) {
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.WrapTransient(err, "Transport", "Dial", "build request")
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, errors.WrapTransient(err, "Transport", "Dial", "open stream")
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.WrapTransient(
			fmt.Errorf("%w: status %d", errors.ErrDialFailed, resp.StatusCode),
			"Transport", "Dial", "open stream")
	}

	return &sseTransport{
		body:   resp.Body,
		reader: bufio.NewReader(resp.Body),
	}, nil
}

// sseTransport reads text/event-stream frames. Each Receive returns the data
// payload of one complete event; comment lines (keepalives) and non-data
// fields are consumed silently.
type sseTransport struct {
	body      io.ReadCloser
	reader    *bufio.Reader
	closeOnce sync.Once
	closeErr  error
}

func (t *sseTransport) Receive() ([]byte, error) {
	var data []byte
	for {
		line, err := t.reader.ReadString('\n')
		if err != nil {
			return nil, errors.WrapTransient(err, "Transport", "Receive", "read stream")
		}
		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			// Blank line terminates an event; skip events with no data
			if len(data) > 0 {
				return data, nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		if field == "data" {
			if len(data) > 0 {
				data = append(data, '\n')
			}
			data = append(data, value...)
		}
	}
}

func (t *sseTransport) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.body.Close()
	})
	return t.closeErr
}

// wsDialer opens websocket connections in client mode.
type wsDialer struct{}

func (d *wsDialer) Dial(endpoint string) (Transport, error) {
	dialer := &websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.Dial(endpoint, nil)
	if err != nil {
		return nil, errors.WrapTransient(err, "Transport", "Dial", "websocket handshake")
	}
	return &wsTransport{conn: conn}, nil
}

// wsTransport reads text frames from a websocket. Binary and control frames
// are skipped; the stream is receive-only so nothing is ever written.
type wsTransport struct {
	conn *websocket.Conn
}

func (t *wsTransport) Receive() ([]byte, error) {
	for {
		messageType, data, err := t.conn.ReadMessage()
		if err != nil {
			return nil, errors.WrapTransient(err, "Transport", "Receive", "read frame")
		}
		if messageType == websocket.TextMessage {
			return data, nil
		}
	}
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}
