package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	"github.com/halcyon-audio/halcyon/transport"
)

const (
	// writeTimeout is the deadline for a single write to the daemon.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often ping frames are sent. Must be less
	// than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// eventBufSize is the outgoing event channel depth. A consumer that
	// falls further behind loses events.
	eventBufSize = 64
)

// ErrClosed is returned by Call once the connection is gone.
var ErrClosed = errors.New("ws: connection closed")

// Frame types used on the wire, client to daemon and back.
const (
	frameCall   = "call"
	frameResult = "result"
)

// frame is the JSON envelope of every message in either direction. Event
// frames reuse the transport.Kind strings as their type.
type frame struct {
	Type   string          `json:"type"`
	ID     string          `json:"id,omitempty"`     // call correlation
	Method string          `json:"method,omitempty"` // call only
	Name   string          `json:"name,omitempty"`   // event destination store
	State  json.RawMessage `json:"state,omitempty"`  // event payload
	Result json.RawMessage `json:"result,omitempty"` // result payload
	Error  string          `json:"error,omitempty"`  // result failure
}

// Client is a live connection to the daemon. It satisfies transport.Conn.
type Client struct {
	conn *websocket.Conn

	events chan transport.Event
	done   chan struct{}

	writeMu sync.Mutex // serializes writes to conn

	mu      sync.Mutex
	pending map[string]chan frame
	closed  bool
}

// Dial connects to the daemon's WebSocket endpoint and starts the read
// loop. The daemon sends a connect frame on accept, which surfaces as the
// KindConnect event that triggers the registry's initial full refresh.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ws: dial %s: %w", url, err)
	}

	c := &Client{
		conn:    conn,
		events:  make(chan transport.Event, eventBufSize),
		done:    make(chan struct{}),
		pending: make(map[string]chan frame),
	}

	go c.readLoop()
	go c.pingLoop()

	slog.Debug("ws: connected", "url", url)
	return c, nil
}

// Events returns the demultiplexed synchronization stream. The channel
// closes when the connection is gone.
func (c *Client) Events() <-chan transport.Event {
	return c.events
}

// Call invokes the named daemon method and decodes the response into
// result. A nil result discards the response payload. Call fails when ctx
// expires, the daemon reports an error, or the connection closes.
func (c *Client) Call(ctx context.Context, method string, result any) error {
	id := ulid.Make().String()
	ch := make(chan frame, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.pending[id] = ch
	c.mu.Unlock()

	if err := c.writeJSON(frame{Type: frameCall, ID: id, Method: method}); err != nil {
		c.forget(id)
		return fmt.Errorf("ws: call %s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		c.forget(id)
		return ctx.Err()

	case f, ok := <-ch:
		if !ok {
			return ErrClosed
		}
		if f.Error != "" {
			return fmt.Errorf("ws: call %s: daemon error: %s", method, f.Error)
		}
		if result != nil && len(f.Result) > 0 {
			if err := json.Unmarshal(f.Result, result); err != nil {
				return fmt.Errorf("ws: call %s: decode result: %w", method, err)
			}
		}
		return nil
	}
}

// Close tears down the connection. The event channel closes once the read
// loop exits; pending calls fail with ErrClosed.
func (c *Client) Close() error {
	c.writeMu.Lock()
	//nolint:errcheck // best-effort close handshake before dropping the socket
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
	c.writeMu.Unlock()
	return c.conn.Close()
}

// --- internal ---------------------------------------------------------------

// readLoop decodes inbound frames, resolving results against pending calls
// and forwarding events, until the connection fails.
func (c *Client) readLoop() {
	defer c.teardown()

	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var f frame
		if err := c.conn.ReadJSON(&f); err != nil {
			slog.Debug("ws: read loop ending", "err", err)
			return
		}

		switch f.Type {
		case frameResult:
			c.resolve(f)

		case string(transport.KindConnect):
			c.emit(transport.Event{Kind: transport.KindConnect})

		case string(transport.KindState):
			c.emit(transport.Event{Kind: transport.KindState, Name: f.Name, State: f.State})

		case string(transport.KindReset):
			c.emit(transport.Event{Kind: transport.KindReset, Name: f.Name, State: f.State})

		case string(transport.KindEntity):
			c.emit(transport.Event{Kind: transport.KindEntity, Name: f.Name})

		default:
			slog.Debug("ws: unknown frame type", "type", f.Type)
		}
	}
}

// emit forwards an event without ever blocking the read loop. When the
// consumer has fallen eventBufSize events behind, the event is dropped —
// the registry recovers on the next refresh.
func (c *Client) emit(ev transport.Event) {
	select {
	case c.events <- ev:
	default:
		slog.Warn("ws: event consumer too slow, dropping event",
			"kind", ev.Kind, "store", ev.Name)
	}
}

// resolve hands a result frame to the call waiting on its ID.
func (c *Client) resolve(f frame) {
	c.mu.Lock()
	ch, ok := c.pending[f.ID]
	if ok {
		delete(c.pending, f.ID)
	}
	c.mu.Unlock()

	if !ok {
		slog.Debug("ws: orphan result", "id", f.ID)
		return
	}
	ch <- f // buffered, never blocks
}

// forget drops a pending call entry after a local failure or timeout.
func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// teardown marks the client closed, fails all pending calls and closes the
// event channel. Runs exactly once, from the read loop's exit path.
func (c *Client) teardown() {
	c.mu.Lock()
	c.closed = true
	for id, ch := range c.pending {
		delete(c.pending, id)
		close(ch)
	}
	c.mu.Unlock()

	close(c.done)
	close(c.events)
	c.conn.Close()
}

func (c *Client) writeJSON(f frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
	return c.conn.WriteJSON(f)
}

// pingLoop sends periodic ping frames so a dead connection is detected by
// the read deadline rather than hanging forever.
func (c *Client) pingLoop() {
	t := time.NewTicker(pingPeriod)
	defer t.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-t.C:
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
