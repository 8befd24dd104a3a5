package transport

import "context"

// Caller issues request/response calls against the player daemon. Store
// implementations use it to pull authoritative state during a refresh.
type Caller interface {
	// Call invokes the named daemon method and decodes the response into
	// result. A nil result discards the response payload.
	Call(ctx context.Context, method string, result any) error
}

// EventSource exposes the daemon's multiplexed synchronization stream. The
// channel closes when the underlying connection is gone for good; the
// source performs no reconnection.
type EventSource interface {
	Events() <-chan Event
}

// Conn is the client-side view of a daemon connection as the
// synchronization core consumes it.
type Conn interface {
	Caller
	EventSource
}
