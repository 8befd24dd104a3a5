// Package ws implements transport.Conn over a WebSocket connection to the
// Halcyon player daemon. Frames are JSON envelopes; calls are correlated to
// their results by ULID, and pushed events are demultiplexed onto the event
// channel. The client deliberately does not reconnect: when the connection
// drops, the event channel closes, pending and future calls fail, and the
// caller decides what to do next.
package ws
