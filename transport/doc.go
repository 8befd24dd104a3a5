// Package transport defines the boundary between the state-synchronization
// core and the connection to the Halcyon player daemon: the event payloads
// the daemon pushes and the interfaces a connection implementation must
// provide. The core never dials, reconnects, or serializes anything itself —
// it only consumes what a transport produces.
package transport
