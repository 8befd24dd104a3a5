package transport

import "encoding/json"

// Kind discriminates the logical channels of the daemon's multiplexed
// synchronization stream.
type Kind string

const (
	// KindConnect signals that the connection to the daemon has been
	// (re-)established. Carries no name and no payload.
	KindConnect Kind = "connect"

	// KindState carries a full or partial value for one store, to be
	// applied directly without a round trip.
	KindState Kind = "event:state"

	// KindReset is a server-initiated revert. Like KindState it carries
	// the value to apply.
	KindReset Kind = "event:reset"

	// KindEntity signals that the named store's remote state changed
	// without carrying the new value, forcing an authoritative re-pull.
	KindEntity Kind = "event:entity"
)

// StateUpdate is the payload of state and reset events: a store name plus
// the raw value to apply. The store itself decodes State into its value
// type.
type StateUpdate struct {
	Name  string          `json:"name"`
	State json.RawMessage `json:"state"`
}

// EntityEvent is the payload of entity-changed notifications. It names the
// store whose remote state changed but carries no value.
type EntityEvent struct {
	Name string `json:"name"`
}

// Event is one demultiplexed message from the daemon's stream. Name and
// State are populated depending on Kind; a KindConnect event carries
// neither.
type Event struct {
	Kind  Kind
	Name  string
	State json.RawMessage
}
