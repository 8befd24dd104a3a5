// Package state is the client-side synchronization core: a registry of
// named stores, each a local cache of one piece of authoritative state
// living in the Halcyon player daemon, kept current by routing the daemon's
// multiplexed event stream.
//
// A Registry is built from store factories and a transport connection:
//
//	reg, err := state.New(ctx, conn, stores.NewVolume, stores.NewPlayback)
//
// Application code reads through Get/GetField, observes changes through
// Select/SelectField, and forces authoritative re-pulls through Refresh and
// RefreshAll. Inbound events are applied automatically: state and reset
// payloads overwrite the matching store, entity-changed notifications
// trigger a per-store refresh, and a connect event triggers a full refresh.
// Destroy reverts every store to its default and closes all subscriptions.
package state
