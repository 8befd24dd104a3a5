package stores

import (
	"context"
	"fmt"

	"github.com/halcyon-audio/halcyon/state"
	"github.com/halcyon-audio/halcyon/transport"
)

// Playback identifies the playback transport store.
var Playback = state.Descriptor{Name: "playback"}

// Playback transport states reported by the daemon.
const (
	StatePlaying = "playing"
	StatePaused  = "paused"
	StateStopped = "stopped"
)

// PlaybackState is the daemon's transport snapshot.
type PlaybackState struct {
	// State is one of: playing | paused | stopped.
	State string `json:"state"`

	// Position is seconds into the current track.
	Position float64 `json:"position"`

	// TrackID identifies the current queue entry; empty when stopped.
	TrackID string `json:"track_id"`
}

// Field implements state.Keyed so individual transport fields can be read
// and subscribed to without decoding the whole snapshot.
func (p PlaybackState) Field(key string) (any, bool) {
	switch key {
	case "state":
		return p.State, true
	case "position":
		return p.Position, true
	case "track_id":
		return p.TrackID, true
	}
	return nil, false
}

var defaultPlayback = PlaybackState{State: StateStopped}

// PlaybackStore mirrors the daemon's playback transport state.
type PlaybackStore struct {
	*state.Cache[PlaybackState]
	conn transport.Caller
}

// NewPlayback builds the playback store. Register it via state.New.
func NewPlayback(c transport.Caller) state.Store {
	return &PlaybackStore{
		Cache: state.NewCache(Playback.Name, defaultPlayback),
		conn:  c,
	}
}

// Refresh pulls the current transport snapshot from the daemon.
func (s *PlaybackStore) Refresh(ctx context.Context) error {
	var p PlaybackState
	if err := s.conn.Call(ctx, "playback.get", &p); err != nil {
		return fmt.Errorf("stores: playback: %w", err)
	}
	s.Put(p)
	return nil
}
