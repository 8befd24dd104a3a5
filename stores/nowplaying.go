package stores

import (
	"context"
	"fmt"

	"github.com/halcyon-audio/halcyon/state"
	"github.com/halcyon-audio/halcyon/transport"
)

// NowPlaying identifies the current-track metadata store.
var NowPlaying = state.Descriptor{Name: "nowplaying"}

// Track is the metadata of the track currently loaded in the daemon. The
// zero value means nothing is loaded.
type Track struct {
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Album    string  `json:"album"`
	Duration float64 `json:"duration"` // seconds
}

// Field implements state.Keyed.
func (t Track) Field(key string) (any, bool) {
	switch key {
	case "title":
		return t.Title, true
	case "artist":
		return t.Artist, true
	case "album":
		return t.Album, true
	case "duration":
		return t.Duration, true
	}
	return nil, false
}

// NowPlayingStore mirrors the daemon's current-track metadata.
type NowPlayingStore struct {
	*state.Cache[Track]
	conn transport.Caller
}

// NewNowPlaying builds the now-playing store. Register it via state.New.
func NewNowPlaying(c transport.Caller) state.Store {
	return &NowPlayingStore{
		Cache: state.NewCache(NowPlaying.Name, Track{}),
		conn:  c,
	}
}

// Refresh pulls the current track metadata from the daemon.
func (s *NowPlayingStore) Refresh(ctx context.Context) error {
	var t Track
	if err := s.conn.Call(ctx, "nowplaying.get", &t); err != nil {
		return fmt.Errorf("stores: nowplaying: %w", err)
	}
	s.Put(t)
	return nil
}
