package stores

import (
	"context"
	"fmt"

	"github.com/halcyon-audio/halcyon/state"
	"github.com/halcyon-audio/halcyon/transport"
)

// Volume identifies the master volume store.
var Volume = state.Descriptor{Name: "volume"}

// DefaultVolume is the level assumed before the first refresh, in percent.
const DefaultVolume = 50

// VolumeStore mirrors the daemon's master volume, 0–100 percent.
type VolumeStore struct {
	*state.Cache[int]
	conn transport.Caller
}

// NewVolume builds the volume store. Register it via state.New.
func NewVolume(c transport.Caller) state.Store {
	return &VolumeStore{
		Cache: state.NewCache(Volume.Name, DefaultVolume),
		conn:  c,
	}
}

// Refresh pulls the current volume from the daemon.
func (s *VolumeStore) Refresh(ctx context.Context) error {
	var v int
	if err := s.conn.Call(ctx, "volume.get", &v); err != nil {
		return fmt.Errorf("stores: volume: %w", err)
	}
	s.Put(v)
	return nil
}
