package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/halcyon-audio/halcyon/state"
	"github.com/halcyon-audio/halcyon/stores"
	"github.com/halcyon-audio/halcyon/transport/ws"
)

// connect dials the daemon and builds a registry over all known stores.
// Callers own both teardowns: reg.Destroy then client.Close.
func connect(ctx context.Context) (*ws.Client, *state.Registry, error) {
	dialCtx, cancel := context.WithTimeout(ctx, cfg.Player.DialTimeout)
	defer cancel()

	client, err := ws.Dial(dialCtx, cfg.Player.URL)
	if err != nil {
		return nil, nil, err
	}

	reg, err := state.New(ctx, client,
		stores.NewVolume,
		stores.NewPlayback,
		stores.NewNowPlaying,
	)
	if err != nil {
		client.Close() //nolint:errcheck
		return nil, nil, err
	}

	return client, reg, nil
}

// printJSON writes v to stdout as one JSON line.
func printJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
