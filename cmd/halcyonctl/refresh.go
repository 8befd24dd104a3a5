package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/halcyon-audio/halcyon/state"
)

func refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh [store]",
		Short: "Pull authoritative state for one store, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			client, reg, err := connect(ctx)
			if err != nil {
				return err
			}
			defer client.Close() //nolint:errcheck
			defer reg.Destroy()

			callCtx, cancelCall := context.WithTimeout(ctx, cfg.Player.CallTimeout)
			defer cancelCall()

			if len(args) == 1 {
				if err := reg.Refresh(callCtx, state.Name(args[0])); err != nil {
					return err
				}
			} else if err := reg.RefreshAll(callCtx); err != nil {
				return err
			}

			// Print everything that was refreshed.
			out := make(map[string]any, len(reg.Names()))
			names := reg.Names()
			if len(args) == 1 {
				names = args
			}
			for _, name := range names {
				v, err := reg.Get(state.Name(name))
				if err != nil {
					return err
				}
				out[name] = v
			}
			return printJSON(out)
		},
	}
}
