package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/halcyon-audio/halcyon/state"
)

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <store> [field]",
		Short: "Refresh one store and print its value",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			client, reg, err := connect(ctx)
			if err != nil {
				return err
			}
			defer client.Close() //nolint:errcheck
			defer reg.Destroy()

			id := state.Name(args[0])

			callCtx, cancelCall := context.WithTimeout(ctx, cfg.Player.CallTimeout)
			defer cancelCall()
			if err := reg.Refresh(callCtx, id); err != nil {
				return err
			}

			var v any
			if len(args) == 2 {
				v, err = reg.GetField(id, args[1])
			} else {
				v, err = reg.Get(id)
			}
			if err != nil {
				return err
			}
			return printJSON(v)
		},
	}
}
