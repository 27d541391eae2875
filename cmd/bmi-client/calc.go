package main

import (
	"context"

	"bmi-client/internal/ui/console"

	"github.com/spf13/cobra"
)

func newCalcCmd(opts *options) *cobra.Command {
	var weight string
	var height string

	c := &cobra.Command{
		Use:   "calc",
		Short: "Calculate once and print the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := bootstrap(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			ui := console.New(cmd.OutOrStdout(), cmd.ErrOrStderr())
			loopDone := make(chan error, 1)
			go func() { loopDone <- a.coord.Run(ctx, ui) }()

			if err := a.coord.Trigger(ctx, weight, height); err != nil {
				return err
			}

			select {
			case <-ui.Done():
			case <-ctx.Done():
				return ctx.Err()
			}

			cancel()
			<-loopDone

			// The outcome has already been printed.
			if err := ui.Err(); err != nil {
				cmd.SilenceErrors = true
				return err
			}
			return nil
		},
	}

	c.Flags().StringVarP(&weight, "weight", "w", "", "Weight in kg")
	c.Flags().StringVarP(&height, "height", "H", "", "Height in cm")
	return c
}
