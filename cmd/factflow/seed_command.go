package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"factflow/internal/seed"
)

func newSeedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <fixture.yaml>",
		Short: "Load actors and work items from a YAML fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fx, err := seed.ParseFile(args[0])
			if err != nil {
				return err
			}
			if _, err := ctx.runtime(cmd.ErrOrStderr()); err != nil {
				return err
			}
			summary, err := seed.Load(cmd.Context(), ctx.store, ctx.engine, fx)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Seeded %d actor(s), %d item(s), %d claim(s), %d transition(s)\n",
				summary.Actors, summary.Items, summary.Claims, summary.Transitions)
			return err
		},
	}
}
