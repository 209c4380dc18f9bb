package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newClaimCommand(ctx *commandContext) *cobra.Command {
	claimCmd := &cobra.Command{
		Use:   "claim",
		Short: "Manage claims attached to work items",
	}
	claimCmd.AddCommand(newClaimAddCommand(ctx))
	return claimCmd
}

func newClaimAddCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "add <item-id> <text>",
		Short: "Attach a claim to a work item",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			items, err := ctx.runtime(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			claim, err := items.AddClaim(cmd.Context(), id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, claim)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added claim %d to work item %d\n", claim.ID, id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
