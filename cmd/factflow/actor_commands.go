package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"factflow/internal/access"
	"factflow/internal/store"
)

func newActorCommand(ctx *commandContext) *cobra.Command {
	actorCmd := &cobra.Command{
		Use:   "actor",
		Short: "Manage actors and their roles",
	}
	actorCmd.AddCommand(newActorAddCommand(ctx))
	actorCmd.AddCommand(newActorListCommand(ctx))
	return actorCmd
}

func newActorAddCommand(ctx *commandContext) *cobra.Command {
	var roleName string
	var displayName string

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Register an actor or change its role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, ok := access.ParseRole(roleName)
			if !ok {
				return fmt.Errorf("unknown role %q (expected one of %s)", roleName, roleNames())
			}
			st, err := ctx.storeFor(cmd)
			if err != nil {
				return err
			}
			actor, err := st.UpsertActor(cmd.Context(), store.Actor{
				ID:          strings.TrimSpace(args[0]),
				Role:        role,
				DisplayName: strings.TrimSpace(displayName),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Actor %s is %s\n", actor.ID, actor.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&roleName, "role", "r", "unprivileged", "Role: "+roleNames())
	cmd.Flags().StringVar(&displayName, "name", "", "Display name")
	return cmd
}

func newActorListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered actors",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.storeFor(cmd)
			if err != nil {
				return err
			}
			actors, err := st.ListActors(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				if actors == nil {
					actors = []*store.Actor{}
				}
				return writeJSON(cmd, actors)
			}
			out := cmd.OutOrStdout()
			if len(actors) == 0 {
				fmt.Fprintln(out, "No actors")
				return nil
			}
			rows := make([][]string, 0, len(actors))
			for _, actor := range actors {
				rows = append(rows, []string{actor.ID, actor.Role.String(), actor.DisplayName})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Role", "Name"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func roleNames() string {
	roles := access.AllRoles()
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.String())
	}
	return strings.Join(names, ", ")
}
