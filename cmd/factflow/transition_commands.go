package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"factflow/internal/api"
	"factflow/internal/lifecycle"
)

const actorEnv = "FACTFLOW_ACTOR"

func newTransitionCommand(ctx *commandContext) *cobra.Command {
	var actorID string
	var reason string
	var meta []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "transition <item-id> <stage>",
		Short: "Move a work item to another stage",
		Long: `Move a work item along one edge of the stage graph.

The acting user comes from --as, falling back to $FACTFLOW_ACTOR. The move is
rejected when the edge does not exist or the actor's role is below the
minimum the edge requires.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			actor := strings.TrimSpace(actorID)
			if actor == "" {
				actor = strings.TrimSpace(os.Getenv(actorEnv))
			}
			if actor == "" {
				return fmt.Errorf("actor is required (use --as or set %s)", actorEnv)
			}
			metadata, err := parseMetadata(meta)
			if err != nil {
				return err
			}
			items, err := ctx.runtime(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			item, err := items.Transition(cmd.Context(), id, actor, api.TransitionRequest{
				To:       args[1],
				Reason:   reason,
				Metadata: metadata,
			})
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, item)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Work item %d is now %s\n", item.ID, formatStage(item.Stage, shouldColorize(out)))
			if item.RequiresSecondaryReview {
				fmt.Fprintf(out, "Flagged for secondary review: %s\n", item.SecondaryReviewReason)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&actorID, "as", "", "Acting user id")
	cmd.Flags().StringVarP(&reason, "reason", "r", "", "Reason recorded in the audit trail")
	cmd.Flags().StringArrayVarP(&meta, "meta", "m", nil, "Metadata key=value (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history <item-id>",
		Short: "Show the audit trail of a work item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			items, err := ctx.runtime(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			history, err := items.History(cmd.Context(), id)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, history)
			}
			out := cmd.OutOrStdout()
			if len(history.Records) == 0 {
				fmt.Fprintf(out, "Work item %d has no transitions\n", id)
				return nil
			}
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(history.Records))
			for _, record := range history.Records {
				rows = append(rows, []string{
					record.CreatedAt,
					formatStage(record.FromStage, colorize),
					formatStage(record.ToStage, colorize),
					record.ActorID,
					truncate(record.Reason, 40),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"When", "From", "To", "Actor", "Reason"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newStagesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stages [stage]",
		Short: "Show the stage graph or the edges leaving one stage",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := ctx.runtime(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			stages := lifecycle.AllStages()
			if len(args) == 1 {
				stage, ok := lifecycle.ParseStage(args[0])
				if !ok {
					return fmt.Errorf("unknown stage %q", args[0])
				}
				stages = []lifecycle.Stage{stage}
			}
			all := make([]api.StageTransitions, 0, len(stages))
			for _, stage := range stages {
				transitions, err := items.StageTransitions(stage)
				if err != nil {
					return err
				}
				all = append(all, transitions)
			}
			if jsonOutput {
				if len(args) == 1 {
					return writeJSON(cmd, all[0])
				}
				return writeJSON(cmd, all)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(all))
			for _, transitions := range all {
				targets := make([]string, 0, len(transitions.Targets))
				for _, target := range transitions.Targets {
					targets = append(targets, fmt.Sprintf("%s (%s)", target.Stage, target.RequiredRole))
				}
				next := strings.Join(targets, ", ")
				if transitions.Terminal {
					next = "terminal"
				}
				rows = append(rows, []string{formatStage(transitions.From, colorize), next})
			}
			fmt.Fprintln(out, renderTable([]string{"Stage", "Next (minimum role)"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func parseMetadata(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	metadata := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata %q (expected key=value)", pair)
		}
		metadata[key] = strings.TrimSpace(value)
	}
	return metadata, nil
}
