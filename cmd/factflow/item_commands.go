package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"factflow/internal/api"
	"factflow/internal/lifecycle"
)

func newItemCommand(ctx *commandContext) *cobra.Command {
	itemCmd := &cobra.Command{
		Use:   "item",
		Short: "Create and inspect work items",
	}
	itemCmd.AddCommand(newItemAddCommand(ctx))
	itemCmd.AddCommand(newItemShowCommand(ctx))
	itemCmd.AddCommand(newItemListCommand(ctx))
	itemCmd.AddCommand(newItemDuplicatesCommand(ctx))
	return itemCmd
}

func newItemAddCommand(ctx *commandContext) *cobra.Command {
	var claims []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "add <content>",
		Short: "Submit a new work item",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := ctx.runtime(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			item, err := items.Create(cmd.Context(), api.CreateItemRequest{
				Content: strings.Join(args, " "),
				Claims:  claims,
			})
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, item)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created work item %d (%s) with %d claim(s)\n", item.ID, item.Stage, len(item.Claims))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&claims, "claim", nil, "Claim to attach (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newItemShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a work item with its claims and fact checks",
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
			item, err := items.Describe(cmd.Context(), id)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, item)
			}
			renderItem(cmd.OutOrStdout(), item, shouldColorize(cmd.OutOrStdout()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newItemListCommand(ctx *commandContext) *cobra.Command {
	var stageFilters []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List work items",
		RunE: func(cmd *cobra.Command, args []string) error {
			stages, err := parseStages(stageFilters)
			if err != nil {
				return err
			}
			items, err := ctx.runtime(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			list, err := items.List(cmd.Context(), stages...)
			if err != nil {
				return err
			}
			if jsonOutput {
				if list == nil {
					list = []api.WorkItem{}
				}
				return writeJSON(cmd, list)
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No work items")
				return nil
			}
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(list))
			for _, item := range list {
				rows = append(rows, []string{
					strconv.FormatInt(item.ID, 10),
					formatStage(item.Stage, colorize),
					yesNo(item.RequiresSecondaryReview),
					truncate(item.Content, 50),
					item.UpdatedAt,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Stage", "Flagged", "Content", "Updated"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&stageFilters, "stage", "s", nil, "Filter by stage (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newItemDuplicatesCommand(ctx *commandContext) *cobra.Command {
	var threshold float64
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "duplicates <id>",
		Short: "List existing work items with similar content",
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
			resp, err := items.Duplicates(cmd.Context(), id, threshold, limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, resp)
			}
			out := cmd.OutOrStdout()
			if len(resp.Candidates) == 0 {
				fmt.Fprintf(out, "No likely duplicates of work item %d (threshold %.2f)\n", id, resp.Threshold)
				return nil
			}
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(resp.Candidates))
			for _, c := range resp.Candidates {
				rows = append(rows, []string{
					strconv.FormatInt(c.ID, 10),
					strconv.FormatFloat(c.Score, 'f', 2, 64),
					formatStage(c.Stage, colorize),
					truncate(c.Content, 50),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Score", "Stage", "Content"},
				rows,
				[]columnAlignment{alignRight, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Minimum similarity score (default 0.6)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum candidates to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func renderItem(out io.Writer, item *api.WorkItem, colorize bool) {
	printField(out, "ID", strconv.FormatInt(item.ID, 10))
	printField(out, "Stage", formatStage(item.Stage, colorize))
	printField(out, "Content", item.Content)
	if item.RequiresSecondaryReview {
		printField(out, "Secondary review", item.SecondaryReviewReason)
	}
	printField(out, "Created", item.CreatedAt)
	printField(out, "Updated", item.UpdatedAt)
	next := "none (terminal)"
	if len(item.ValidTransitions) > 0 {
		next = strings.Join(item.ValidTransitions, ", ")
	}
	printField(out, "Next stages", next)

	if len(item.Claims) > 0 {
		rows := make([][]string, 0, len(item.Claims))
		for _, claim := range item.Claims {
			rows = append(rows, []string{strconv.FormatInt(claim.ID, 10), truncate(claim.Text, 60)})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable([]string{"Claim", "Text"}, rows, []columnAlignment{alignRight}))
	}
	if len(item.FactChecks) > 0 {
		rows := make([][]string, 0, len(item.FactChecks))
		for _, check := range item.FactChecks {
			rows = append(rows, []string{
				check.ID,
				strconv.FormatInt(check.ClaimID, 10),
				check.Verdict,
				strconv.FormatFloat(check.Confidence, 'f', 2, 64),
			})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable(
			[]string{"Fact check", "Claim", "Verdict", "Confidence"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight},
		))
	}
}

func parseItemID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid work item id %q", value)
	}
	return id, nil
}

func parseStages(values []string) ([]lifecycle.Stage, error) {
	stages := make([]lifecycle.Stage, 0, len(values))
	for _, value := range values {
		stage, ok := lifecycle.ParseStage(value)
		if !ok {
			return nil, fmt.Errorf("unknown stage %q", value)
		}
		stages = append(stages, stage)
	}
	return stages, nil
}
