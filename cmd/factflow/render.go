package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"factflow/internal/lifecycle"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// stageColors groups stages by how close they are to a final outcome.
var stageColors = map[lifecycle.Stage]text.Colors{
	lifecycle.StagePublished:         {text.FgGreen, text.Bold},
	lifecycle.StageCorrected:         {text.FgGreen},
	lifecycle.StageRejected:          {text.FgRed},
	lifecycle.StageArchived:          {text.FgHiBlack},
	lifecycle.StageUnderCorrection:   {text.FgYellow},
	lifecycle.StageNeedsMoreResearch: {text.FgYellow},
	lifecycle.StageAdminReview:       {text.FgCyan},
	lifecycle.StagePeerReview:        {text.FgCyan},
	lifecycle.StageFinalApproval:     {text.FgCyan, text.Bold},
}

func formatStage(stage string, colorize bool) string {
	if !colorize {
		return stage
	}
	if colors, ok := stageColors[lifecycle.Stage(stage)]; ok {
		return colors.Sprint(stage)
	}
	return stage
}

func truncate(value string, limit int) string {
	value = strings.Join(strings.Fields(value), " ")
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func printField(out io.Writer, label, value string) {
	fmt.Fprintf(out, "%-20s %s\n", label+":", value)
}
