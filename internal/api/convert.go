package api

import (
	"time"

	"factflow/internal/lifecycle"
	"factflow/internal/store"
)

// FromWorkItem converts a stored work item to its API representation.
func FromWorkItem(item *store.WorkItem) WorkItem {
	if item == nil {
		return WorkItem{}
	}
	return WorkItem{
		ID:                      item.ID,
		Stage:                   string(item.Stage),
		Content:                 item.Content,
		RequiresSecondaryReview: item.RequiresSecondaryReview,
		SecondaryReviewReason:   item.SecondaryReviewReason,
		CreatedAt:               formatTime(item.CreatedAt),
		UpdatedAt:               formatTime(item.UpdatedAt),
	}
}

// FromWorkItems converts a slice of stored work items into API DTOs.
func FromWorkItems(items []*store.WorkItem) []WorkItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]WorkItem, 0, len(items))
	for _, item := range items {
		out = append(out, FromWorkItem(item))
	}
	return out
}

// FromClaims converts stored claims into API DTOs.
func FromClaims(claims []store.Claim) []Claim {
	if len(claims) == 0 {
		return nil
	}
	out := make([]Claim, 0, len(claims))
	for _, claim := range claims {
		out = append(out, FromClaim(claim))
	}
	return out
}

// FromClaim converts a stored claim.
func FromClaim(claim store.Claim) Claim {
	return Claim{ID: claim.ID, Text: claim.Text, CreatedAt: formatTime(claim.CreatedAt)}
}

// FromFactChecks converts stored fact checks into API DTOs.
func FromFactChecks(checks []store.FactCheck) []FactCheck {
	if len(checks) == 0 {
		return nil
	}
	out := make([]FactCheck, 0, len(checks))
	for _, fc := range checks {
		sources := fc.Sources
		if sources == nil {
			sources = []string{}
		}
		out = append(out, FactCheck{
			ID:         fc.ID,
			ClaimID:    fc.ClaimID,
			Verdict:    fc.Verdict,
			Confidence: fc.Confidence,
			Reasoning:  fc.Reasoning,
			Sources:    sources,
			CreatedAt:  formatTime(fc.CreatedAt),
		})
	}
	return out
}

// FromTransitionRecords converts an audit trail, preserving order.
func FromTransitionRecords(records []store.TransitionRecord) []TransitionRecord {
	out := make([]TransitionRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, TransitionRecord{
			ID:        rec.ID,
			FromStage: string(rec.FromStage),
			ToStage:   string(rec.ToStage),
			ActorID:   rec.ActorID,
			Reason:    rec.Reason,
			Metadata:  rec.Metadata,
			CreatedAt: formatTime(rec.CreatedAt),
		})
	}
	return out
}

// FromStats converts stage counts, including zero entries for every stage.
func FromStats(stats map[lifecycle.Stage]int) map[string]int {
	out := make(map[string]int, len(lifecycle.AllStages()))
	for _, stage := range lifecycle.AllStages() {
		out[string(stage)] = stats[stage]
	}
	for stage, count := range stats {
		out[string(stage)] = count
	}
	return out
}

func stageStrings(stages []lifecycle.Stage) []string {
	if len(stages) == 0 {
		return nil
	}
	out := make([]string, len(stages))
	for i, stage := range stages {
		out[i] = string(stage)
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
