package api

import (
	"testing"
	"time"

	"factflow/internal/lifecycle"
	"factflow/internal/store"
)

func TestFromWorkItem(t *testing.T) {
	created := time.Date(2025, 4, 1, 12, 30, 0, 123456789, time.UTC)
	dto := FromWorkItem(&store.WorkItem{
		ID:                      7,
		Stage:                   lifecycle.StageAdminReview,
		Content:                 "content",
		RequiresSecondaryReview: true,
		SecondaryReviewReason:   "reason",
		CreatedAt:               created,
	})
	if dto.ID != 7 || dto.Stage != "admin-review" || !dto.RequiresSecondaryReview || dto.SecondaryReviewReason != "reason" {
		t.Fatalf("unexpected dto: %#v", dto)
	}
	if dto.CreatedAt != "2025-04-01T12:30:00.123Z" {
		t.Fatalf("unexpected created timestamp %q", dto.CreatedAt)
	}
	if dto.UpdatedAt != "" {
		t.Fatalf("zero time should be omitted, got %q", dto.UpdatedAt)
	}
	if got := FromWorkItem(nil); got.ID != 0 {
		t.Fatalf("expected zero dto for nil item, got %#v", got)
	}
}

func TestFromFactChecksDefaultsSources(t *testing.T) {
	out := FromFactChecks([]store.FactCheck{{ID: "a", ClaimID: 1, Verdict: "pending"}})
	if len(out) != 1 || out[0].Sources == nil {
		t.Fatalf("expected non-nil sources slice, got %#v", out)
	}
}

func TestFromTransitionRecordsKeepsOrder(t *testing.T) {
	records := []store.TransitionRecord{
		{ID: 2, FromStage: "", ToStage: lifecycle.StageQueued, ActorID: "a"},
		{ID: 1, FromStage: lifecycle.StageQueued, ToStage: lifecycle.StageAssigned, ActorID: "b"},
	}
	out := FromTransitionRecords(records)
	if len(out) != 2 || out[0].ID != 2 || out[1].ID != 1 {
		t.Fatalf("order not preserved: %#v", out)
	}
	if out[0].FromStage != "" || out[1].FromStage != "queued" {
		t.Fatalf("unexpected from stages: %#v", out)
	}
	if empty := FromTransitionRecords(nil); empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", empty)
	}
}

func TestFromStatsIncludesEveryStage(t *testing.T) {
	out := FromStats(map[lifecycle.Stage]int{lifecycle.StagePublished: 3})
	if len(out) != len(lifecycle.AllStages()) {
		t.Fatalf("expected %d stages, got %d", len(lifecycle.AllStages()), len(out))
	}
	if out["published"] != 3 || out["submitted"] != 0 {
		t.Fatalf("unexpected counts: %#v", out)
	}
}
