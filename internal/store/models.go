package store

import (
	"time"

	"factflow/internal/access"
	"factflow/internal/lifecycle"
)

// Fact check defaults applied when the dispatcher opens a record.
const (
	VerdictPending = "pending"
)

// WorkItem is a fact-check submission moving through the editorial stages.
type WorkItem struct {
	ID                      int64           `json:"id"`
	Stage                   lifecycle.Stage `json:"stage"`
	Content                 string          `json:"content"`
	RequiresSecondaryReview bool            `json:"requires_secondary_review"`
	SecondaryReviewReason   string          `json:"secondary_review_reason,omitempty"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// Claim is a checkable statement extracted from a work item.
type Claim struct {
	ID         int64     `json:"id"`
	WorkItemID int64     `json:"work_item_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// FactCheck is the research record opened for a claim. At most one exists per
// claim.
type FactCheck struct {
	ID         string    `json:"id"`
	ClaimID    int64     `json:"claim_id"`
	Verdict    string    `json:"verdict"`
	Confidence float64   `json:"confidence"`
	Reasoning  string    `json:"reasoning"`
	Sources    []string  `json:"sources"`
	CreatedAt  time.Time `json:"created_at"`
}

// TransitionRecord is one immutable audit entry. FromStage is empty when the
// previous stage is unknown.
type TransitionRecord struct {
	ID         int64           `json:"id"`
	WorkItemID int64           `json:"work_item_id"`
	FromStage  lifecycle.Stage `json:"from_stage,omitempty"`
	ToStage    lifecycle.Stage `json:"to_stage"`
	ActorID    string          `json:"actor_id"`
	Reason     string          `json:"reason,omitempty"`
	Metadata   map[string]any  `json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Actor is a user known to the store-backed identity resolver.
type Actor struct {
	ID          string      `json:"id"`
	Role        access.Role `json:"role"`
	DisplayName string      `json:"display_name,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// DatabaseHealth describes the state of the SQLite database for diagnostics.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    int
	MissingTables    []string
	IntegrityCheck   bool
	TotalItems       int
	TotalRecords     int
	Error            string
}
