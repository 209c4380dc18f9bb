package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// WorkItem describes a work item in a transport-friendly format.
type WorkItem struct {
	ID                      int64       `json:"id"`
	Stage                   string      `json:"stage"`
	Content                 string      `json:"content"`
	RequiresSecondaryReview bool        `json:"requiresSecondaryReview"`
	SecondaryReviewReason   string      `json:"secondaryReviewReason,omitempty"`
	CreatedAt               string      `json:"createdAt,omitempty"`
	UpdatedAt               string      `json:"updatedAt,omitempty"`
	ValidTransitions        []string    `json:"validTransitions,omitempty"`
	Claims                  []Claim     `json:"claims,omitempty"`
	FactChecks              []FactCheck `json:"factChecks,omitempty"`
}

// Claim is a checkable statement linked to a work item.
type Claim struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// FactCheck is the research record opened for a claim.
type FactCheck struct {
	ID         string   `json:"id"`
	ClaimID    int64    `json:"claimId"`
	Verdict    string   `json:"verdict"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	Sources    []string `json:"sources"`
	CreatedAt  string   `json:"createdAt,omitempty"`
}

// TransitionRecord is one audit trail entry.
type TransitionRecord struct {
	ID        int64          `json:"id"`
	FromStage string         `json:"fromStage,omitempty"`
	ToStage   string         `json:"toStage"`
	ActorID   string         `json:"actorId"`
	Reason    string         `json:"reason,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt string         `json:"createdAt"`
}

// StageTarget is one outgoing edge and the minimum role that may take it.
type StageTarget struct {
	Stage        string `json:"stage"`
	RequiredRole string `json:"requiredRole"`
}

// StageTransitions lists the edges leaving a stage.
type StageTransitions struct {
	From     string        `json:"from"`
	Terminal bool          `json:"terminal"`
	Targets  []StageTarget `json:"targets"`
}

// TransitionRequest is the body of a transition call. The acting user comes
// from the request headers, not the body.
type TransitionRequest struct {
	To       string         `json:"to"`
	Reason   string         `json:"reason,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// CreateItemRequest is the body of a work item intake call.
type CreateItemRequest struct {
	Content string   `json:"content"`
	Claims  []string `json:"claims,omitempty"`
}

// AddClaimRequest is the body of a claim intake call.
type AddClaimRequest struct {
	Text string `json:"text"`
}

// WorkItemResponse wraps a single work item.
type WorkItemResponse struct {
	Item WorkItem `json:"item"`
}

// WorkItemListResponse wraps a collection of work items.
type WorkItemListResponse struct {
	Items []WorkItem `json:"items"`
}

// HistoryResponse wraps a work item's audit trail.
type HistoryResponse struct {
	WorkItemID int64              `json:"workItemId"`
	Records    []TransitionRecord `json:"records"`
}

// ClaimResponse wraps a single claim.
type ClaimResponse struct {
	Claim Claim `json:"claim"`
}

// StatsResponse provides work item counts keyed by stage.
type StatsResponse struct {
	Counts map[string]int `json:"counts"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// DuplicateCandidate is an existing work item whose content resembles another.
type DuplicateCandidate struct {
	ID      int64   `json:"id"`
	Stage   string  `json:"stage"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// DuplicatesResponse lists likely duplicates of a work item, best first.
type DuplicatesResponse struct {
	WorkItemID int64                `json:"workItemId"`
	Threshold  float64              `json:"threshold"`
	Candidates []DuplicateCandidate `json:"candidates"`
}
