package lifecycle

import "strings"

// Stage is one lifecycle state of a work item.
type Stage string

const (
	StageSubmitted         Stage = "submitted"
	StageQueued            Stage = "queued"
	StageDuplicateDetected Stage = "duplicate-detected"
	StageAssigned          Stage = "assigned"
	StageInResearch        Stage = "in-research"
	StageDraftReady        Stage = "draft-ready"
	StageNeedsMoreResearch Stage = "needs-more-research"
	StageAdminReview       Stage = "admin-review"
	StagePeerReview        Stage = "peer-review"
	StageFinalApproval     Stage = "final-approval"
	StagePublished         Stage = "published"
	StageUnderCorrection   Stage = "under-correction"
	StageCorrected         Stage = "corrected"
	StageRejected          Stage = "rejected"
	StageArchived          Stage = "archived"
)

// InitialStage is the stage every work item is created in.
const InitialStage = StageSubmitted

var allStages = []Stage{
	StageSubmitted,
	StageQueued,
	StageDuplicateDetected,
	StageAssigned,
	StageInResearch,
	StageDraftReady,
	StageNeedsMoreResearch,
	StageAdminReview,
	StagePeerReview,
	StageFinalApproval,
	StagePublished,
	StageUnderCorrection,
	StageCorrected,
	StageRejected,
	StageArchived,
}

var stageSet = func() map[Stage]struct{} {
	set := make(map[Stage]struct{}, len(allStages))
	for _, stage := range allStages {
		set[stage] = struct{}{}
	}
	return set
}()

// AllStages returns the ordered list of known stages.
func AllStages() []Stage {
	cp := make([]Stage, len(allStages))
	copy(cp, allStages)
	return cp
}

// ParseStage converts a string into a known Stage. Underscores are accepted
// in place of hyphens so CLI users can type either form.
func ParseStage(value string) (Stage, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	if normalized == "" {
		return "", false
	}
	stage := Stage(normalized)
	_, ok := stageSet[stage]
	return stage, ok
}

// Valid reports whether s is one of the known stages.
func (s Stage) Valid() bool {
	_, ok := stageSet[s]
	return ok
}

func (s Stage) String() string {
	return string(s)
}
