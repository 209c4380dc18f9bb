package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"factflow/internal/lifecycle"
	"factflow/internal/logging"
	"factflow/internal/store"
)

// Metadata keys returned when a fact check is opened.
const (
	MetaFactCheckCreated = "fact_check_created"
	MetaFactCheckID      = "fact_check_id"
	MetaClaimID          = "claim_id"
)

// Records is the transactional view the dispatcher reads and writes through.
// store.Tx satisfies it.
type Records interface {
	LinkedClaims(ctx context.Context, workItemID int64) ([]store.Claim, error)
	FactCheckForClaim(ctx context.Context, claimID int64) (*store.FactCheck, error)
	CreateFactCheck(ctx context.Context, fc *store.FactCheck) error
}

// Dispatcher opens a fact check for the first linked claim of a work item.
type Dispatcher struct {
	logger   *slog.Logger
	triggers map[lifecycle.Stage]struct{}
}

// New builds a dispatcher that fires on entry to assigned or in-research.
func New(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		logger: logging.NewComponentLogger(logger, "dispatch"),
		triggers: map[lifecycle.Stage]struct{}{
			lifecycle.StageAssigned:   {},
			lifecycle.StageInResearch: {},
		},
	}
}

// Triggers reports whether entering target runs the dispatcher.
func (d *Dispatcher) Triggers(target lifecycle.Stage) bool {
	_, ok := d.triggers[target]
	return ok
}

// Dispatch processes exactly one claim: the lowest claim ID linked to
// workItemID. It returns nil metadata when there is nothing to do, either
// because the item has no claims or because that claim already has a fact
// check.
func (d *Dispatcher) Dispatch(ctx context.Context, records Records, workItemID int64, target lifecycle.Stage) (map[string]any, error) {
	if !d.Triggers(target) {
		return nil, nil
	}
	logger := logging.WithContext(ctx, d.logger)

	claims, err := records.LinkedClaims(ctx, workItemID)
	if err != nil {
		return nil, fmt.Errorf("load linked claims: %w", err)
	}
	if len(claims) == 0 {
		logging.WarnWithContext(logger, "no linked claims; fact check not created", "dispatch_no_claims",
			logging.Int64(logging.FieldWorkItemID, workItemID),
			logging.String(logging.FieldStage, string(target)),
			logging.String(logging.FieldErrorHint, "add a claim to the work item before research"),
			logging.String(logging.FieldImpact, "research proceeds without a fact check record"),
		)
		return nil, nil
	}

	claim := claims[0]
	existing, err := records.FactCheckForClaim(ctx, claim.ID)
	if err != nil {
		return nil, fmt.Errorf("look up fact check for claim %d: %w", claim.ID, err)
	}
	if existing != nil {
		logger.Debug("fact check already exists",
			logging.Int64(MetaClaimID, claim.ID),
			logging.String(MetaFactCheckID, existing.ID),
		)
		return nil, nil
	}

	fc := &store.FactCheck{
		ClaimID:    claim.ID,
		Verdict:    store.VerdictPending,
		Confidence: 0,
		Sources:    []string{},
	}
	if err := records.CreateFactCheck(ctx, fc); err != nil {
		return nil, fmt.Errorf("create fact check for claim %d: %w", claim.ID, err)
	}
	logger.Info("fact check created",
		logging.String(logging.FieldEventType, "fact_check_created"),
		logging.Int64(MetaClaimID, claim.ID),
		logging.String(MetaFactCheckID, fc.ID),
	)
	return map[string]any{
		MetaFactCheckCreated: true,
		MetaFactCheckID:      fc.ID,
		MetaClaimID:          claim.ID,
	}, nil
}
