package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"factflow/internal/lifecycle"
)

// Tx is the unit-of-work view handed to RunInTransaction callbacks. All reads
// and writes made through it commit or roll back together.
type Tx interface {
	// GetWorkItem returns the work item or nil when it does not exist.
	GetWorkItem(ctx context.Context, id int64) (*WorkItem, error)
	// SaveWorkItemStage persists item's stage and secondary review flags,
	// provided the stored stage still equals expected. It returns ErrConflict
	// otherwise.
	SaveWorkItemStage(ctx context.Context, item *WorkItem, expected lifecycle.Stage) error
	// AppendTransition inserts rec and assigns its ID.
	AppendTransition(ctx context.Context, rec *TransitionRecord) error
	// LinkedClaims returns the work item's claims in ascending ID order.
	LinkedClaims(ctx context.Context, workItemID int64) ([]Claim, error)
	// FactCheckForClaim returns the fact check for claimID or nil when none exists.
	FactCheckForClaim(ctx context.Context, claimID int64) (*FactCheck, error)
	// CreateFactCheck inserts fc, assigning an ID and defaults where unset.
	CreateFactCheck(ctx context.Context, fc *FactCheck) error
}

var _ Tx = (*sqliteTx)(nil)

type sqliteTx struct {
	tx  *sql.Tx
	now func() time.Time
}

func (t *sqliteTx) GetWorkItem(ctx context.Context, id int64) (*WorkItem, error) {
	return getWorkItem(ctx, t.tx, id)
}

func (t *sqliteTx) SaveWorkItemStage(ctx context.Context, item *WorkItem, expected lifecycle.Stage) error {
	if item == nil {
		return errors.New("save work item stage: item is nil")
	}
	now := t.now().UTC()
	res, err := t.tx.ExecContext(ctx,
		`UPDATE work_items
         SET stage = ?, requires_secondary_review = ?, secondary_review_reason = ?, updated_at = ?
         WHERE id = ? AND stage = ?`,
		string(item.Stage),
		boolToInt(item.RequiresSecondaryReview),
		nullableString(item.SecondaryReviewReason),
		formatTime(now),
		item.ID,
		string(expected),
	)
	if err != nil {
		return fmt.Errorf("update work item stage: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update work item stage: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: work item %d is no longer in stage %s", ErrConflict, item.ID, expected)
	}
	item.UpdatedAt = now
	return nil
}

func (t *sqliteTx) AppendTransition(ctx context.Context, rec *TransitionRecord) error {
	if rec == nil {
		return errors.New("append transition: record is nil")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = t.now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	metadata, err := encodeMetadata(rec.Metadata)
	if err != nil {
		return fmt.Errorf("append transition: %w", err)
	}
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO transition_records (work_item_id, from_stage, to_stage, actor_id, reason, metadata_json, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.WorkItemID,
		nullableString(string(rec.FromStage)),
		string(rec.ToStage),
		rec.ActorID,
		nullableString(rec.Reason),
		metadata,
		formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert transition record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("transition record id: %w", err)
	}
	rec.ID = id
	return nil
}

func (t *sqliteTx) LinkedClaims(ctx context.Context, workItemID int64) ([]Claim, error) {
	return listClaims(ctx, t.tx, workItemID)
}

func (t *sqliteTx) FactCheckForClaim(ctx context.Context, claimID int64) (*FactCheck, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+factCheckColumns+` FROM fact_checks WHERE claim_id = ?`, claimID)
	fc, err := scanFactCheck(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get fact check for claim %d: %w", claimID, err)
	}
	return fc, nil
}

func (t *sqliteTx) CreateFactCheck(ctx context.Context, fc *FactCheck) error {
	if fc == nil {
		return errors.New("create fact check: record is nil")
	}
	if fc.ID == "" {
		fc.ID = uuid.NewString()
	}
	if strings.TrimSpace(fc.Verdict) == "" {
		fc.Verdict = VerdictPending
	}
	if fc.Sources == nil {
		fc.Sources = []string{}
	}
	if fc.CreatedAt.IsZero() {
		fc.CreatedAt = t.now()
	}
	fc.CreatedAt = fc.CreatedAt.UTC()
	sources, err := encodeSources(fc.Sources)
	if err != nil {
		return fmt.Errorf("create fact check: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx,
		`INSERT INTO fact_checks (id, claim_id, verdict, confidence, reasoning, sources_json, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fc.ID,
		fc.ClaimID,
		fc.Verdict,
		fc.Confidence,
		fc.Reasoning,
		sources,
		formatTime(fc.CreatedAt),
	); err != nil {
		return fmt.Errorf("insert fact check for claim %d: %w", fc.ClaimID, err)
	}
	return nil
}
