package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"factflow/internal/access"
	"factflow/internal/lifecycle"
)

// timestampLayout is fixed-width so stored values sort lexically in time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

const (
	workItemColumns   = "id, stage, content, requires_secondary_review, secondary_review_reason, created_at, updated_at"
	claimColumns      = "id, work_item_id, text, created_at"
	factCheckColumns  = "id, claim_id, verdict, confidence, reasoning, sources_json, created_at"
	transitionColumns = "id, work_item_id, from_stage, to_stage, actor_id, reason, metadata_json, created_at"
	actorColumns      = "id, role, display_name, created_at, updated_at"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func getWorkItem(ctx context.Context, q querier, id int64) (*WorkItem, error) {
	row := q.QueryRowContext(ctx, `SELECT `+workItemColumns+` FROM work_items WHERE id = ?`, id)
	item, err := scanWorkItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get work item %d: %w", id, err)
	}
	return item, nil
}

func listClaims(ctx context.Context, q querier, workItemID int64) ([]Claim, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+claimColumns+` FROM claims WHERE work_item_id = ? ORDER BY id ASC`, workItemID)
	if err != nil {
		return nil, fmt.Errorf("list claims for work item %d: %w", workItemID, err)
	}
	defer rows.Close()

	var claims []Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		claims = append(claims, *claim)
	}
	return claims, rows.Err()
}

func scanWorkItem(row scanner) (*WorkItem, error) {
	var (
		item        WorkItem
		stage       string
		needsReview int64
		reason      sql.NullString
		createdRaw  string
		updatedRaw  string
	)
	if err := row.Scan(&item.ID, &stage, &item.Content, &needsReview, &reason, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	item.Stage = lifecycle.Stage(stage)
	item.RequiresSecondaryReview = needsReview != 0
	item.SecondaryReviewReason = reason.String
	item.CreatedAt = parseTimeOrZero(createdRaw)
	item.UpdatedAt = parseTimeOrZero(updatedRaw)
	return &item, nil
}

func scanClaim(row scanner) (*Claim, error) {
	var (
		claim      Claim
		createdRaw string
	)
	if err := row.Scan(&claim.ID, &claim.WorkItemID, &claim.Text, &createdRaw); err != nil {
		return nil, err
	}
	claim.CreatedAt = parseTimeOrZero(createdRaw)
	return &claim, nil
}

func scanFactCheck(row scanner) (*FactCheck, error) {
	var (
		fc         FactCheck
		sources    string
		createdRaw string
	)
	if err := row.Scan(&fc.ID, &fc.ClaimID, &fc.Verdict, &fc.Confidence, &fc.Reasoning, &sources, &createdRaw); err != nil {
		return nil, err
	}
	fc.Sources = []string{}
	if sources != "" {
		if err := json.Unmarshal([]byte(sources), &fc.Sources); err != nil {
			return nil, fmt.Errorf("decode sources: %w", err)
		}
	}
	fc.CreatedAt = parseTimeOrZero(createdRaw)
	return &fc, nil
}

func scanTransition(row scanner) (*TransitionRecord, error) {
	var (
		rec        TransitionRecord
		fromStage  sql.NullString
		toStage    string
		reason     sql.NullString
		metadata   sql.NullString
		createdRaw string
	)
	if err := row.Scan(&rec.ID, &rec.WorkItemID, &fromStage, &toStage, &rec.ActorID, &reason, &metadata, &createdRaw); err != nil {
		return nil, err
	}
	rec.FromStage = lifecycle.Stage(fromStage.String)
	rec.ToStage = lifecycle.Stage(toStage)
	rec.Reason = reason.String
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	rec.CreatedAt = parseTimeOrZero(createdRaw)
	return &rec, nil
}

func scanActor(row scanner) (*Actor, error) {
	var (
		actor       Actor
		roleRaw     string
		displayName sql.NullString
		createdRaw  string
		updatedRaw  string
	)
	if err := row.Scan(&actor.ID, &roleRaw, &displayName, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	role, ok := access.ParseRole(roleRaw)
	if !ok {
		return nil, fmt.Errorf("actor %s has unknown role %q", actor.ID, roleRaw)
	}
	actor.Role = role
	actor.DisplayName = displayName.String
	actor.CreatedAt = parseTimeOrZero(createdRaw)
	actor.UpdatedAt = parseTimeOrZero(updatedRaw)
	return &actor, nil
}

func encodeMetadata(metadata map[string]any) (any, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return string(data), nil
}

func encodeSources(sources []string) (string, error) {
	if sources == nil {
		sources = []string{}
	}
	data, err := json.Marshal(sources)
	if err != nil {
		return "", fmt.Errorf("encode sources: %w", err)
	}
	return string(data), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimeOrZero(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(timestampLayout, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
