package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"factflow/internal/lifecycle"
)

// CreateWorkItem stores new submitted content in the initial stage.
func (s *Store) CreateWorkItem(ctx context.Context, content string) (*WorkItem, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("work item content is required")
	}
	now := s.now().UTC()
	res, err := s.execWithRetry(ctx,
		`INSERT INTO work_items (stage, content, requires_secondary_review, created_at, updated_at)
         VALUES (?, ?, 0, ?, ?)`,
		string(lifecycle.InitialStage),
		content,
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert work item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("work item id: %w", err)
	}
	return &WorkItem{
		ID:        id,
		Stage:     lifecycle.InitialStage,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetWorkItem fetches a work item by ID. It returns nil when absent.
func (s *Store) GetWorkItem(ctx context.Context, id int64) (*WorkItem, error) {
	return getWorkItem(ensureContext(ctx), s.db, id)
}

// ListWorkItems returns work items ordered by ID, optionally filtered by stage.
func (s *Store) ListWorkItems(ctx context.Context, stages ...lifecycle.Stage) ([]*WorkItem, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + workItemColumns + ` FROM work_items`
	args := make([]any, 0, len(stages))
	if len(stages) > 0 {
		query += ` WHERE stage IN (` + makePlaceholders(len(stages)) + `)`
		for _, stage := range stages {
			args = append(args, string(stage))
		}
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list work items: %w", err)
	}
	defer rows.Close()

	var items []*WorkItem
	for rows.Next() {
		item, err := scanWorkItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// AddClaim links a new claim to an existing work item.
func (s *Store) AddClaim(ctx context.Context, workItemID int64, text string) (*Claim, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("claim text is required")
	}
	now := s.now().UTC()
	res, err := s.execWithRetry(ctx,
		`INSERT INTO claims (work_item_id, text, created_at) VALUES (?, ?, ?)`,
		workItemID,
		text,
		formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert claim for work item %d: %w", workItemID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("claim id: %w", err)
	}
	return &Claim{ID: id, WorkItemID: workItemID, Text: text, CreatedAt: now}, nil
}

// Claims returns the work item's claims in ascending ID order.
func (s *Store) Claims(ctx context.Context, workItemID int64) ([]Claim, error) {
	return listClaims(ensureContext(ctx), s.db, workItemID)
}

// FactChecks returns the fact checks opened for the work item's claims.
func (s *Store) FactChecks(ctx context.Context, workItemID int64) ([]FactCheck, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.id, f.claim_id, f.verdict, f.confidence, f.reasoning, f.sources_json, f.created_at
         FROM fact_checks f JOIN claims c ON c.id = f.claim_id
         WHERE c.work_item_id = ?
         ORDER BY f.claim_id ASC`, workItemID)
	if err != nil {
		return nil, fmt.Errorf("list fact checks for work item %d: %w", workItemID, err)
	}
	defer rows.Close()

	var checks []FactCheck
	for rows.Next() {
		fc, err := scanFactCheck(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fact check: %w", err)
		}
		checks = append(checks, *fc)
	}
	return checks, rows.Err()
}

// History returns the work item's transition records, oldest first. Records
// sharing a timestamp keep insertion order.
func (s *Store) History(ctx context.Context, workItemID int64) ([]TransitionRecord, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transitionColumns+` FROM transition_records
         WHERE work_item_id = ?
         ORDER BY created_at ASC, id ASC`, workItemID)
	if err != nil {
		return nil, fmt.Errorf("list transitions for work item %d: %w", workItemID, err)
	}
	defer rows.Close()

	records := []TransitionRecord{}
	for rows.Next() {
		rec, err := scanTransition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}
