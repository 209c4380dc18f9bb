package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// UpsertActor creates the actor or updates its role and display name.
func (s *Store) UpsertActor(ctx context.Context, actor Actor) (*Actor, error) {
	actor.ID = strings.TrimSpace(actor.ID)
	if actor.ID == "" {
		return nil, errors.New("actor id is required")
	}
	if !actor.Role.Valid() {
		return nil, fmt.Errorf("actor %s: invalid role %d", actor.ID, actor.Role)
	}
	now := formatTime(s.now())
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO actors (id, role, display_name, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             role = excluded.role,
             display_name = excluded.display_name,
             updated_at = excluded.updated_at`,
		actor.ID,
		actor.Role.String(),
		nullableString(strings.TrimSpace(actor.DisplayName)),
		now,
		now,
	); err != nil {
		return nil, fmt.Errorf("upsert actor %s: %w", actor.ID, err)
	}
	return s.GetActor(ctx, actor.ID)
}

// GetActor fetches an actor by ID. It returns nil when absent.
func (s *Store) GetActor(ctx context.Context, id string) (*Actor, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+actorColumns+` FROM actors WHERE id = ?`, id)
	actor, err := scanActor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get actor %s: %w", id, err)
	}
	return actor, nil
}

// ListActors returns all actors ordered by ID.
func (s *Store) ListActors(ctx context.Context) ([]*Actor, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT `+actorColumns+` FROM actors ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list actors: %w", err)
	}
	defer rows.Close()

	var actors []*Actor
	for rows.Next() {
		actor, err := scanActor(rows)
		if err != nil {
			return nil, err
		}
		actors = append(actors, actor)
	}
	return actors, rows.Err()
}
