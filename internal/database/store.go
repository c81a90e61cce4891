// Package database persists solve history to Postgres via pgx, so a bot
// driver or an operator can audit or replay past decisions.
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CrzPhil/Makiaveli/engine"
)

// SolveRecord is one row of solve history: the request as given, and the
// outcome the core produced for it.
type SolveRecord struct {
	ID           uuid.UUID
	Hand         []string
	FloorGroups  [][]string
	Cross        []string
	Solvable     bool
	TargetGroups [][]engine.CardView
	Steps        []engine.Step
	ErrorKind    string
	CreatedAt    time.Time
}

// Store wraps a pgx connection pool. The zero value is not usable; build
// one with Open.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to Postgres and ensures the solve_history table exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS solve_history (
	id            UUID PRIMARY KEY,
	hand          JSONB NOT NULL,
	floor_groups  JSONB NOT NULL,
	cross         JSONB NOT NULL,
	solvable      BOOLEAN NOT NULL,
	target_groups JSONB NOT NULL,
	steps         JSONB NOT NULL,
	error_kind    TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL
)`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate solve_history: %w", err)
	}
	return nil
}

// Save inserts a new solve_history row. The caller assigns rec.ID and
// rec.CreatedAt before calling.
func (s *Store) Save(ctx context.Context, rec SolveRecord) error {
	hand, err := json.Marshal(rec.Hand)
	if err != nil {
		return fmt.Errorf("marshal hand: %w", err)
	}
	floor, err := json.Marshal(rec.FloorGroups)
	if err != nil {
		return fmt.Errorf("marshal floor groups: %w", err)
	}
	cross, err := json.Marshal(rec.Cross)
	if err != nil {
		return fmt.Errorf("marshal cross: %w", err)
	}
	target, err := json.Marshal(rec.TargetGroups)
	if err != nil {
		return fmt.Errorf("marshal target groups: %w", err)
	}
	steps, err := json.Marshal(rec.Steps)
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}

	const insert = `
INSERT INTO solve_history
	(id, hand, floor_groups, cross, solvable, target_groups, steps, error_kind, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = s.pool.Exec(ctx, insert,
		rec.ID, hand, floor, cross, rec.Solvable, target, steps, rec.ErrorKind, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert solve_history: %w", err)
	}
	return nil
}

// Get fetches a previously persisted solve by request ID.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*SolveRecord, error) {
	const query = `
SELECT id, hand, floor_groups, cross, solvable, target_groups, steps, error_kind, created_at
FROM solve_history WHERE id = $1`

	row := s.pool.QueryRow(ctx, query, id)

	var (
		rec                               SolveRecord
		hand, floor, cross, target, steps []byte
	)
	err := row.Scan(&rec.ID, &hand, &floor, &cross, &rec.Solvable, &target, &steps, &rec.ErrorKind, &rec.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("query solve_history: %w", err)
	}

	if err := json.Unmarshal(hand, &rec.Hand); err != nil {
		return nil, fmt.Errorf("unmarshal hand: %w", err)
	}
	if err := json.Unmarshal(floor, &rec.FloorGroups); err != nil {
		return nil, fmt.Errorf("unmarshal floor groups: %w", err)
	}
	if err := json.Unmarshal(cross, &rec.Cross); err != nil {
		return nil, fmt.Errorf("unmarshal cross: %w", err)
	}
	if err := json.Unmarshal(target, &rec.TargetGroups); err != nil {
		return nil, fmt.Errorf("unmarshal target groups: %w", err)
	}
	if err := json.Unmarshal(steps, &rec.Steps); err != nil {
		return nil, fmt.Errorf("unmarshal steps: %w", err)
	}
	return &rec, nil
}

// RecordOf builds a SolveRecord from a solver Input/Output pair, the
// shape database.Save expects.
func RecordOf(id uuid.UUID, in engine.Input, out engine.Output, now time.Time) SolveRecord {
	rec := SolveRecord{
		ID:           id,
		Hand:         in.Hand,
		FloorGroups:  in.FloorGroups,
		Cross:        in.Cross,
		Solvable:     out.Solvable,
		TargetGroups: out.TargetGroups,
		Steps:        out.Steps,
		CreatedAt:    now,
	}
	if out.Error != nil {
		rec.ErrorKind = string(out.Error.Kind)
	}
	return rec
}
