package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/llm"
)

// RecordUsage stores one completion's usage, optionally tied to a run.
func (db *DB) RecordUsage(ctx context.Context, runID uuid.UUID, rec llm.UsageRecord) error {
	prompts, err := json.Marshal(rec.Prompts)
	if err != nil {
		return fmt.Errorf("failed to marshal prompts: %w", err)
	}

	var run *uuid.UUID
	if runID != uuid.Nil {
		run = &runID
	}

	_, err = db.q.Exec(ctx,
		`INSERT INTO llm_calls (run_id, model, called_at, prompts, replies, input_tokens, output_tokens, total_tokens, total_cost)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run, rec.Model, rec.Time, prompts, rec.Replies,
		rec.InputTokens, rec.OutputTokens, rec.TotalTokens, rec.TotalCost,
	)
	if err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}

type runIDKey struct{}

// WithRunID returns a context whose completions are recorded under runID.
func WithRunID(ctx context.Context, runID uuid.UUID) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the run ID set by WithRunID, or uuid.Nil.
func RunIDFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(runIDKey{}).(uuid.UUID)
	return id
}

// Record implements llm.UsageSink, tying the record to the run in ctx.
func (db *DB) Record(ctx context.Context, rec llm.UsageRecord) error {
	return db.RecordUsage(ctx, RunIDFromContext(ctx), rec)
}

var _ llm.UsageSink = (*DB)(nil)

// CostByModel returns the recorded spend per model, ordered by model.
func (db *DB) CostByModel(ctx context.Context) ([]ModelCost, error) {
	rows, err := db.q.Query(ctx,
		`SELECT model, COUNT(*), COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0), COALESCE(SUM(total_cost), 0)
		 FROM llm_calls GROUP BY model ORDER BY model`)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage: %w", err)
	}
	defer rows.Close()

	var costs []ModelCost
	for rows.Next() {
		var c ModelCost
		if err := rows.Scan(&c.Model, &c.Calls, &c.InputTokens, &c.OutputTokens, &c.TotalCost); err != nil {
			return nil, fmt.Errorf("failed to scan usage: %w", err)
		}
		costs = append(costs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage: %w", err)
	}
	return costs, nil
}
