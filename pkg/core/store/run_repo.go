package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"bond_radar/pkg/models"
)

// RunRepo persists whole pipeline runs. One row per target entity, newest run
// wins; history stays in the run_id column of whatever was overwritten.
type RunRepo struct{}

// NewRunRepo creates a new repository instance.
func NewRunRepo() *RunRepo {
	return &RunRepo{}
}

// Save upserts the full result bundle keyed by target entity.
// The result keeps its shape as one JSONB blob; per-instrument columns live
// in InstrumentRepo for queries that need them.
//
// Schema assumption:
//
//	CREATE TABLE IF NOT EXISTS bond_runs (
//	  target_entity TEXT PRIMARY KEY,
//	  run_id        TEXT,
//	  result_json   JSONB,
//	  updated_at    TIMESTAMPTZ
//	);
func (r *RunRepo) Save(ctx context.Context, result *models.RunResult) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal run result: %w", err)
	}

	query := `
		INSERT INTO bond_runs (target_entity, run_id, result_json, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (target_entity)
		DO UPDATE SET
			run_id = EXCLUDED.run_id,
			result_json = EXCLUDED.result_json,
			updated_at = EXCLUDED.updated_at;
	`

	_, err = pool.Exec(ctx, query, normalizeTarget(result.TargetEntity), result.RunID, jsonData, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// Load retrieves the most recent run for a target entity.
func (r *RunRepo) Load(ctx context.Context, targetEntity string) (*models.RunResult, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT result_json FROM bond_runs WHERE target_entity = $1`

	var jsonData []byte
	err := pool.QueryRow(ctx, query, normalizeTarget(targetEntity)).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no run found for target %s", targetEntity)
		}
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	var result models.RunResult
	if err := json.Unmarshal(jsonData, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run result: %w", err)
	}

	return &result, nil
}

// normalizeTarget keys runs case-insensitively so "Apple" and "apple"
// share one row.
func normalizeTarget(target string) string {
	return strings.ToLower(strings.TrimSpace(target))
}
