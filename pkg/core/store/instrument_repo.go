package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"bond_radar/pkg/models"
)

// InstrumentRepo stores the deduplicated instrument rows in queryable columns,
// one set per target entity. The JSONB blob in RunRepo stays authoritative;
// this table exists for SQL consumers that want to slice by coupon or
// maturity without unpacking JSON.
type InstrumentRepo struct {
	pool *pgxpool.Pool
}

// NewInstrumentRepo creates a new instrument repository.
func NewInstrumentRepo(pool *pgxpool.Pool) *InstrumentRepo {
	return &InstrumentRepo{pool: pool}
}

// SaveAll replaces the stored instrument set for a target entity. Replacement
// is whole-set: the previous run's rows for this target are deleted first.
//
// Schema assumption:
//
//	CREATE TABLE IF NOT EXISTS bond_instruments (
//	  target_entity   TEXT,
//	  run_id          TEXT,
//	  isin            TEXT,
//	  issuer          TEXT,
//	  coupon          DOUBLE PRECISION,
//	  maturity        DATE,
//	  currency        TEXT,
//	  price           DOUBLE PRECISION,
//	  yield           DOUBLE PRECISION,
//	  rating_1        TEXT,
//	  rating_2        TEXT,
//	  rating_3        TEXT,
//	  maturity_bucket TEXT,
//	  coupon_category TEXT,
//	  price_category  TEXT,
//	  confidence      DOUBLE PRECISION,
//	  source_document TEXT,
//	  PRIMARY KEY (target_entity, isin)
//	);
func (r *InstrumentRepo) SaveAll(ctx context.Context, target, runID string, instruments []models.InstrumentRecord) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not configured")
	}
	key := normalizeTarget(target)

	_, err := r.pool.Exec(ctx, "DELETE FROM bond_instruments WHERE target_entity = $1", key)
	if err != nil {
		return fmt.Errorf("failed to clear previous instruments: %w", err)
	}

	query := `
		INSERT INTO bond_instruments (
			target_entity, run_id, isin, issuer, coupon, maturity, currency,
			price, yield, rating_1, rating_2, rating_3,
			maturity_bucket, coupon_category, price_category,
			confidence, source_document
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	for _, inst := range instruments {
		_, err := r.pool.Exec(ctx, query,
			key, runID, inst.ISIN, inst.Issuer, inst.Coupon, inst.Maturity, inst.Currency,
			inst.Price, inst.Yield, inst.Rating1, inst.Rating2, inst.Rating3,
			inst.MaturityBucket, inst.CouponCategory, inst.PriceCategory,
			inst.Confidence, inst.Provenance.SourceDocument,
		)
		if err != nil {
			return fmt.Errorf("failed to save instrument %s: %w", inst.ISIN, err)
		}
	}

	return nil
}

// GetByTarget retrieves the stored instrument rows for a target entity,
// ordered the same way the pipeline orders them.
func (r *InstrumentRepo) GetByTarget(ctx context.Context, target string) ([]models.InstrumentRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not configured")
	}

	query := `
		SELECT isin, issuer, coupon, maturity, currency, price, yield,
		       rating_1, rating_2, rating_3,
		       maturity_bucket, coupon_category, price_category,
		       confidence, source_document
		FROM bond_instruments
		WHERE target_entity = $1
		ORDER BY maturity NULLS LAST, isin
	`

	rows, err := r.pool.Query(ctx, query, normalizeTarget(target))
	if err != nil {
		return nil, fmt.Errorf("failed to query instruments: %w", err)
	}
	defer rows.Close()

	var out []models.InstrumentRecord
	for rows.Next() {
		var inst models.InstrumentRecord
		if err := rows.Scan(
			&inst.ISIN, &inst.Issuer, &inst.Coupon, &inst.Maturity, &inst.Currency,
			&inst.Price, &inst.Yield,
			&inst.Rating1, &inst.Rating2, &inst.Rating3,
			&inst.MaturityBucket, &inst.CouponCategory, &inst.PriceCategory,
			&inst.Confidence, &inst.Provenance.SourceDocument,
		); err != nil {
			return nil, fmt.Errorf("failed to scan instrument row: %w", err)
		}
		out = append(out, inst)
	}

	return out, rows.Err()
}

// Exists checks whether any instruments are stored for a target entity.
func (r *InstrumentRepo) Exists(ctx context.Context, target string) bool {
	if r.pool == nil {
		return false
	}

	query := `SELECT 1 FROM bond_instruments WHERE target_entity = $1 LIMIT 1`
	var exists int
	err := r.pool.QueryRow(ctx, query, normalizeTarget(target)).Scan(&exists)
	return err == nil
}
