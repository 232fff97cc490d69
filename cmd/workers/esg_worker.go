package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ESGWorker periodically rebuilds the esg_snapshots rollup from the
// archived trades and retirement certificates.
type ESGWorker struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewESGWorker(db *sqlx.DB, logger *zap.Logger) *ESGWorker {
	return &ESGWorker{db: db, logger: logger}
}

type companyActivity struct {
	Company   uuid.UUID `db:"company"`
	Purchased uint64    `db:"purchased"`
	Retired   uint64    `db:"retired"`
}

// Refresh recomputes one snapshot row per company seen in a trade or a
// retirement.
func (w *ESGWorker) Refresh(ctx context.Context) error {
	start := time.Now()

	query := `
		SELECT company,
			   COALESCE(SUM(purchased), 0) AS purchased,
			   COALESCE(SUM(retired), 0)   AS retired
		FROM (
			SELECT buyer AS company, amount AS purchased, 0 AS retired FROM trades
			UNION ALL
			SELECT retired_by AS company, 0 AS purchased, amount AS retired FROM retirement_certificates
		) activity
		GROUP BY company
	`

	var rows []companyActivity
	if err := w.db.SelectContext(ctx, &rows, query); err != nil {
		return fmt.Errorf("failed to aggregate company activity: %w", err)
	}

	upsert := `
		INSERT INTO esg_snapshots (company, total_purchased, total_retired, score, refreshed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (company) DO UPDATE SET
			total_purchased = EXCLUDED.total_purchased,
			total_retired   = EXCLUDED.total_retired,
			score           = EXCLUDED.score,
			refreshed_at    = EXCLUDED.refreshed_at
	`

	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin refresh: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, row := range rows {
		score := esgScore(row.Purchased, row.Retired)
		if _, err := tx.ExecContext(ctx, upsert, row.Company, row.Purchased, row.Retired, score, now); err != nil {
			return fmt.Errorf("failed to upsert snapshot for %s: %w", row.Company, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit refresh: %w", err)
	}

	w.logger.Info("esg snapshots refreshed",
		zap.Int("companies", len(rows)),
		zap.Duration("took", time.Since(start)))
	return nil
}

// esgScore mirrors the engine's formula: retirement share of purchases,
// capped at 100.
func esgScore(purchased, retired uint64) uint32 {
	if purchased == 0 {
		return 0
	}
	score := retired * 100 / purchased
	if score > 100 {
		score = 100
	}
	return uint32(score)
}
