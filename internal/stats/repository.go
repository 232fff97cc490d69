package stats

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// MarketStats aggregates settled marketplace activity.
type MarketStats struct {
	TradeCount     uint64  `db:"trade_count" json:"trade_count"`
	TradeVolume    uint64  `db:"trade_volume" json:"trade_volume"`
	TradeValue     uint64  `db:"trade_value" json:"trade_value"`
	AvgPricePerTon float64 `db:"avg_price_per_ton" json:"avg_price_per_ton"`
	ActiveListings uint64  `db:"active_listings" json:"active_listings"`
	Certificates   uint64  `db:"certificates" json:"certificates"`
}

// CategoryVolume is the traded volume attributed to one project category.
type CategoryVolume struct {
	Category string `db:"category" json:"category"`
	Volume   uint64 `db:"volume" json:"volume"`
	Trades   uint64 `db:"trades" json:"trades"`
}

// BuyerVolume ranks a buyer by purchased volume.
type BuyerVolume struct {
	Buyer  uuid.UUID `db:"buyer" json:"buyer"`
	Volume uint64    `db:"volume" json:"volume"`
	Spent  uint64    `db:"spent" json:"spent"`
}

// Repository defines the interface for marketplace analytics queries.
type Repository interface {
	MarketStats(ctx context.Context) (*MarketStats, error)
	VolumeByCategory(ctx context.Context) ([]CategoryVolume, error)
	TopBuyers(ctx context.Context, limit int) ([]BuyerVolume, error)
}

// PostgresRepository implements Repository over the archive tables.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) MarketStats(ctx context.Context) (*MarketStats, error) {
	query := `
		SELECT
			COUNT(*)                                   AS trade_count,
			COALESCE(SUM(amount), 0)                   AS trade_volume,
			COALESCE(SUM(amount * price_per_ton), 0)   AS trade_value,
			COALESCE(AVG(price_per_ton), 0)            AS avg_price_per_ton
		FROM trades
	`

	var stats MarketStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to query trade stats: %w", err)
	}

	if err := r.db.GetContext(ctx, &stats.ActiveListings,
		`SELECT COUNT(*) FROM listings WHERE active = true`); err != nil {
		return nil, fmt.Errorf("failed to count active listings: %w", err)
	}

	if err := r.db.GetContext(ctx, &stats.Certificates,
		`SELECT COUNT(*) FROM retirement_certificates`); err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to count certificates: %w", err)
	}

	return &stats, nil
}

func (r *PostgresRepository) VolumeByCategory(ctx context.Context) ([]CategoryVolume, error) {
	query := `
		SELECT p.category, COALESCE(SUM(t.amount), 0) AS volume, COUNT(t.id) AS trades
		FROM trades t
		JOIN credits c ON c.id = t.credit_id
		JOIN projects p ON p.id = c.project_id
		GROUP BY p.category
		ORDER BY volume DESC
	`

	var rows []CategoryVolume
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to query volume by category: %w", err)
	}
	return rows, nil
}

func (r *PostgresRepository) TopBuyers(ctx context.Context, limit int) ([]BuyerVolume, error) {
	query := `
		SELECT buyer,
			   COALESCE(SUM(amount), 0)                 AS volume,
			   COALESCE(SUM(amount * price_per_ton), 0) AS spent
		FROM trades
		GROUP BY buyer
		ORDER BY volume DESC
		LIMIT $1
	`

	var rows []BuyerVolume
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query top buyers: %w", err)
	}
	return rows, nil
}
