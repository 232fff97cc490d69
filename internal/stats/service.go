package stats

import (
	"context"

	"carbonmarket/ledger-backend/internal/core"
)

// Overview combines live ledger totals with the archived trade rollups.
type Overview struct {
	Ledger core.Stats       `json:"ledger"`
	Market MarketStats      `json:"market"`
	Top    []CategoryVolume `json:"volume_by_category"`
}

type Service interface {
	Overview(ctx context.Context) (*Overview, error)
	TopBuyers(ctx context.Context, limit int) ([]BuyerVolume, error)
}

type service struct {
	engine *core.Engine
	repo   Repository
}

func NewService(engine *core.Engine, repo Repository) Service {
	return &service{engine: engine, repo: repo}
}

func (s *service) Overview(ctx context.Context) (*Overview, error) {
	market, err := s.repo.MarketStats(ctx)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.repo.VolumeByCategory(ctx)
	if err != nil {
		return nil, err
	}
	return &Overview{
		Ledger: s.engine.Stats(),
		Market: *market,
		Top:    byCategory,
	}, nil
}

func (s *service) TopBuyers(ctx context.Context, limit int) ([]BuyerVolume, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.repo.TopBuyers(ctx, limit)
}
