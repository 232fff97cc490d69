package reports

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"carbonmarket/ledger-backend/internal/archive"
	"carbonmarket/ledger-backend/internal/core"
	"carbonmarket/ledger-backend/internal/reports/export"
)

// Service builds downloadable portfolio reports.
type Service interface {
	ExportPortfolio(ctx context.Context, company uuid.UUID, w io.Writer) error
}

type service struct {
	engine *core.Engine
	repo   archive.Repository
}

func NewService(engine *core.Engine, repo archive.Repository) Service {
	return &service{engine: engine, repo: repo}
}

// ExportPortfolio writes a company's holdings, trades and ESG summary
// as an xlsx workbook.
func (s *service) ExportPortfolio(ctx context.Context, company uuid.UUID, w io.Writer) error {
	credits, err := s.repo.ListCreditsByOwner(ctx, company)
	if err != nil {
		return fmt.Errorf("failed to load credits: %w", err)
	}
	trades, err := s.repo.ListTradesByCompany(ctx, company)
	if err != nil {
		return fmt.Errorf("failed to load trades: %w", err)
	}
	esg := s.engine.GetCorporateESG(company)

	exporter, err := export.NewExcelExporter()
	if err != nil {
		return err
	}
	defer exporter.Close()

	report := export.PortfolioReport{
		Company:     company.String(),
		Credits:     credits,
		Trades:      trades,
		ESG:         esg,
		GeneratedAt: time.Now(),
	}
	if err := exporter.WritePortfolio(report); err != nil {
		return err
	}
	return exporter.WriteTo(w)
}
