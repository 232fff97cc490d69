package archive

import (
	"context"

	"carbonmarket/ledger-backend/internal/core"
)

// Sink mirrors committed engine events into the archive database.
type Sink struct {
	repo   Repository
	engine *core.Engine
}

func NewSink(repo Repository, engine *core.Engine) *Sink {
	return &Sink{repo: repo, engine: engine}
}

func (s *Sink) Name() string { return "archive" }

func (s *Sink) Handle(ctx context.Context, ev core.Event) error {
	switch ev.Type {
	case core.EventProjectRegistered:
		project, err := s.engine.GetProject(ev.ProjectID)
		if err != nil {
			return err
		}
		return s.repo.SaveProject(ctx, project)

	case core.EventProjectToggled:
		project, err := s.engine.GetProject(ev.ProjectID)
		if err != nil {
			return err
		}
		return s.repo.SetProjectActive(ctx, ev.ProjectID, project.Active)

	case core.EventCreditIssued:
		credit, err := s.engine.GetCredit(ev.CreditID)
		if err != nil {
			return err
		}
		return s.repo.SaveCredit(ctx, credit)

	case core.EventCreditRetired:
		return s.repo.MarkRetirement(ctx, ev.CreditID, ev.Amount, ev.Block, ev.FullyRetired)

	case core.EventListingCreated:
		listing, err := s.engine.GetListing(ev.ListingID)
		if err != nil {
			return err
		}
		return s.repo.SaveListing(ctx, listing)

	case core.EventListingCancelled:
		return s.repo.DeactivateListing(ctx, ev.ListingID)

	case core.EventListingFilled:
		if err := s.repo.ApplyFill(ctx, ev.ListingID, ev.Amount); err != nil {
			return err
		}
		return s.repo.SaveTrade(ctx, &Trade{
			ListingID:   ev.ListingID,
			CreditID:    ev.CreditID,
			Buyer:       ev.Actor,
			Seller:      ev.Counterparty,
			Amount:      ev.Amount,
			PricePerTon: ev.PricePerTon,
			Block:       ev.Block,
		})

	default:
		// Readings live in the telemetry store; access and transfer
		// events only matter to the audit log.
		return nil
	}
}
