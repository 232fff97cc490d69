package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"carbonmarket/ledger-backend/internal/core"
	"carbonmarket/ledger-backend/internal/notifications/websocket"
)

// Directory resolves a ledger principal to a contact address.
type Directory interface {
	EmailFor(principal uuid.UUID) (string, bool)
}

// Sink routes committed ledger events to the market feed, purchase
// receipts and operational alerts. Any of the channels may be nil when
// the corresponding backend is not configured.
type Sink struct {
	engine    *core.Engine
	hub       *websocket.Hub
	email     *EmailChannel
	alerts    *AlertPublisher
	directory Directory
}

func NewSink(engine *core.Engine, hub *websocket.Hub, email *EmailChannel, alerts *AlertPublisher, directory Directory) *Sink {
	return &Sink{engine: engine, hub: hub, email: email, alerts: alerts, directory: directory}
}

func (s *Sink) Name() string { return "notifications" }

func (s *Sink) Handle(ctx context.Context, ev core.Event) error {
	switch ev.Type {
	case core.EventThresholdReached:
		return s.publishThresholdAlert(ctx, ev)
	case core.EventListingCreated:
		s.broadcastListing(ev, "listing_created")
		return nil
	case core.EventListingCancelled:
		s.broadcastListing(ev, "listing_cancelled")
		return nil
	case core.EventListingFilled:
		s.broadcastTrade(ev)
		return s.sendPurchaseReceipt(ctx, ev)
	default:
		return nil
	}
}

func (s *Sink) publishThresholdAlert(ctx context.Context, ev core.Event) error {
	if s.alerts == nil {
		return nil
	}
	project, err := s.engine.GetProject(ev.ProjectID)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Project %d verification threshold reached", project.ID)
	message := fmt.Sprintf(
		"Project %q (%s) has accumulated enough verified sensor readings to issue credits.",
		project.Name, project.Location,
	)
	return s.alerts.Publish(ctx, subject, message)
}

func (s *Sink) broadcastListing(ev core.Event, msgType string) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(websocket.MarketMessage{
		Type: msgType,
		Data: map[string]interface{}{
			"listing_id":    ev.ListingID,
			"credit_id":     ev.CreditID,
			"seller":        ev.Actor.String(),
			"price_per_ton": ev.PricePerTon,
			"amount":        ev.Amount,
		},
		Timestamp: time.Now(),
	})
}

func (s *Sink) broadcastTrade(ev core.Event) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(websocket.MarketMessage{
		Type: "trade_executed",
		Data: map[string]interface{}{
			"listing_id":    ev.ListingID,
			"credit_id":     ev.CreditID,
			"buyer":         ev.Actor.String(),
			"seller":        ev.Counterparty.String(),
			"price_per_ton": ev.PricePerTon,
			"amount":        ev.Amount,
		},
		Timestamp: time.Now(),
	})
}

func (s *Sink) sendPurchaseReceipt(ctx context.Context, ev core.Event) error {
	if s.email == nil || s.directory == nil {
		return nil
	}
	to, ok := s.directory.EmailFor(ev.Actor)
	if !ok {
		// Buyers without a registered address simply get no receipt.
		return nil
	}
	subject := fmt.Sprintf("Carbon credit purchase receipt, listing %d", ev.ListingID)
	body := fmt.Sprintf(
		"You purchased %d tokens from credit %d at %d per ton (total %d).",
		ev.Amount, ev.CreditID, ev.PricePerTon, ev.Amount*ev.PricePerTon,
	)
	return s.email.Send(ctx, to, subject, body)
}
