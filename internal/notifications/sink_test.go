package notifications

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbonmarket/ledger-backend/internal/core"
	"carbonmarket/ledger-backend/internal/notifications/websocket"
	"carbonmarket/ledger-backend/pkg/clock"
	"carbonmarket/ledger-backend/pkg/payments"
)

func TestSinkToleratesUnconfiguredChannels(t *testing.T) {
	engine := core.NewEngine(uuid.New(), clock.NewManual(100), payments.NewRecordingGateway(true))
	sink := NewSink(engine, nil, nil, nil, nil)

	events := []core.Event{
		{Type: core.EventThresholdReached, ProjectID: 1},
		{Type: core.EventListingCreated, ListingID: 1},
		{Type: core.EventListingFilled, ListingID: 1, Actor: uuid.New()},
		{Type: core.EventCreditRetired, CreditID: 1},
	}
	for _, ev := range events {
		assert.NoError(t, sink.Handle(context.Background(), ev))
	}
}

func TestSinkBroadcastsMarketEvents(t *testing.T) {
	engine := core.NewEngine(uuid.New(), clock.NewManual(100), payments.NewRecordingGateway(true))
	hub := websocket.NewHub()
	defer hub.Close()

	sink := NewSink(engine, hub, nil, nil, nil)

	seller := uuid.New()
	err := sink.Handle(context.Background(), core.Event{
		Type:        core.EventListingCreated,
		ListingID:   4,
		CreditID:    2,
		Actor:       seller,
		PricePerTon: 25,
		Amount:      40,
	})
	require.NoError(t, err)

	err = sink.Handle(context.Background(), core.Event{
		Type:         core.EventListingFilled,
		ListingID:    4,
		Actor:        uuid.New(),
		Counterparty: seller,
		Amount:       10,
	})
	require.NoError(t, err)
}
