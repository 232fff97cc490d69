package certificates

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"carbonmarket/ledger-backend/internal/core"
	"carbonmarket/ledger-backend/internal/events"
)

// The dispatcher registers the service directly as an event sink.
var _ events.Sink = Service(nil)

func TestServiceIgnoresUnrelatedEvents(t *testing.T) {
	svc := NewService(nil, nil, nil, "certificates")
	assert.Equal(t, "certificates", svc.Name())
	assert.NoError(t, svc.Handle(context.Background(), core.Event{Type: core.EventListingCreated}))
}
