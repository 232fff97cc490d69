package core

import "github.com/google/uuid"

// EventType tags a committed state transition.
type EventType string

const (
	EventProjectRegistered EventType = "project_registered"
	EventProjectToggled    EventType = "project_toggled"
	EventReadingAccepted   EventType = "reading_accepted"
	EventThresholdReached  EventType = "threshold_reached"
	EventCreditIssued      EventType = "credit_issued"
	EventCreditRetired     EventType = "credit_retired"
	EventListingCreated    EventType = "listing_created"
	EventListingFilled     EventType = "listing_filled"
	EventListingCancelled  EventType = "listing_cancelled"
	EventCreditsMoved      EventType = "credits_moved"
	EventPaused            EventType = "paused"
	EventUnpaused          EventType = "unpaused"
	EventAdminAdded        EventType = "admin_added"
)

// Event describes one committed operation for downstream collaborators
// (archive, audit log, search index, notifications). Only fields relevant
// to the event type are set.
type Event struct {
	Type         EventType `json:"type"`
	Block        uint64    `json:"block"`
	Actor        uuid.UUID `json:"actor"`
	Counterparty uuid.UUID `json:"counterparty,omitempty"`
	ProjectID    uint64    `json:"project_id,omitempty"`
	CreditID     uint64    `json:"credit_id,omitempty"`
	ListingID    uint64    `json:"listing_id,omitempty"`
	SensorID     string    `json:"sensor_id,omitempty"`
	Amount       uint64    `json:"amount,omitempty"`
	Bonus        uint64    `json:"bonus,omitempty"`
	PricePerTon  uint64    `json:"price_per_ton,omitempty"`
	FullyRetired bool      `json:"fully_retired,omitempty"`
}

// Recorder receives events after an operation commits. Recorder failures
// are the recorder's problem; they never fail the committed operation.
type Recorder interface {
	Record(ev Event)
}

// NopRecorder drops every event.
type NopRecorder struct{}

func (NopRecorder) Record(Event) {}

// FanoutRecorder forwards each event to every sink in order.
type FanoutRecorder []Recorder

func (f FanoutRecorder) Record(ev Event) {
	for _, r := range f {
		r.Record(ev)
	}
}
