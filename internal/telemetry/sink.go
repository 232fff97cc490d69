package telemetry

import (
	"context"

	"carbonmarket/ledger-backend/internal/core"
)

// Sink copies accepted sensor readings into the hot store.
type Sink struct {
	store  Store
	engine *core.Engine
}

func NewSink(store Store, engine *core.Engine) *Sink {
	return &Sink{store: store, engine: engine}
}

func (s *Sink) Name() string { return "telemetry" }

func (s *Sink) Handle(ctx context.Context, ev core.Event) error {
	if ev.Type != core.EventReadingAccepted {
		return nil
	}
	reading, err := s.engine.GetSensorReading(ev.SensorID, ev.Block)
	if err != nil {
		return err
	}
	return s.store.PutReading(ctx, reading)
}
