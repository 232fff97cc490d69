package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"carbonmarket/ledger-backend/internal/core"
)

// Sink consumes committed engine events.
type Sink interface {
	Name() string
	Handle(ctx context.Context, ev core.Event) error
}

// Dispatcher is the engine's Recorder. It decouples the engine from its
// downstream collaborators: events are queued and fanned out to every
// sink off the operation path, so a slow or failing collaborator never
// stalls or un-commits an operation.
type Dispatcher struct {
	logger *zap.Logger
	sinks  []Sink
	events chan core.Event
	done   chan struct{}
}

const dispatchBuffer = 1024

// NewDispatcher builds an idle dispatcher. The engine is constructed with
// the dispatcher as its recorder, the sinks are constructed with the
// engine, then Start is called once every sink is registered.
func NewDispatcher(logger *zap.Logger, sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		logger: logger,
		sinks:  sinks,
		events: make(chan core.Event, dispatchBuffer),
		done:   make(chan struct{}),
	}
}

// Register adds sinks. Must be called before Start.
func (d *Dispatcher) Register(sinks ...Sink) {
	d.sinks = append(d.sinks, sinks...)
}

// Start launches the fan-out worker.
func (d *Dispatcher) Start() {
	go d.run()
}

// Record enqueues an event. Called by the engine inside its operation
// lock, so it must not block: a full buffer drops the event with a log
// line instead of stalling the ledger.
func (d *Dispatcher) Record(ev core.Event) {
	select {
	case d.events <- ev:
	default:
		d.logger.Warn("event buffer full, dropping event",
			zap.String("type", string(ev.Type)))
	}
}

// Close drains queued events and stops the worker.
func (d *Dispatcher) Close() {
	close(d.events)
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.events {
		for _, sink := range d.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := sink.Handle(ctx, ev); err != nil {
				d.logger.Error("event sink failed",
					zap.String("sink", sink.Name()),
					zap.String("type", string(ev.Type)),
					zap.Error(err))
			}
			cancel()
		}
	}
}
