package payments

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Gateway settles value between principals outside the credit token ledger.
// A failed settlement must leave no trace; callers treat any error as a
// full abort of the enclosing operation.
type Gateway interface {
	TransferValue(from, to uuid.UUID, value uint64) error
}

var ErrSettlementDeclined = errors.New("settlement declined")

// RecordingGateway keeps per-principal value balances in memory. It is the
// default gateway for single-node deployments and for tests; production
// deployments swap in a payment-rail client behind the same interface.
type RecordingGateway struct {
	mu       sync.Mutex
	balances map[uuid.UUID]uint64
	// Unlimited grants every payer infinite funds, useful when the rail
	// only needs to record flows.
	Unlimited bool
}

func NewRecordingGateway(unlimited bool) *RecordingGateway {
	return &RecordingGateway{
		balances:  make(map[uuid.UUID]uint64),
		Unlimited: unlimited,
	}
}

// Fund credits a principal with spendable value.
func (g *RecordingGateway) Fund(principal uuid.UUID, value uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.balances[principal] += value
}

func (g *RecordingGateway) Balance(principal uuid.UUID) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.balances[principal]
}

func (g *RecordingGateway) TransferValue(from, to uuid.UUID, value uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.Unlimited {
		if g.balances[from] < value {
			return ErrSettlementDeclined
		}
		g.balances[from] -= value
	}
	g.balances[to] += value
	return nil
}

// FailingGateway declines every settlement. Used to exercise abort paths.
type FailingGateway struct{}

func (FailingGateway) TransferValue(from, to uuid.UUID, value uint64) error {
	return ErrSettlementDeclined
}
