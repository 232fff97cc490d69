package core

import (
	"sync"

	"github.com/google/uuid"

	"carbonmarket/ledger-backend/pkg/clock"
	"carbonmarket/ledger-backend/pkg/payments"
)

// readingKey identifies a sensor reading by (sensor, timestamp).
type readingKey struct {
	Sensor    string
	Timestamp uint64
}

// state holds every map and counter of the marketplace. It is owned
// exclusively by one Engine and never escapes it.
type state struct {
	accounts map[uuid.UUID]uint64

	projects     map[uint64]*Project
	verification map[uint64]*VerificationRecord
	readings     map[readingKey]*SensorReading
	credits      map[uint64]*Credit
	listings     map[uint64]*Listing
	esg          map[uuid.UUID]*CorporateESG
	admins       map[uuid.UUID]bool

	nextProjectID uint64
	nextCreditID  uint64
	nextListingID uint64

	totalIssued  uint64
	totalRetired uint64
	totalMinted  uint64
	totalBurned  uint64

	verificationThreshold uint64
	paused                bool
	entered               bool // reentrancy guard
}

// Engine applies operations one at a time to the shared state. Every
// mutating operation validates all preconditions before its first write,
// so a failure never leaves a partial mutation behind.
type Engine struct {
	mu       sync.Mutex
	st       *state
	deployer uuid.UUID
	clock    clock.Source
	gateway  payments.Gateway
	recorder Recorder
}

// Option configures an Engine at construction time.
type Option func(*Engine)

func WithVerificationThreshold(n uint64) Option {
	return func(e *Engine) { e.st.verificationThreshold = n }
}

func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// NewEngine seeds the admin set with the deploying principal.
func NewEngine(deployer uuid.UUID, clk clock.Source, gw payments.Gateway, opts ...Option) *Engine {
	e := &Engine{
		st: &state{
			accounts:              make(map[uuid.UUID]uint64),
			projects:              make(map[uint64]*Project),
			verification:          make(map[uint64]*VerificationRecord),
			readings:              make(map[readingKey]*SensorReading),
			credits:               make(map[uint64]*Credit),
			listings:              make(map[uint64]*Listing),
			esg:                   make(map[uuid.UUID]*CorporateESG),
			admins:                map[uuid.UUID]bool{deployer: true},
			nextProjectID:         1,
			nextCreditID:          1,
			nextListingID:         1,
			verificationThreshold: DefaultVerificationThreshold,
		},
		deployer: deployer,
		clock:    clk,
		gateway:  gw,
		recorder: NopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// requireUnpaused is checked first on every mutating operation, before any
// other validation.
func (e *Engine) requireUnpaused() error {
	if e.st.paused {
		return ErrMarketplacePaused
	}
	return nil
}

// enterGuard acquires the logical single-operation mutex. Callers must pair
// it with a deferred exitGuard so the flag is released on every path.
func (e *Engine) enterGuard() error {
	if e.st.entered {
		return ErrReentrancy
	}
	e.st.entered = true
	return nil
}

func (e *Engine) exitGuard() {
	e.st.entered = false
}

// Deployer returns the contract-owner principal.
func (e *Engine) Deployer() uuid.UUID {
	return e.deployer
}
