package core

import "github.com/google/uuid"

// AddAdmin grants admin rights. Restricted to the deploying principal,
// which cannot re-add itself.
func (e *Engine) AddAdmin(caller, admin uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireUnpaused(); err != nil {
		return err
	}
	if caller != e.deployer {
		return ErrOwnerOnly
	}
	if admin == e.deployer {
		return ErrInvalidPrincipal
	}

	e.st.admins[admin] = true
	e.recorder.Record(Event{
		Type:         EventAdminAdded,
		Block:        e.clock.Now(),
		Actor:        caller,
		Counterparty: admin,
	})
	return nil
}

// IsAdmin reports whether a principal holds admin rights.
func (e *Engine) IsAdmin(principal uuid.UUID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.admins[principal]
}

// Pause blocks every state-mutating operation until Unpause. Admin only.
func (e *Engine) Pause(caller uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.st.admins[caller] {
		return ErrUnauthorized
	}
	e.st.paused = true
	e.recorder.Record(Event{Type: EventPaused, Block: e.clock.Now(), Actor: caller})
	return nil
}

// Unpause lifts the pause gate. Admin only.
func (e *Engine) Unpause(caller uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.st.admins[caller] {
		return ErrUnauthorized
	}
	e.st.paused = false
	e.recorder.Record(Event{Type: EventUnpaused, Block: e.clock.Now(), Actor: caller})
	return nil
}
