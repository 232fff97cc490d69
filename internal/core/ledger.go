package core

import "github.com/google/uuid"

// Fungible credit-token accounting. These primitives are only reachable
// through issuance, retirement and settlement, which are responsible for
// any additional bookkeeping. Each primitive either fully applies or
// returns without touching a balance, so the conservation invariant
// (sum of balances == minted - burned) holds at every observation point.

func (s *state) mint(amount uint64, to uuid.UUID) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	s.accounts[to] += amount
	s.totalMinted += amount
	return nil
}

func (s *state) burn(amount uint64, from uuid.UUID) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	if s.accounts[from] < amount {
		return ErrInsufficientBalance
	}
	s.accounts[from] -= amount
	s.totalBurned += amount
	return nil
}

func (s *state) transfer(amount uint64, from, to uuid.UUID) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	if from == to {
		return ErrInvalidPrincipal
	}
	if s.accounts[from] < amount {
		return ErrInsufficientBalance
	}
	s.accounts[from] -= amount
	s.accounts[to] += amount
	return nil
}

// BalanceOf returns the token balance of a principal.
func (e *Engine) BalanceOf(account uuid.UUID) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.accounts[account]
}
