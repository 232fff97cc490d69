package core

import "github.com/google/uuid"

// biodiversityBonusThreshold is the score at which issuance earns the
// 1.5x token mint bonus.
const biodiversityBonusThreshold = 80

// IssueCredit mints a new credit against a verified project and returns
// its id. The stored credit amount is the raw amount; the minted token
// quantity is amount plus the biodiversity bonus. The bonus is excluded
// from the global issued-total, which counts raw credit tons only.
func (e *Engine) IssueCredit(caller uuid.UUID, projectID, amount uint64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireUnpaused(); err != nil {
		return 0, err
	}
	project, ok := e.st.projects[projectID]
	if !ok || !project.Active {
		return 0, ErrInvalidProject
	}
	if caller != project.Owner {
		return 0, ErrNotTokenOwner
	}
	rec := e.st.verification[projectID]
	if rec.VerifiedReadings < e.st.verificationThreshold {
		return 0, ErrInsufficientVerification
	}
	if amount == 0 {
		return 0, ErrInvalidAmount
	}

	var bonus uint64
	if project.BiodiversityScore >= biodiversityBonusThreshold {
		bonus = amount * 150 / 100
	}

	now := e.clock.Now()
	id := e.st.nextCreditID
	credit := &Credit{
		ID:                id,
		ProjectID:         projectID,
		Owner:             caller,
		Amount:            amount,
		CreatedAt:         now,
		VerificationHash:  rec.LastDataHash,
		VerificationCount: rec.VerifiedReadings,
		BiodiversityBonus: bonus,
	}

	if err := e.st.mint(amount+bonus, caller); err != nil {
		return 0, err
	}
	e.st.credits[id] = credit
	e.st.totalIssued += amount
	e.st.nextCreditID++

	e.recorder.Record(Event{
		Type:      EventCreditIssued,
		Block:     now,
		Actor:     caller,
		ProjectID: projectID,
		CreditID:  id,
		Amount:    amount,
		Bonus:     bonus,
	})
	return id, nil
}

// RetireCredit burns tokens and permanently removes offset tons from
// circulation. A credit can be retired in parts; the call that exhausts
// it marks it retired exactly once.
func (e *Engine) RetireCredit(caller uuid.UUID, creditID, amount uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireUnpaused(); err != nil {
		return err
	}
	credit, ok := e.st.credits[creditID]
	if !ok {
		return ErrCreditNotFound
	}
	if caller != credit.Owner {
		return ErrNotTokenOwner
	}
	if credit.Retired {
		return ErrCreditAlreadyRetired
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	if amount > credit.Amount {
		return ErrInsufficientBalance
	}

	if err := e.st.burn(amount, caller); err != nil {
		return err
	}

	now := e.clock.Now()
	full := amount == credit.Amount
	if full {
		credit.Amount = 0
		credit.Retired = true
		credit.RetiredAt = &now
	} else {
		credit.Amount -= amount
	}
	e.st.totalRetired += amount
	e.touchESG(caller, now, func(rec *CorporateESG) {
		rec.TotalRetired += amount
	})

	e.recorder.Record(Event{
		Type:         EventCreditRetired,
		Block:        now,
		Actor:        caller,
		ProjectID:    credit.ProjectID,
		CreditID:     creditID,
		Amount:       amount,
		FullyRetired: full,
	})
	return nil
}
