package core

import "github.com/google/uuid"

// esgScore derives the 0-100 score from the rolling totals. Pure function;
// the stored score is only a cache of it.
func esgScore(purchased, retired uint64) uint32 {
	if purchased == 0 {
		return 0
	}
	score := retired * 100 / purchased
	if score > 100 {
		score = 100
	}
	return uint32(score)
}

// touchESG applies mutate to a company's record, creating it lazily, and
// recomputes the cached score. Totals only ever accumulate.
func (e *Engine) touchESG(company uuid.UUID, now uint64, mutate func(*CorporateESG)) {
	rec, ok := e.st.esg[company]
	if !ok {
		rec = &CorporateESG{Company: company}
		e.st.esg[company] = rec
	}
	mutate(rec)
	rec.Score = esgScore(rec.TotalPurchased, rec.TotalRetired)
	rec.LastUpdated = now
}

// CalculateESGScore recomputes the score from a company's current totals.
// A company with no record scores zero.
func (e *Engine) CalculateESGScore(company uuid.UUID) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.st.esg[company]
	if !ok {
		return 0
	}
	return esgScore(rec.TotalPurchased, rec.TotalRetired)
}
