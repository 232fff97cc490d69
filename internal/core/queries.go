package core

import "github.com/google/uuid"

// Read-only queries. All return copies; engine state never escapes.
// Reads succeed while the marketplace is paused.

func (e *Engine) GetProject(id uint64) (Project, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	project, ok := e.st.projects[id]
	if !ok {
		return Project{}, ErrInvalidProject
	}
	out := *project
	out.Sensors = append([]string(nil), project.Sensors...)
	return out, nil
}

func (e *Engine) GetProjectVerification(projectID uint64) (VerificationRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.st.verification[projectID]
	if !ok {
		return VerificationRecord{}, ErrInvalidProject
	}
	return *rec, nil
}

func (e *Engine) GetSensorReading(sensorID string, timestamp uint64) (SensorReading, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	reading, ok := e.st.readings[readingKey{Sensor: sensorID, Timestamp: timestamp}]
	if !ok {
		return SensorReading{}, ErrInvalidSensor
	}
	return *reading, nil
}

func (e *Engine) GetCredit(id uint64) (Credit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	credit, ok := e.st.credits[id]
	if !ok {
		return Credit{}, ErrCreditNotFound
	}
	out := *credit
	if credit.RetiredAt != nil {
		at := *credit.RetiredAt
		out.RetiredAt = &at
	}
	return out, nil
}

func (e *Engine) GetListing(id uint64) (Listing, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	listing, ok := e.st.listings[id]
	if !ok {
		return Listing{}, ErrListingNotFound
	}
	return *listing, nil
}

// GetCorporateESG returns the zero record for companies that never traded.
func (e *Engine) GetCorporateESG(company uuid.UUID) CorporateESG {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.st.esg[company]
	if !ok {
		return CorporateESG{Company: company}
	}
	return *rec
}

// Stats snapshots the global counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		TotalProjects:         e.st.nextProjectID - 1,
		TotalCredits:          e.st.nextCreditID - 1,
		TotalListings:         e.st.nextListingID - 1,
		TotalIssued:           e.st.totalIssued,
		TotalRetired:          e.st.totalRetired,
		TotalSupply:           e.st.totalMinted - e.st.totalBurned,
		TotalMinted:           e.st.totalMinted,
		TotalBurned:           e.st.totalBurned,
		VerificationThreshold: e.st.verificationThreshold,
		Paused:                e.st.paused,
	}
}
