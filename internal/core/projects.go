package core

import "github.com/google/uuid"

// RegisterProjectRequest carries the immutable metadata of a new project.
type RegisterProjectRequest struct {
	Name                 string   `json:"name"`
	Location             string   `json:"location"`
	Category             string   `json:"category"`
	ExpectedAnnualOffset uint64   `json:"expected_annual_offset"`
	Sensors              []string `json:"sensors"`
	BiodiversityScore    uint32   `json:"biodiversity_score"`
}

// RegisterProject stores a new active project with a zeroed verification
// record and returns its id.
func (e *Engine) RegisterProject(owner uuid.UUID, req RegisterProjectRequest) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireUnpaused(); err != nil {
		return 0, err
	}
	if req.ExpectedAnnualOffset == 0 || req.BiodiversityScore > 100 {
		return 0, ErrInvalidAmount
	}
	if len(req.Sensors) > MaxProjectSensors {
		return 0, ErrInvalidSensor
	}

	now := e.clock.Now()
	id := e.st.nextProjectID
	e.st.projects[id] = &Project{
		ID:                   id,
		Owner:                owner,
		Name:                 req.Name,
		Location:             req.Location,
		Category:             req.Category,
		ExpectedAnnualOffset: req.ExpectedAnnualOffset,
		Sensors:              append([]string(nil), req.Sensors...),
		BiodiversityScore:    req.BiodiversityScore,
		Active:               true,
		CreatedAt:            now,
	}
	e.st.verification[id] = &VerificationRecord{ProjectID: id}
	e.st.nextProjectID++

	e.recorder.Record(Event{
		Type:      EventProjectRegistered,
		Block:     now,
		Actor:     owner,
		ProjectID: id,
	})
	return id, nil
}

// SetProjectActive toggles a project's active flag. Restricted to the
// project owner or an admin; all other metadata stays immutable.
func (e *Engine) SetProjectActive(caller uuid.UUID, projectID uint64, active bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireUnpaused(); err != nil {
		return err
	}
	project, ok := e.st.projects[projectID]
	if !ok {
		return ErrInvalidProject
	}
	if caller != project.Owner && !e.st.admins[caller] {
		return ErrUnauthorized
	}

	project.Active = active
	e.recorder.Record(Event{
		Type:      EventProjectToggled,
		Block:     e.clock.Now(),
		Actor:     caller,
		ProjectID: projectID,
	})
	return nil
}

// SubmitSensorReading accepts one data point into a project's tally.
// "Verified" means accepted: trust in the submitter is delegated to the
// oracle feeding this operation, not established here.
func (e *Engine) SubmitSensorReading(sensorID string, projectID, co2Grams uint64, temperature int32, humidity uint32, dataHash string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireUnpaused(); err != nil {
		return err
	}
	if sensorID == "" {
		return ErrInvalidSensor
	}
	project, ok := e.st.projects[projectID]
	if !ok || !project.Active {
		return ErrInvalidProject
	}
	if co2Grams == 0 {
		return ErrInvalidAmount
	}

	now := e.clock.Now()
	e.st.readings[readingKey{Sensor: sensorID, Timestamp: now}] = &SensorReading{
		SensorID:    sensorID,
		Timestamp:   now,
		ProjectID:   projectID,
		CO2Grams:    co2Grams,
		Temperature: temperature,
		Humidity:    humidity,
		DataHash:    dataHash,
		Verified:    true,
	}

	rec := e.st.verification[projectID]
	rec.TotalReadings++
	rec.VerifiedReadings++
	rec.LastVerification = now
	rec.TotalCO2Grams += co2Grams
	rec.LastDataHash = dataHash

	e.recorder.Record(Event{
		Type:      EventReadingAccepted,
		Block:     now,
		Actor:     project.Owner,
		ProjectID: projectID,
		SensorID:  sensorID,
		Amount:    co2Grams,
	})
	if rec.VerifiedReadings == e.st.verificationThreshold {
		e.recorder.Record(Event{
			Type:      EventThresholdReached,
			Block:     now,
			Actor:     project.Owner,
			ProjectID: projectID,
			Amount:    rec.VerifiedReadings,
		})
	}
	return nil
}
