package core

import "github.com/google/uuid"

// MaxProjectSensors caps the sensors registered per project.
const MaxProjectSensors = 10

// DefaultVerificationThreshold is the minimum count of accepted sensor
// readings before a project's credits may be issued.
const DefaultVerificationThreshold = 10

// Project is a registered carbon-offset initiative. Metadata is immutable
// after registration except the Active flag.
type Project struct {
	ID                   uint64    `json:"id"`
	Owner                uuid.UUID `json:"owner"`
	Name                 string    `json:"name"`
	Location             string    `json:"location"`
	Category             string    `json:"category"`
	ExpectedAnnualOffset uint64    `json:"expected_annual_offset"` // tons CO2
	Sensors              []string  `json:"sensors"`
	BiodiversityScore    uint32    `json:"biodiversity_score"` // 0-100
	Active               bool      `json:"active"`
	CreatedAt            uint64    `json:"created_at"`
}

// VerificationRecord tallies accepted sensor readings for one project.
type VerificationRecord struct {
	ProjectID        uint64 `json:"project_id"`
	TotalReadings    uint64 `json:"total_readings"`
	VerifiedReadings uint64 `json:"verified_readings"`
	LastVerification uint64 `json:"last_verification"`
	TotalCO2Grams    uint64 `json:"total_co2_grams"`
	LastDataHash     string `json:"last_data_hash"`
}

// SensorReading is one accepted data point, keyed by (sensor, timestamp).
// Append-only; a duplicate key overwrites, so submitters use unique
// timestamps.
type SensorReading struct {
	SensorID    string `json:"sensor_id"`
	Timestamp   uint64 `json:"timestamp"`
	ProjectID   uint64 `json:"project_id"`
	CO2Grams    uint64 `json:"co2_grams"`
	Temperature int32  `json:"temperature"`
	Humidity    uint32 `json:"humidity"`
	DataHash    string `json:"data_hash"`
	Verified    bool   `json:"verified"`
}

// Credit is a unit of tokenized carbon offset. Amount decreases on partial
// retirement; a fully retired credit has Amount 0 and Retired true, once.
type Credit struct {
	ID                uint64    `json:"id"`
	ProjectID         uint64    `json:"project_id"`
	Owner             uuid.UUID `json:"owner"`
	Amount            uint64    `json:"amount"` // tons CO2e remaining
	CreatedAt         uint64    `json:"created_at"`
	VerificationHash  string    `json:"verification_hash"`
	VerificationCount uint64    `json:"verification_count"`
	Retired           bool      `json:"retired"`
	RetiredAt         *uint64   `json:"retired_at,omitempty"`
	BiodiversityBonus uint64    `json:"biodiversity_bonus"`
}

// Listing is an active offer to sell part of a credit at a fixed price.
// Amount only decreases; the listing deactivates exactly when it hits zero
// or is cancelled.
type Listing struct {
	ID          uint64    `json:"id"`
	CreditID    uint64    `json:"credit_id"`
	Seller      uuid.UUID `json:"seller"`
	PricePerTon uint64    `json:"price_per_ton"`
	Amount      uint64    `json:"amount"`
	Active      bool      `json:"active"`
	CreatedAt   uint64    `json:"created_at"`
}

// CorporateESG is a company's rolling purchase/retirement totals plus the
// derived score. The score is a cache of a pure function of the totals.
type CorporateESG struct {
	Company        uuid.UUID `json:"company"`
	TotalPurchased uint64    `json:"total_purchased"`
	TotalRetired   uint64    `json:"total_retired"`
	Score          uint32    `json:"score"` // 0-100
	LastUpdated    uint64    `json:"last_updated"`
}

// Stats is the global counter snapshot exposed to the reporting surface.
type Stats struct {
	TotalProjects         uint64 `json:"total_projects"`
	TotalCredits          uint64 `json:"total_credits"`
	TotalListings         uint64 `json:"total_listings"`
	TotalIssued           uint64 `json:"total_issued"`
	TotalRetired          uint64 `json:"total_retired"`
	TotalSupply           uint64 `json:"total_supply"`
	TotalMinted           uint64 `json:"total_minted"`
	TotalBurned           uint64 `json:"total_burned"`
	VerificationThreshold uint64 `json:"verification_threshold"`
	Paused                bool   `json:"paused"`
}
