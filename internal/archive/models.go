package archive

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Durable mirrors of engine state, written after each committed operation.
// The engine's in-memory state stays authoritative; these rows feed the
// browse/reporting surfaces and the workers.

// ProjectRow mirrors a registered project
type ProjectRow struct {
	ID                   uint64         `gorm:"primaryKey" json:"id"`
	Owner                uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner"`
	Name                 string         `gorm:"not null" json:"name"`
	Location             string         `json:"location"`
	Category             string         `gorm:"index" json:"category"`
	ExpectedAnnualOffset uint64         `json:"expected_annual_offset"`
	Sensors              datatypes.JSON `json:"sensors"`
	BiodiversityScore    uint32         `json:"biodiversity_score"`
	Active               bool           `gorm:"not null;default:true" json:"active"`
	RegisteredBlock      uint64         `json:"registered_block"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

func (ProjectRow) TableName() string { return "projects" }

// CreditRow mirrors an issued credit
type CreditRow struct {
	ID                uint64    `gorm:"primaryKey" json:"id"`
	ProjectID         uint64    `gorm:"not null;index" json:"project_id"`
	Owner             uuid.UUID `gorm:"type:uuid;not null;index" json:"owner"`
	Amount            uint64    `gorm:"not null" json:"amount"`
	BiodiversityBonus uint64    `json:"biodiversity_bonus"`
	VerificationCount uint64    `json:"verification_count"`
	Retired           bool      `gorm:"not null;default:false" json:"retired"`
	IssuedBlock       uint64    `json:"issued_block"`
	RetiredBlock      *uint64   `json:"retired_block,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (CreditRow) TableName() string { return "credits" }

// ListingRow mirrors a marketplace listing
type ListingRow struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	CreditID     uint64    `gorm:"not null;index" json:"credit_id"`
	Seller       uuid.UUID `gorm:"type:uuid;not null;index" json:"seller"`
	PricePerTon  uint64    `gorm:"not null" json:"price_per_ton"`
	Amount       uint64    `gorm:"not null" json:"amount"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedBlock uint64    `json:"created_block"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (ListingRow) TableName() string { return "listings" }

// Trade records one settled fill
type Trade struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID   uint64    `gorm:"not null;index" json:"listing_id"`
	CreditID    uint64    `gorm:"not null" json:"credit_id"`
	Buyer       uuid.UUID `gorm:"type:uuid;not null;index" json:"buyer"`
	Seller      uuid.UUID `gorm:"type:uuid;not null" json:"seller"`
	Amount      uint64    `gorm:"not null" json:"amount"`
	PricePerTon uint64    `gorm:"not null" json:"price_per_ton"`
	Block       uint64    `json:"block"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Trade) TableName() string { return "trades" }

func (t *Trade) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// RetirementCertificate is the numbered proof emitted on retirement
type RetirementCertificate struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CertificateNumber string    `gorm:"uniqueIndex;not null" json:"certificate_number"`
	CreditID          uint64    `gorm:"not null;index" json:"credit_id"`
	ProjectID         uint64    `gorm:"not null" json:"project_id"`
	RetiredBy         uuid.UUID `gorm:"type:uuid;not null;index" json:"retired_by"`
	Amount            uint64    `gorm:"not null" json:"amount"`
	Block             uint64    `json:"block"`
	DocumentKey       string    `json:"document_key"` // object key of the PDF
	CreatedAt         time.Time `json:"created_at"`
}

func (RetirementCertificate) TableName() string { return "retirement_certificates" }

func (r *RetirementCertificate) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ESGSnapshot is the periodically refreshed company rollup
type ESGSnapshot struct {
	Company        uuid.UUID `gorm:"type:uuid;primaryKey" json:"company"`
	TotalPurchased uint64    `gorm:"not null;default:0" json:"total_purchased"`
	TotalRetired   uint64    `gorm:"not null;default:0" json:"total_retired"`
	Score          uint32    `gorm:"not null;default:0" json:"score"`
	RefreshedAt    time.Time `json:"refreshed_at"`
}

func (ESGSnapshot) TableName() string { return "esg_snapshots" }
