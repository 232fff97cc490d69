package archive

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"carbonmarket/ledger-backend/internal/core"
)

// Repository persists engine mirrors for the browse/reporting surfaces.
type Repository interface {
	SaveProject(ctx context.Context, p core.Project) error
	SetProjectActive(ctx context.Context, projectID uint64, active bool) error
	SaveCredit(ctx context.Context, c core.Credit) error
	MarkRetirement(ctx context.Context, creditID, amount, block uint64, fully bool) error
	SaveListing(ctx context.Context, l core.Listing) error
	ApplyFill(ctx context.Context, listingID, amount uint64) error
	DeactivateListing(ctx context.Context, listingID uint64) error
	SaveTrade(ctx context.Context, t *Trade) error
	SaveCertificate(ctx context.Context, c *RetirementCertificate) error
	UpsertESGSnapshot(ctx context.Context, s *ESGSnapshot) error

	ListProjects(ctx context.Context, owner *uuid.UUID, limit, offset int) ([]ProjectRow, error)
	ListCreditsByOwner(ctx context.Context, owner uuid.UUID) ([]CreditRow, error)
	ListActiveListings(ctx context.Context, limit, offset int) ([]ListingRow, error)
	ListTradesByCompany(ctx context.Context, company uuid.UUID) ([]Trade, error)
	GetCertificate(ctx context.Context, number string) (*RetirementCertificate, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository migrates the mirror tables and returns the repository.
func NewRepository(db *gorm.DB) (Repository, error) {
	if err := db.AutoMigrate(
		&ProjectRow{},
		&CreditRow{},
		&ListingRow{},
		&Trade{},
		&RetirementCertificate{},
		&ESGSnapshot{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate archive tables: %w", err)
	}
	return &gormRepository{db: db}, nil
}

func (r *gormRepository) SaveProject(ctx context.Context, p core.Project) error {
	sensors, err := json.Marshal(p.Sensors)
	if err != nil {
		return fmt.Errorf("failed to marshal sensors: %w", err)
	}
	row := ProjectRow{
		ID:                   p.ID,
		Owner:                p.Owner,
		Name:                 p.Name,
		Location:             p.Location,
		Category:             p.Category,
		ExpectedAnnualOffset: p.ExpectedAnnualOffset,
		Sensors:              datatypes.JSON(sensors),
		BiodiversityScore:    p.BiodiversityScore,
		Active:               p.Active,
		RegisteredBlock:      p.CreatedAt,
	}
	return r.db.WithContext(ctx).Save(&row).Error
}

func (r *gormRepository) SetProjectActive(ctx context.Context, projectID uint64, active bool) error {
	return r.db.WithContext(ctx).Model(&ProjectRow{}).
		Where("id = ?", projectID).
		Update("active", active).Error
}

func (r *gormRepository) SaveCredit(ctx context.Context, c core.Credit) error {
	row := CreditRow{
		ID:                c.ID,
		ProjectID:         c.ProjectID,
		Owner:             c.Owner,
		Amount:            c.Amount,
		BiodiversityBonus: c.BiodiversityBonus,
		VerificationCount: c.VerificationCount,
		Retired:           c.Retired,
		IssuedBlock:       c.CreatedAt,
		RetiredBlock:      c.RetiredAt,
	}
	return r.db.WithContext(ctx).Save(&row).Error
}

func (r *gormRepository) MarkRetirement(ctx context.Context, creditID, amount, block uint64, fully bool) error {
	updates := map[string]interface{}{
		"amount": gorm.Expr("amount - ?", amount),
	}
	if fully {
		updates["amount"] = 0
		updates["retired"] = true
		updates["retired_block"] = block
	}
	return r.db.WithContext(ctx).Model(&CreditRow{}).
		Where("id = ?", creditID).
		Updates(updates).Error
}

func (r *gormRepository) SaveListing(ctx context.Context, l core.Listing) error {
	row := ListingRow{
		ID:           l.ID,
		CreditID:     l.CreditID,
		Seller:       l.Seller,
		PricePerTon:  l.PricePerTon,
		Amount:       l.Amount,
		Active:       l.Active,
		CreatedBlock: l.CreatedAt,
	}
	return r.db.WithContext(ctx).Save(&row).Error
}

func (r *gormRepository) ApplyFill(ctx context.Context, listingID, amount uint64) error {
	res := r.db.WithContext(ctx).Model(&ListingRow{}).
		Where("id = ? AND amount >= ?", listingID, amount).
		Updates(map[string]interface{}{
			"amount": gorm.Expr("amount - ?", amount),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("listing %d not found or overfilled", listingID)
	}
	return r.db.WithContext(ctx).Model(&ListingRow{}).
		Where("id = ? AND amount = 0", listingID).
		Update("active", false).Error
}

func (r *gormRepository) DeactivateListing(ctx context.Context, listingID uint64) error {
	return r.db.WithContext(ctx).Model(&ListingRow{}).
		Where("id = ?", listingID).
		Updates(map[string]interface{}{
			"active": false,
			"amount": 0,
		}).Error
}

func (r *gormRepository) SaveTrade(ctx context.Context, t *Trade) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *gormRepository) SaveCertificate(ctx context.Context, c *RetirementCertificate) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *gormRepository) UpsertESGSnapshot(ctx context.Context, s *ESGSnapshot) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *gormRepository) ListProjects(ctx context.Context, owner *uuid.UUID, limit, offset int) ([]ProjectRow, error) {
	var rows []ProjectRow
	query := r.db.WithContext(ctx).Order("id ASC").Limit(limit).Offset(offset)
	if owner != nil {
		query = query.Where("owner = ?", *owner)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return rows, nil
}

func (r *gormRepository) ListCreditsByOwner(ctx context.Context, owner uuid.UUID) ([]CreditRow, error) {
	var rows []CreditRow
	if err := r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list credits: %w", err)
	}
	return rows, nil
}

func (r *gormRepository) ListActiveListings(ctx context.Context, limit, offset int) ([]ListingRow, error) {
	var rows []ListingRow
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id ASC").
		Limit(limit).Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return rows, nil
}

func (r *gormRepository) ListTradesByCompany(ctx context.Context, company uuid.UUID) ([]Trade, error) {
	var rows []Trade
	if err := r.db.WithContext(ctx).
		Where("buyer = ? OR seller = ?", company, company).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return rows, nil
}

func (r *gormRepository) GetCertificate(ctx context.Context, number string) (*RetirementCertificate, error) {
	var cert RetirementCertificate
	if err := r.db.WithContext(ctx).
		Where("certificate_number = ?", number).
		First(&cert).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}
