package certificates

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"carbonmarket/ledger-backend/internal/archive"
	"carbonmarket/ledger-backend/internal/core"
	"carbonmarket/ledger-backend/pkg/storage"
)

// Service issues numbered retirement certificates and serves lookups.
// It doubles as an event sink so the dispatcher can feed it retirements.
type Service interface {
	Name() string
	Handle(ctx context.Context, ev core.Event) error
	Lookup(ctx context.Context, number string) (*archive.RetirementCertificate, string, error)
}

type service struct {
	engine *core.Engine
	repo   archive.Repository
	s3     storage.S3Client
	bucket string
}

func NewService(engine *core.Engine, repo archive.Repository, s3 storage.S3Client, bucket string) Service {
	return &service{engine: engine, repo: repo, s3: s3, bucket: bucket}
}

func (s *service) Name() string { return "certificates" }

// Handle issues a certificate for every retirement, full or partial.
func (s *service) Handle(ctx context.Context, ev core.Event) error {
	if ev.Type != core.EventCreditRetired {
		return nil
	}

	credit, err := s.engine.GetCredit(ev.CreditID)
	if err != nil {
		return err
	}
	project, err := s.engine.GetProject(credit.ProjectID)
	if err != nil {
		return err
	}

	number := fmt.Sprintf("RET-%06d-%d", ev.CreditID, ev.Block)
	document, err := Render(CertificateData{
		Number:      number,
		ProjectName: project.Name,
		Location:    project.Location,
		Category:    project.Category,
		RetiredBy:   ev.Actor.String(),
		Amount:      ev.Amount,
		Block:       ev.Block,
		IssuedAt:    time.Now(),
	})
	if err != nil {
		return err
	}

	key := fmt.Sprintf("certificates/%s.pdf", number)
	if err := s.s3.Upload(ctx, s.bucket, key, bytes.NewReader(document)); err != nil {
		return err
	}

	return s.repo.SaveCertificate(ctx, &archive.RetirementCertificate{
		CertificateNumber: number,
		CreditID:          ev.CreditID,
		ProjectID:         project.ID,
		RetiredBy:         ev.Actor,
		Amount:            ev.Amount,
		Block:             ev.Block,
		DocumentKey:       key,
	})
}

// Lookup returns the certificate record and a short-lived download URL.
func (s *service) Lookup(ctx context.Context, number string) (*archive.RetirementCertificate, string, error) {
	cert, err := s.repo.GetCertificate(ctx, number)
	if err != nil {
		return nil, "", fmt.Errorf("certificate not found: %w", err)
	}
	url, err := s.s3.GetPresignedURL(ctx, s.bucket, cert.DocumentKey, 15*time.Minute)
	if err != nil {
		return nil, "", err
	}
	return cert, url, nil
}
