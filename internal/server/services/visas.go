package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/borderease/internal/dbx"
	"github.com/dmitrijs2005/borderease/internal/server/auth"
	"github.com/dmitrijs2005/borderease/internal/server/models"
	"github.com/dmitrijs2005/borderease/internal/server/repositories/repomanager"
)

// MinRequiredDocuments is the least number of documents a visa lists.
const MinRequiredDocuments = 3

// MaxListLimit caps the limit query parameter.
const MaxListLimit = 100

type VisaService struct {
	base
}

func NewVisaService(db *sql.DB, rm repomanager.RepositoryManager, opts ...Option) *VisaService {
	return &VisaService{base: newBase(db, rm, opts)}
}

// List returns the newest visas; limit <= 0 means all of them.
func (s *VisaService) List(ctx context.Context, limit int) ([]models.Visa, error) {
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.rm.Visas(s.handle()).List(ctx, limit)
}

func (s *VisaService) Get(ctx context.Context, id string) (*models.Visa, error) {
	return s.rm.Visas(s.handle()).Get(ctx, id)
}

func (s *VisaService) ListByOwner(ctx context.Context, email string) ([]models.Visa, error) {
	return s.rm.Visas(s.handle()).ListByOwner(ctx, strings.TrimSpace(email))
}

// Create stores v owned by p. A payload naming another owner is rejected.
func (s *VisaService) Create(ctx context.Context, p *auth.Principal, v models.Visa) (*models.Visa, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if v.AddedBy != "" && !owns(p, v.AddedBy) {
		return nil, forbidden("visa")
	}

	v = s.normalize(v)
	if err := validateVisa(v); err != nil {
		return nil, err
	}

	v.ID = s.newID()
	v.AddedBy = p.Email
	if v.AddedByName == "" {
		v.AddedByName = s.clean(p.Name)
	}
	if v.CreatedAt == "" {
		v.CreatedAt = s.timestamp()
	}

	if err := s.rm.Visas(s.handle()).Create(ctx, &v); err != nil {
		return nil, fmt.Errorf("create visa: %w", err)
	}
	return &v, nil
}

// Update replaces the editable fields of visa id owned by p.
func (s *VisaService) Update(ctx context.Context, p *auth.Principal, id string, v models.Visa) (*models.Visa, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	v = s.normalize(v)
	if err := validateVisa(v); err != nil {
		return nil, err
	}

	var out *models.Visa
	err := s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.rm.Visas(tx)
		cur, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if !owns(p, cur.AddedBy) {
			return forbidden("visa")
		}

		v.ID = id
		v.AddedBy = cur.AddedBy
		v.AddedByName = cur.AddedByName
		v.CreatedAt = cur.CreatedAt
		if err := repo.Update(ctx, &v); err != nil {
			return err
		}
		out = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes visa id owned by p.
func (s *VisaService) Delete(ctx context.Context, p *auth.Principal, id string) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	return s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.rm.Visas(tx)
		cur, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if !owns(p, cur.AddedBy) {
			return forbidden("visa")
		}
		return repo.Delete(ctx, id)
	})
}

func (s *VisaService) normalize(v models.Visa) models.Visa {
	v.CountryName = s.clean(v.CountryName)
	v.CountryImage = strings.TrimSpace(v.CountryImage)
	v.VisaType = s.clean(v.VisaType)
	v.ProcessingTime = s.clean(v.ProcessingTime)
	v.Validity = s.clean(v.Validity)
	v.ApplicationMethod = s.clean(v.ApplicationMethod)
	v.Description = s.clean(v.Description)
	v.AddedByName = s.clean(v.AddedByName)

	docs := make([]string, 0, len(v.RequiredDocuments))
	seen := map[string]bool{}
	for _, d := range v.RequiredDocuments {
		d = s.clean(d)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		docs = append(docs, d)
	}
	v.RequiredDocuments = docs
	return v
}

func validateVisa(v models.Visa) error {
	ve := &ValidationError{}
	for field, val := range map[string]string{
		"countryName":       v.CountryName,
		"visaType":          v.VisaType,
		"processingTime":    v.ProcessingTime,
		"validity":          v.Validity,
		"applicationMethod": v.ApplicationMethod,
		"description":       v.Description,
	} {
		if val == "" {
			ve.add(field, "is required")
		}
	}
	if !isHTTPURL(v.CountryImage) {
		ve.add("countryImage", "must be an http(s) URL")
	}
	if v.Fee < 0 {
		ve.add("fee", "cannot be negative")
	}
	if v.AgeRestriction < 0 {
		ve.add("ageRestriction", "cannot be negative")
	}
	if len(v.RequiredDocuments) < MinRequiredDocuments {
		ve.add("requiredDocuments", fmt.Sprintf("at least %d documents are required", MinRequiredDocuments))
	}
	return ve.orNil()
}
