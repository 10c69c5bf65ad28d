package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/borderease/internal/common"
	"github.com/dmitrijs2005/borderease/internal/dbx"
	"github.com/dmitrijs2005/borderease/internal/server/auth"
	"github.com/dmitrijs2005/borderease/internal/server/models"
	"github.com/dmitrijs2005/borderease/internal/server/repositories/repomanager"
)

type ApplicationService struct {
	base
}

func NewApplicationService(db *sql.DB, rm repomanager.RepositoryManager, opts ...Option) *ApplicationService {
	return &ApplicationService{base: newBase(db, rm, opts)}
}

// ListByApplicant returns the applications of email; only its owner may
// read them.
func (s *ApplicationService) ListByApplicant(ctx context.Context, p *auth.Principal, email string) ([]models.Application, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if !owns(p, email) {
		return nil, forbidden("application list")
	}
	return s.rm.Applications(s.handle()).ListByApplicant(ctx, p.Email)
}

// Create stores a for p. The visa snapshot sent by the client is kept as
// is; the visa itself must still exist.
func (s *ApplicationService) Create(ctx context.Context, p *auth.Principal, a models.Application) (*models.Application, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if a.ApplicantEmail != "" && !owns(p, a.ApplicantEmail) {
		return nil, forbidden("application")
	}

	a.ApplicantEmail = p.Email
	a.ApplicantFirstName = s.clean(a.ApplicantFirstName)
	a.ApplicantLastName = s.clean(a.ApplicantLastName)
	a.CountryName = s.clean(a.CountryName)
	a.VisaType = s.clean(a.VisaType)
	a.ProcessingTime = s.clean(a.ProcessingTime)
	a.Validity = s.clean(a.Validity)
	a.ApplicationMethod = s.clean(a.ApplicationMethod)

	ve := &ValidationError{}
	if a.VisaID == "" {
		ve.add("visaId", "is required")
	}
	if a.ApplicantFirstName == "" {
		ve.add("applicantFirstName", "is required")
	}
	if a.ApplicantLastName == "" {
		ve.add("applicantLastName", "is required")
	}
	if err := ve.orNil(); err != nil {
		return nil, err
	}

	a.ID = s.newID()
	if a.AppliedDate == "" {
		a.AppliedDate = s.timestamp()
	}

	err := s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.rm.Visas(tx).Get(ctx, a.VisaID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return &ValidationError{Fields: map[string]string{"visaId": "unknown visa"}}
			}
			return err
		}
		return s.rm.Applications(tx).Create(ctx, &a)
	})
	if err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	return &a, nil
}

// Delete cancels application id of p.
func (s *ApplicationService) Delete(ctx context.Context, p *auth.Principal, id string) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	return s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.rm.Applications(tx)
		cur, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if !owns(p, cur.ApplicantEmail) {
			return forbidden("application")
		}
		return repo.Delete(ctx, id)
	})
}
