package applications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/borderease/internal/common"
	"github.com/dmitrijs2005/borderease/internal/dbx"
	"github.com/dmitrijs2005/borderease/internal/server/models"
)

const columns = `id, visa_id, country_name, country_image, visa_type, processing_time, fee, validity,
application_method, applicant_email, applicant_first_name, applicant_last_name, applied_date`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanApplication(s scanner) (*models.Application, error) {
	a := &models.Application{}
	err := s.Scan(&a.ID, &a.VisaID, &a.CountryName, &a.CountryImage, &a.VisaType, &a.ProcessingTime, &a.Fee,
		&a.Validity, &a.ApplicationMethod, &a.ApplicantEmail, &a.ApplicantFirstName, &a.ApplicantLastName, &a.AppliedDate)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *PostgresRepository) ListByApplicant(ctx context.Context, email string) ([]models.Application, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+columns+` FROM applications WHERE applicant_email = $1 ORDER BY inserted_at DESC`, email)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Application, error) {
	a, err := scanApplication(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM applications WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Application) error {
	query :=
		`INSERT INTO applications (` + columns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.VisaID, a.CountryName, a.CountryImage, a.VisaType, a.ProcessingTime, a.Fee,
		a.Validity, a.ApplicationMethod, a.ApplicantEmail, a.ApplicantFirstName, a.ApplicantLastName, a.AppliedDate)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
