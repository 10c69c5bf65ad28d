package visas

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/borderease/internal/common"
	"github.com/dmitrijs2005/borderease/internal/dbx"
	"github.com/dmitrijs2005/borderease/internal/server/models"
)

const columns = `id, country_name, country_image, visa_type, processing_time, fee, validity,
application_method, age_restriction, required_documents, description, added_by, added_by_name, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVisa(s scanner) (*models.Visa, error) {
	v := &models.Visa{}
	var docs []byte
	err := s.Scan(&v.ID, &v.CountryName, &v.CountryImage, &v.VisaType, &v.ProcessingTime, &v.Fee, &v.Validity,
		&v.ApplicationMethod, &v.AgeRestriction, &docs, &v.Description, &v.AddedBy, &v.AddedByName, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(docs, &v.RequiredDocuments); err != nil {
		return nil, fmt.Errorf("decode required documents: %w", err)
	}
	if v.RequiredDocuments == nil {
		v.RequiredDocuments = []string{}
	}
	return v, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]models.Visa, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.Visa{}
	for rows.Next() {
		v, err := scanVisa(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) List(ctx context.Context, limit int) ([]models.Visa, error) {
	if limit > 0 {
		return r.query(ctx, `SELECT `+columns+` FROM visas ORDER BY inserted_at DESC LIMIT $1`, limit)
	}
	return r.query(ctx, `SELECT `+columns+` FROM visas ORDER BY inserted_at DESC`)
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, email string) ([]models.Visa, error) {
	return r.query(ctx, `SELECT `+columns+` FROM visas WHERE added_by = $1 ORDER BY inserted_at DESC`, email)
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Visa, error) {
	v, err := scanVisa(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM visas WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository) Create(ctx context.Context, v *models.Visa) error {
	docs, err := json.Marshal(v.RequiredDocuments)
	if err != nil {
		return fmt.Errorf("encode required documents: %w", err)
	}

	query :=
		`INSERT INTO visas (` + columns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = r.db.ExecContext(ctx, query,
		v.ID, v.CountryName, v.CountryImage, v.VisaType, v.ProcessingTime, v.Fee, v.Validity,
		v.ApplicationMethod, v.AgeRestriction, docs, v.Description, v.AddedBy, v.AddedByName, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update replaces the editable fields; ownership and creation stamps stay.
func (r *PostgresRepository) Update(ctx context.Context, v *models.Visa) error {
	docs, err := json.Marshal(v.RequiredDocuments)
	if err != nil {
		return fmt.Errorf("encode required documents: %w", err)
	}

	query :=
		`UPDATE visas SET country_name = $2, country_image = $3, visa_type = $4, processing_time = $5,
		 fee = $6, validity = $7, application_method = $8, age_restriction = $9,
		 required_documents = $10, description = $11
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		v.ID, v.CountryName, v.CountryImage, v.VisaType, v.ProcessingTime,
		v.Fee, v.Validity, v.ApplicationMethod, v.AgeRestriction, docs, v.Description)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return affectedOne(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM visas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return affectedOne(res)
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
