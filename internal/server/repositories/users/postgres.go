package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/borderease/internal/common"
	"github.com/dmitrijs2005/borderease/internal/dbx"
	"github.com/dmitrijs2005/borderease/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT email, display_name, photo_url, created_at, last_login_at FROM users
		 WHERE email = $1`

	u := &models.User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(&u.Email, &u.DisplayName, &u.PhotoURL, &u.CreatedAt, &u.LastLoginAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, u *models.User) error {
	query :=
		`INSERT INTO users (email, display_name, photo_url, created_at, last_login_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (email) DO UPDATE SET
		   display_name = EXCLUDED.display_name,
		   photo_url = EXCLUDED.photo_url,
		   last_login_at = EXCLUDED.last_login_at`

	_, err := r.db.ExecContext(ctx, query, u.Email, u.DisplayName, u.PhotoURL, u.CreatedAt, u.LastLoginAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, email string, patch models.UserPatch) error {
	query :=
		`UPDATE users SET
		   display_name = COALESCE($2, display_name),
		   photo_url = COALESCE($3, photo_url),
		   last_login_at = COALESCE($4, last_login_at)
		 WHERE email = $1`

	res, err := r.db.ExecContext(ctx, query, email, nullable(patch.DisplayName), nullable(patch.PhotoURL), nullable(patch.LastLoginAt))
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

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
