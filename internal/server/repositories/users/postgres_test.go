package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/borderease/internal/common"
	"github.com/dmitrijs2005/borderease/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const getQuery = `(?s)^SELECT\s+email,\s*display_name,\s*photo_url,\s*created_at,\s*last_login_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`

func TestGet_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"email", "display_name", "photo_url", "created_at", "last_login_at"}).
		AddRow("a@b.com", "Ann", "", "2025-03-01T12:00:00Z", "2025-03-02T12:00:00Z")
	mock.ExpectQuery(getQuery).WithArgs("a@b.com").WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Email != "a@b.com" || got.DisplayName != "Ann" || got.LastLoginAt != "2025-03-02T12:00:00Z" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(getQuery).WithArgs("ghost@b.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "ghost@b.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGet_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(getQuery).WithArgs("a@b.com").WillReturnError(errors.New("db err"))

	_, err := repo.Get(context.Background(), "a@b.com")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUpsert(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users\s*\(email,\s*display_name,\s*photo_url,\s*created_at,\s*last_login_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*ON\s+CONFLICT\s*\(email\)\s*DO\s+UPDATE\s+SET.*$`
	mock.ExpectExec(q).
		WithArgs("a@b.com", "Ann", "", "2025-03-01T12:00:00Z", "2025-03-01T12:00:00Z").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), &models.User{
		Email: "a@b.com", DisplayName: "Ann", CreatedAt: "2025-03-01T12:00:00Z", LastLoginAt: "2025-03-01T12:00:00Z",
	})
	if err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET.*COALESCE\(\$2, display_name\).*WHERE\s+email\s*=\s*\$1\s*$`
	login := "2025-03-02T12:00:00Z"

	mock.ExpectExec(q).
		WithArgs("a@b.com", sql.NullString{}, sql.NullString{}, sql.NullString{String: login, Valid: true}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).
		WithArgs("ghost@b.com", sql.NullString{}, sql.NullString{}, sql.NullString{String: login, Valid: true}).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Update(context.Background(), "a@b.com", models.UserPatch{LastLoginAt: &login}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	err := repo.Update(context.Background(), "ghost@b.com", models.UserPatch{LastLoginAt: &login})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}
