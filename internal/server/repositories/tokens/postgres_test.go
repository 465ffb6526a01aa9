package tokens

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/recipevault/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestGetOrCreate_InsertsNew(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)INSERT\s+INTO\s+auth_tokens\s*\(user_id,\s*token\).*ON\s+CONFLICT\s*\(user_id\).*RETURNING\s+token`

	mock.ExpectQuery(q).
		WithArgs("u-1", "cand").
		WillReturnRows(sqlmock.NewRows([]string{"token"}).AddRow("cand"))

	got, err := repo.GetOrCreate(context.Background(), "u-1", "cand")
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if got != "cand" {
		t.Fatalf("want candidate back, got %q", got)
	}
}

func TestGetOrCreate_ReturnsExisting(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+auth_tokens`).
		WithArgs("u-1", "cand").
		WillReturnRows(sqlmock.NewRows([]string{"token"}).AddRow("existing"))

	got, err := repo.GetOrCreate(context.Background(), "u-1", "cand")
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if got != "existing" {
		t.Fatalf("want existing token, got %q", got)
	}
}

func TestGetOrCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+auth_tokens`).
		WithArgs("u-1", "cand").
		WillReturnError(errors.New("db down"))

	_, err := repo.GetOrCreate(context.Background(), "u-1", "cand")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByToken_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "user_id", "token", "created_at"}).
		AddRow("t-1", "u-1", "abc", time.Now())
	mock.ExpectQuery(`FROM\s+auth_tokens\s+WHERE\s+token\s*=\s*\$1`).
		WithArgs("abc").
		WillReturnRows(rows)

	got, err := repo.GetByToken(context.Background(), "abc")
	if err != nil {
		t.Fatalf("GetByToken error: %v", err)
	}
	if got.UserID != "u-1" {
		t.Fatalf("unexpected token row: %+v", got)
	}
}

func TestGetByToken_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+auth_tokens`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByToken(context.Background(), "nope")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}
