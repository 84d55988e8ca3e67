package repository

import (
	"context"
	"testing"

	"appointment-scheduler/core/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func newMockRepo(t *testing.T) (*TokenRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewTokenRepository(database.New(sqlx.NewDb(db, "postgres"))), mock
}

func TestTokenRepository_DeleteAllForUser(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()

	mock.ExpectQuery(`DELETE FROM tokens WHERE user_id = \$1 RETURNING token`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"token"}).AddRow("t1").AddRow("t2"))

	tokens, err := repo.DeleteAllForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("DeleteAllForUser() error = %v", err)
	}
	if len(tokens) != 2 || tokens[0] != "t1" || tokens[1] != "t2" {
		t.Errorf("DeleteAllForUser() = %v, want [t1 t2]", tokens)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
