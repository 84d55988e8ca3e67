package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"appointment-scheduler/core/database"
	"appointment-scheduler/core/logger"
	"appointment-scheduler/modules/auth/entity"

	"github.com/google/uuid"
)

type TokenRepository struct {
	DB database.IDatabase
}

func NewTokenRepository(db database.IDatabase) *TokenRepository {
	return &TokenRepository{DB: db}
}

type TokenRepositoryInterface interface {
	Add(ctx context.Context, token *entity.Token) error
	FindValid(ctx context.Context, token string, now time.Time) (*entity.Token, error)
	Delete(ctx context.Context, token string) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) ([]string, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

func (r *TokenRepository) Add(ctx context.Context, token *entity.Token) error {
	query := `INSERT INTO tokens (token, user_id, expires_at) VALUES ($1, $2, $3)`
	if err := r.DB.ExecContext(ctx, query, token.Token, token.UserID, token.ExpiresAt); err != nil {
		logger.Error("TokenRepository:Add", "error", err)
		return err
	}
	return nil
}

func (r *TokenRepository) FindValid(ctx context.Context, token string, now time.Time) (*entity.Token, error) {
	query := `SELECT token, user_id, expires_at, created_at FROM tokens WHERE token = $1 AND expires_at > $2`

	var t entity.Token
	err := r.DB.GetContext(ctx, &t, query, token, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Error("TokenRepository:FindValid", "error", err)
		return nil, err
	}
	return &t, nil
}

func (r *TokenRepository) Delete(ctx context.Context, token string) error {
	if err := r.DB.ExecContext(ctx, `DELETE FROM tokens WHERE token = $1`, token); err != nil {
		logger.Error("TokenRepository:Delete", "error", err)
		return err
	}
	return nil
}

// DeleteAllForUser returns the deleted token values.
func (r *TokenRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	tokens := []string{}
	if err := r.DB.SelectContext(ctx, &tokens, `DELETE FROM tokens WHERE user_id = $1 RETURNING token`, userID); err != nil {
		logger.Error("TokenRepository:DeleteAllForUser", "error", err)
		return nil, err
	}
	return tokens, nil
}

func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.SQLx().ExecContext(ctx, `DELETE FROM tokens WHERE expires_at <= $1`, now)
	if err != nil {
		logger.Error("TokenRepository:DeleteExpired", "error", err)
		return 0, err
	}
	return res.RowsAffected()
}
