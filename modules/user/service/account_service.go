package service

import (
	"context"

	"appointment-scheduler/core/constants"
	"appointment-scheduler/core/errors"
	"appointment-scheduler/core/logger"
	"appointment-scheduler/core/utils"
	"appointment-scheduler/modules/user/repository"

	"github.com/google/uuid"
)

// SessionRevoker ends every session of a user.
type SessionRevoker interface {
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) *errors.AppError
}

// BlockCleaner removes every block edge a user is part of.
type BlockCleaner interface {
	ClearAllForUser(ctx context.Context, userID uuid.UUID) *errors.AppError
}

type AccountServiceInterface interface {
	Delete(ctx context.Context, actor *utils.TokenClaims, id uuid.UUID) *errors.AppError
}

type AccountService struct {
	repo     repository.UserRepositoryInterface
	sessions SessionRevoker
	blocks   BlockCleaner
}

func NewAccountService(repo repository.UserRepositoryInterface, sessions SessionRevoker, blocks BlockCleaner) *AccountService {
	return &AccountService{repo: repo, sessions: sessions, blocks: blocks}
}

// Delete removes a user account. Sessions and block edges are cleared before the row
// goes, so no cached token outlives the account.
func (s *AccountService) Delete(ctx context.Context, actor *utils.TokenClaims, id uuid.UUID) *errors.AppError {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	const failed = "Something went wrong while deleting user"

	if !actor.IsManager() {
		return errors.NewAppError(errors.ErrForbidden, "Only managers can delete users", nil)
	}
	if id == actor.UserID {
		return errors.NewAppError(errors.ErrInvalidInput, "You cannot delete your own account", nil)
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.NewAppError(errors.ErrGetFailed, failed, err)
	}
	if user == nil {
		return errors.NewAppError(errors.ErrNotFound, "User not found", nil)
	}

	if appErr := s.sessions.RevokeAllForUser(ctx, id); appErr != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, failed, appErr)
	}
	if appErr := s.blocks.ClearAllForUser(ctx, id); appErr != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, failed, appErr)
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, failed, err)
	}
	if !deleted {
		return errors.NewAppError(errors.ErrNotFound, "User not found", nil)
	}

	logger.Info("AccountService:Delete", "user_id", id.String(), "deleted_by", actor.UserID.String())
	return nil
}
