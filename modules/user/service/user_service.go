package service

import (
	"context"
	"strings"

	"appointment-scheduler/core/constants"
	"appointment-scheduler/core/database"
	"appointment-scheduler/core/errors"
	"appointment-scheduler/core/logger"
	"appointment-scheduler/core/utils"
	"appointment-scheduler/modules/user/dto"
	"appointment-scheduler/modules/user/entity"
	"appointment-scheduler/modules/user/repository"

	"github.com/google/uuid"
)

// UserServiceInterface is the user directory shared by the other modules.
type UserServiceInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, *errors.AppError)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.User, *errors.AppError)
	GetByEmail(ctx context.Context, email string) (*entity.User, *errors.AppError)
	EmailExists(ctx context.Context, email string) (bool, *errors.AppError)
	Create(ctx context.Context, input *dto.CreateUserInput) (*entity.User, *errors.AppError)
}

type UserService struct {
	repo repository.UserRepositoryInterface
}

func NewUserService(repo repository.UserRepositoryInterface) UserServiceInterface {
	return &UserService{repo: repo}
}

// GetByID returns nil, nil when the user does not exist.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get user", err)
	}
	return user, nil
}

// GetByIDs returns the existing users keyed by id. Missing ids are absent from the map.
func (s *UserService) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.User, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	users, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get users", err)
	}

	result := make(map[uuid.UUID]*entity.User, len(users))
	for i := range users {
		result[users[i].ID] = &users[i]
	}
	return result, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*entity.User, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	user, err := s.repo.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get user", err)
	}
	return user, nil
}

func (s *UserService) EmailExists(ctx context.Context, email string) (bool, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	exists, err := s.repo.ExistsByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return false, errors.NewAppError(errors.ErrGetFailed, "Failed to check email", err)
	}
	return exists, nil
}

// Create trims the input, lower-cases the email and stores a bcrypt hash of the password.
func (s *UserService) Create(ctx context.Context, input *dto.CreateUserInput) (*entity.User, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to hash password", err)
	}

	user := &entity.User{
		FirstName:  strings.TrimSpace(input.FirstName),
		LastName:   strings.TrimSpace(input.LastName),
		Email:      utils.NormalizeEmail(input.Email),
		Password:   hashed,
		Role:       strings.TrimSpace(input.Role),
		Phone:      optional(input.Phone),
		Department: optional(input.Department),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errors.NewAppError(errors.ErrAlreadyExists, "Email already exists", err)
		}
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create user", err)
	}

	logger.Info("UserService:Create", "user_id", created.ID.String(), "role", created.Role)
	return created, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
