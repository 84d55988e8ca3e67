package service

import (
	"context"
	stdErrors "errors"

	"appointment-scheduler/core/constants"
	"appointment-scheduler/core/errors"
	"appointment-scheduler/core/logger"
	"appointment-scheduler/core/utils"
	"appointment-scheduler/modules/auth/dto"
	userDto "appointment-scheduler/modules/user/dto"
	userMapper "appointment-scheduler/modules/user/mapper"
	userService "appointment-scheduler/modules/user/service"

	"github.com/google/uuid"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*userDto.UserResponse, *errors.AppError)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, *errors.AppError)
	Logout(ctx context.Context, token string) *errors.AppError
	Authenticate(ctx context.Context, token string) (*utils.TokenClaims, *errors.AppError)
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) *errors.AppError
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

type AuthService struct {
	users  userService.UserServiceInterface
	tokens *TokenStore
	issuer *utils.TokenIssuer
}

func NewAuthService(users userService.UserServiceInterface, tokens *TokenStore, issuer *utils.TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens, issuer: issuer}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*userDto.UserResponse, *errors.AppError) {
	exists, appErr := s.users.EmailExists(ctx, req.Email)
	if appErr != nil {
		return nil, appErr
	}
	if exists {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "User with this email already exists", nil)
	}

	created, appErr := s.users.Create(ctx, &userDto.CreateUserInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		Phone:      req.Phone,
		Department: req.Department,
	})
	if appErr != nil {
		if appErr.Code == errors.ErrAlreadyExists {
			return nil, errors.NewAppError(errors.ErrAlreadyExists, "User with this email already exists", appErr)
		}
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Something went wrong during registration", appErr)
	}

	logger.Info("AuthService:Register", "user_id", created.ID.String())
	return userMapper.ToUserResponse(created), nil
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	user, appErr := s.users.GetByEmail(ctx, req.Email)
	if appErr != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Something went wrong during login", appErr)
	}
	if user == nil || !utils.ComparePassword(user.Password, req.Password) {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid credentials", nil)
	}

	token, expiresAt, err := s.issuer.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Something went wrong during login", err)
	}
	if err := s.tokens.Save(ctx, token, user.ID, expiresAt); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Something went wrong during login", err)
	}

	logger.Info("AuthService:Login", "user_id", user.ID.String())
	return &dto.LoginResponse{
		User:      userMapper.ToUserResponse(user),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) *errors.AppError {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if err := s.tokens.Revoke(ctx, token); err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "Something went wrong during logout", err)
	}
	return nil
}

// Authenticate accepts a token only if it is still stored and its signature and expiry verify.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*utils.TokenClaims, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	owner, err := s.tokens.Lookup(ctx, token)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Something went wrong with authentication", err)
	}
	if owner == uuid.Nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid or expired token", nil)
	}

	claims, err := s.issuer.ValidateAndParseToken(token)
	if err != nil {
		if stdErrors.Is(err, utils.ErrTokenExpired) {
			return nil, errors.NewAppError(errors.ErrTokenExpired, "Token expired", nil)
		}
		return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "Invalid token", nil)
	}
	if claims.UserID != owner {
		return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "Invalid token", nil)
	}
	return claims, nil
}

// RevokeAllForUser ends every session of the user.
func (s *AuthService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) *errors.AppError {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	n, err := s.tokens.RevokeUser(ctx, userID)
	if err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "Something went wrong while revoking sessions", err)
	}
	logger.Info("AuthService:RevokeAllForUser", "user_id", userID.String(), "tokens", n)
	return nil
}

func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.tokens.PurgeExpired(ctx)
}
