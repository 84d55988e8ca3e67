package service

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"appointment-scheduler/core/constants"
	"appointment-scheduler/core/database"
	coreDto "appointment-scheduler/core/dto"
	"appointment-scheduler/core/errors"
	"appointment-scheduler/core/logger"
	"appointment-scheduler/core/params"
	"appointment-scheduler/modules/blocking/dto"
	"appointment-scheduler/modules/blocking/entity"
	"appointment-scheduler/modules/blocking/mapper"
	"appointment-scheduler/modules/blocking/repository"
	userDto "appointment-scheduler/modules/user/dto"
	userEntity "appointment-scheduler/modules/user/entity"
	userMapper "appointment-scheduler/modules/user/mapper"

	"github.com/google/uuid"
)

// UserLookup is the part of the user directory the ledger needs.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*userEntity.User, *errors.AppError)
}

type BlockingServiceInterface interface {
	Block(ctx context.Context, blockerID uuid.UUID, req *dto.BlockUserRequest) (*dto.BlockResponse, *errors.AppError)
	Unblock(ctx context.Context, blockerID, blockedID uuid.UUID) (*dto.UnblockResponse, *errors.AppError)
	ListBlocked(ctx context.Context, userID uuid.UUID, params params.QueryParams) (*coreDto.Page[dto.BlockListItemResponse], *errors.AppError)
	ListBlockers(ctx context.Context, userID uuid.UUID, params params.QueryParams) (*coreDto.Page[dto.BlockListItemResponse], *errors.AppError)
	CheckStatus(ctx context.Context, actorID, targetID uuid.UUID) (*dto.BlockStatusResponse, *errors.AppError)
	Stats(ctx context.Context, userID uuid.UUID) (*dto.BlockStatsResponse, *errors.AppError)
	IsBlocked(ctx context.Context, blockerID, blockedID uuid.UUID) (bool, *errors.AppError)
	BlockedAmong(ctx context.Context, userID uuid.UUID, others []uuid.UUID) ([]uuid.UUID, *errors.AppError)
	ClearAllForUser(ctx context.Context, userID uuid.UUID) *errors.AppError
}

type BlockingService struct {
	repo  repository.BlockingRepositoryInterface
	users UserLookup
	now   func() time.Time
}

func NewBlockingService(repo repository.BlockingRepositoryInterface, users UserLookup) *BlockingService {
	return &BlockingService{repo: repo, users: users, now: time.Now}
}

func (s *BlockingService) Block(ctx context.Context, blockerID uuid.UUID, req *dto.BlockUserRequest) (*dto.BlockResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if strings.TrimSpace(req.UserID) == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "User ID is required", nil)
	}
	blockedID, err := uuid.Parse(strings.TrimSpace(req.UserID))
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid user ID", err)
	}

	edge, err := entity.NewBlockedUser(blockerID, blockedID, req.Reason)
	if err != nil {
		if stdErrors.Is(err, entity.ErrSelfBlock) {
			return nil, errors.NewAppError(errors.ErrConflict, "You cannot block yourself", nil)
		}
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Reason cannot exceed 500 characters", nil)
	}

	target, appErr := s.users.GetByID(ctx, blockedID)
	if appErr != nil {
		return nil, appErr
	}
	if target == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "User not found", nil)
	}

	alreadyBlocked := errors.NewAppError(errors.ErrAlreadyExists, fmt.Sprintf("%s is already blocked", target.FullName()), nil)

	blocked, err := s.repo.IsBlocked(ctx, blockerID, blockedID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Something went wrong while blocking user", err)
	}
	if blocked {
		return nil, alreadyBlocked
	}

	created, err := s.repo.Create(ctx, edge)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, alreadyBlocked
		}
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Something went wrong while blocking user", err)
	}

	logger.Info("BlockingService:Block", "blocker_id", blockerID.String(), "blocked_id", blockedID.String())

	return &dto.BlockResponse{
		BlockID:     created.ID,
		BlockedUser: brief(target),
		Reason:      created.Reason,
		BlockedAt:   created.CreatedAt,
	}, nil
}

func (s *BlockingService) Unblock(ctx context.Context, blockerID, blockedID uuid.UUID) (*dto.UnblockResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	target, appErr := s.users.GetByID(ctx, blockedID)
	if appErr != nil {
		return nil, appErr
	}
	if target == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "User not found", nil)
	}

	removed, err := s.repo.Delete(ctx, blockerID, blockedID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrDeleteFailed, "Something went wrong while unblocking user", err)
	}
	if !removed {
		return nil, errors.NewAppError(errors.ErrNotFound, fmt.Sprintf("%s is not blocked", target.FullName()), nil)
	}

	logger.Info("BlockingService:Unblock", "blocker_id", blockerID.String(), "blocked_id", blockedID.String())

	return &dto.UnblockResponse{UnblockedUser: brief(target), UnblockedAt: s.now()}, nil
}

func (s *BlockingService) ListBlocked(ctx context.Context, userID uuid.UUID, params params.QueryParams) (*coreDto.Page[dto.BlockListItemResponse], *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	result, err := s.repo.ListBlockedBy(ctx, userID, params)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Something went wrong while retrieving blocked users", err)
	}
	return toPage(result), nil
}

func (s *BlockingService) ListBlockers(ctx context.Context, userID uuid.UUID, params params.QueryParams) (*coreDto.Page[dto.BlockListItemResponse], *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	result, err := s.repo.ListBlockersOf(ctx, userID, params)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Something went wrong while retrieving users who blocked you", err)
	}
	return toPage(result), nil
}

func (s *BlockingService) CheckStatus(ctx context.Context, actorID, targetID uuid.UUID) (*dto.BlockStatusResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	target, appErr := s.users.GetByID(ctx, targetID)
	if appErr != nil {
		return nil, appErr
	}
	if target == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "User not found", nil)
	}

	byYou, appErr := s.IsBlocked(ctx, actorID, targetID)
	if appErr != nil {
		return nil, appErr
	}
	byThem, appErr := s.IsBlocked(ctx, targetID, actorID)
	if appErr != nil {
		return nil, appErr
	}

	return &dto.BlockStatusResponse{
		User: brief(target),
		Blocked: dto.BlockFlags{
			ByYou:                  byYou,
			ByThem:                 byThem,
			CanScheduleAppointment: !byYou && !byThem,
		},
	}, nil
}

func (s *BlockingService) Stats(ctx context.Context, userID uuid.UUID) (*dto.BlockStatsResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	stats, err := s.repo.Stats(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Something went wrong while getting blocking statistics", err)
	}
	return &dto.BlockStatsResponse{UsersBlocked: stats.UsersBlocked, BlockedByUsers: stats.BlockedByUsers}, nil
}

// IsBlocked reports whether the directed edge blocker -> blocked exists.
func (s *BlockingService) IsBlocked(ctx context.Context, blockerID, blockedID uuid.UUID) (bool, *errors.AppError) {
	blocked, err := s.repo.IsBlocked(ctx, blockerID, blockedID)
	if err != nil {
		return false, errors.NewAppError(errors.ErrGetFailed, "Something went wrong while checking block status", err)
	}
	return blocked, nil
}

// BlockedAmong returns the members of others that have a block edge with userID in either direction.
func (s *BlockingService) BlockedAmong(ctx context.Context, userID uuid.UUID, others []uuid.UUID) ([]uuid.UUID, *errors.AppError) {
	ids, err := s.repo.BlockedEitherWay(ctx, userID, others)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Error checking blocked status", err)
	}
	return ids, nil
}

func (s *BlockingService) ClearAllForUser(ctx context.Context, userID uuid.UUID) *errors.AppError {
	if err := s.repo.ClearAllForUser(ctx, userID); err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "Error clearing blocks for user", err)
	}
	return nil
}

func toPage(result *entity.PaginatedBlockListEntity) *coreDto.Page[dto.BlockListItemResponse] {
	return &coreDto.Page[dto.BlockListItemResponse]{
		Items:      mapper.ToBlockListResponse(result.Items),
		Pagination: coreDto.NewPagination(result.PageNumber, result.PageSize, result.TotalItems),
	}
}

func brief(u *userEntity.User) userDto.UserSummary {
	return *userMapper.ToUserSummary(u)
}
