package service

import (
	"context"

	"appointment-scheduler/core/constants"
	coreDto "appointment-scheduler/core/dto"
	"appointment-scheduler/core/errors"
	"appointment-scheduler/core/logger"
	"appointment-scheduler/core/params"
	"appointment-scheduler/modules/notification/dto"
	"appointment-scheduler/modules/notification/entity"
	"appointment-scheduler/modules/notification/mapper"
	"appointment-scheduler/modules/notification/repository"

	"github.com/google/uuid"
)

type NotificationServiceInterface interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message, kind string, data map[string]any)
	GetMyNotifications(ctx context.Context, userID uuid.UUID, params params.QueryParams, unreadOnly bool) (*coreDto.Page[dto.NotificationResponse], *errors.AppError)
	MarkAsRead(ctx context.Context, userID uuid.UUID, req *dto.MarkAsReadRequest) (*dto.MarkAsReadResponse, *errors.AppError)
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (*dto.MarkAsReadResponse, *errors.AppError)
	CountUnread(ctx context.Context, userID uuid.UUID) (*dto.UnreadCountResponse, *errors.AppError)
}

type NotificationService struct {
	repo repository.NotificationRepositoryInterface
}

func NewNotificationService(repo repository.NotificationRepositoryInterface) *NotificationService {
	return &NotificationService{repo: repo}
}

// Notify stores an in-app notification. Failures are logged and never reach the caller.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, title, message, kind string, data map[string]any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.DefaultRequestTimeout)
	defer cancel()

	n := &entity.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    kind,
		Data:    entity.JSONMap(data),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		logger.Error("NotificationService:Notify", "user_id", userID.String(), "type", kind, "error", err)
	}
}

func (s *NotificationService) GetMyNotifications(ctx context.Context, userID uuid.UUID, params params.QueryParams, unreadOnly bool) (*coreDto.Page[dto.NotificationResponse], *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	result, err := s.repo.GetByUserID(ctx, userID, params, unreadOnly)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get notifications", err)
	}
	return &coreDto.Page[dto.NotificationResponse]{
		Items:      mapper.ToNotificationResponses(result.Items),
		Pagination: coreDto.NewPagination(result.PageNumber, result.PageSize, result.TotalItems),
	}, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID uuid.UUID, req *dto.MarkAsReadRequest) (*dto.MarkAsReadResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if len(req.IDs) == 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Notification IDs are required", nil)
	}
	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid notification ID: "+raw, nil)
		}
		ids = append(ids, id)
	}

	updated, err := s.repo.MarkAsRead(ctx, userID, ids)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to mark as read", err)
	}
	return &dto.MarkAsReadResponse{Updated: updated}, nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (*dto.MarkAsReadResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	updated, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to mark all as read", err)
	}
	logger.Info("NotificationService:MarkAllAsRead", "user_id", userID.String(), "updated", updated)
	return &dto.MarkAsReadResponse{Updated: updated}, nil
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (*dto.UnreadCountResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to count unread", err)
	}
	return &dto.UnreadCountResponse{Count: count}, nil
}
