package controller

import (
	"appointment-scheduler/core/controller"
	"appointment-scheduler/core/errors"
	"appointment-scheduler/core/params"
	"appointment-scheduler/core/utils"
	"appointment-scheduler/modules/notification/dto"
	"appointment-scheduler/modules/notification/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type NotificationController struct {
	service service.NotificationServiceInterface
	controller.BaseController
}

func NewNotificationController(service service.NotificationServiceInterface) *NotificationController {
	return &NotificationController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

func (c *NotificationController) currentUserID(ctx echo.Context) (uuid.UUID, error) {
	claims, ok := utils.GetClaims(ctx)
	if !ok {
		return uuid.Nil, c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}
	return claims.UserID, nil
}

// GetMyNotifications handles GET /notifications
// @Summary List notifications of the current user
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param unread query bool false "Only unread notifications"
// @Success 200 {object} controller.SuccessResponse{data=[]dto.NotificationResponse}
// @Failure 401 {object} controller.ErrorResponse
// @Router /notifications [get]
func (c *NotificationController) GetMyNotifications(ctx echo.Context) error {
	userID, err := c.currentUserID(ctx)
	if err != nil {
		return err
	}

	unreadOnly := ctx.QueryParam("unread") == "true"
	page, appErr := c.service.GetMyNotifications(ctx.Request().Context(), userID, *params.NewQueryParams(ctx), unreadOnly)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.PaginatedResponse(ctx, page.Items, page.Pagination, "Notifications retrieved successfully")
}

// MarkAsRead handles PUT /notifications/mark-read
// @Summary Mark notifications as read
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.MarkAsReadRequest true "Notification IDs"
// @Success 200 {object} controller.SuccessResponse{data=dto.MarkAsReadResponse}
// @Failure 400 {object} controller.ErrorResponse
// @Failure 401 {object} controller.ErrorResponse
// @Router /notifications/mark-read [put]
func (c *NotificationController) MarkAsRead(ctx echo.Context) error {
	userID, err := c.currentUserID(ctx)
	if err != nil {
		return err
	}

	req := new(dto.MarkAsReadRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, appErr := c.service.MarkAsRead(ctx.Request().Context(), userID, req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Marked as read successfully")
}

// MarkAllAsRead handles PUT /notifications/mark-all-read
// @Summary Mark every notification as read
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Success 200 {object} controller.SuccessResponse{data=dto.MarkAsReadResponse}
// @Failure 401 {object} controller.ErrorResponse
// @Router /notifications/mark-all-read [put]
func (c *NotificationController) MarkAllAsRead(ctx echo.Context) error {
	userID, err := c.currentUserID(ctx)
	if err != nil {
		return err
	}

	result, appErr := c.service.MarkAllAsRead(ctx.Request().Context(), userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Marked all as read successfully")
}

// CountUnread handles GET /notifications/unread-count
// @Summary Count unread notifications
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Success 200 {object} controller.SuccessResponse{data=dto.UnreadCountResponse}
// @Failure 401 {object} controller.ErrorResponse
// @Router /notifications/unread-count [get]
func (c *NotificationController) CountUnread(ctx echo.Context) error {
	userID, err := c.currentUserID(ctx)
	if err != nil {
		return err
	}

	result, appErr := c.service.CountUnread(ctx.Request().Context(), userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Unread count retrieved")
}
