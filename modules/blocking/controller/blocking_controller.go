package controller

import (
	"fmt"

	"appointment-scheduler/core/controller"
	"appointment-scheduler/core/errors"
	"appointment-scheduler/core/params"
	"appointment-scheduler/core/utils"
	"appointment-scheduler/modules/blocking/dto"
	"appointment-scheduler/modules/blocking/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type BlockingController struct {
	controller.BaseController
	BlockingService service.BlockingServiceInterface
}

func NewBlockingController(svc service.BlockingServiceInterface) *BlockingController {
	return &BlockingController{
		BaseController:  controller.NewBaseController(),
		BlockingService: svc,
	}
}

func (c *BlockingController) currentUserID(ctx echo.Context) (uuid.UUID, error) {
	claims, ok := utils.GetClaims(ctx)
	if !ok {
		return uuid.Nil, c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}
	return claims.UserID, nil
}

func (c *BlockingController) targetUserID(ctx echo.Context) (uuid.UUID, error) {
	raw := ctx.Param("userId")
	if raw == "" {
		return uuid.Nil, c.BadRequest(errors.ErrInvalidInput, "User ID is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, c.BadRequest(errors.ErrInvalidInput, "Invalid user ID")
	}
	return id, nil
}

// GetMyBlockedUsers handles GET /blocking/blocked
// @Summary List users blocked by the current user
// @Tags Blocking
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} controller.SuccessResponse{data=[]dto.BlockListItemResponse}
// @Failure 401 {object} controller.ErrorResponse
// @Router /blocking/blocked [get]
func (c *BlockingController) GetMyBlockedUsers(ctx echo.Context) error {
	userID, err := c.currentUserID(ctx)
	if err != nil {
		return err
	}

	page, appErr := c.BlockingService.ListBlocked(ctx.Request().Context(), userID, *params.NewQueryParams(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.PaginatedResponse(ctx, page.Items, page.Pagination, "Blocked users retrieved successfully")
}

// BlockUser handles POST /blocking/block
// @Summary Block a user
// @Tags Blocking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.BlockUserRequest true "User to block"
// @Success 201 {object} controller.SuccessResponse{data=dto.BlockResponse}
// @Failure 400 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Failure 409 {object} controller.ErrorResponse
// @Router /blocking/block [post]
func (c *BlockingController) BlockUser(ctx echo.Context) error {
	userID, err := c.currentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.BlockUserRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, appErr := c.BlockingService.Block(ctx.Request().Context(), userID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.CreatedResponse(ctx, result, fmt.Sprintf("%s has been blocked successfully", result.BlockedUser.Name))
}

// UnblockUser handles DELETE /blocking/unblock/:userId
// @Summary Unblock a user
// @Tags Blocking
// @Security BearerAuth
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} controller.SuccessResponse{data=dto.UnblockResponse}
// @Failure 404 {object} controller.ErrorResponse
// @Router /blocking/unblock/{userId} [delete]
func (c *BlockingController) UnblockUser(ctx echo.Context) error {
	userID, err := c.currentUserID(ctx)
	if err != nil {
		return err
	}
	targetID, err := c.targetUserID(ctx)
	if err != nil {
		return err
	}

	result, appErr := c.BlockingService.Unblock(ctx.Request().Context(), userID, targetID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, fmt.Sprintf("%s has been unblocked successfully", result.UnblockedUser.Name))
}

// CheckIfUserBlocked handles GET /blocking/check/:userId
// @Summary Block status between the current user and another user
// @Tags Blocking
// @Security BearerAuth
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} controller.SuccessResponse{data=dto.BlockStatusResponse}
// @Failure 404 {object} controller.ErrorResponse
// @Router /blocking/check/{userId} [get]
func (c *BlockingController) CheckIfUserBlocked(ctx echo.Context) error {
	userID, err := c.currentUserID(ctx)
	if err != nil {
		return err
	}
	targetID, err := c.targetUserID(ctx)
	if err != nil {
		return err
	}

	result, appErr := c.BlockingService.CheckStatus(ctx.Request().Context(), userID, targetID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Block status retrieved successfully")
}

// GetUsersWhoBlockedMe handles GET /blocking/blocked-by
// @Summary List users who blocked the current user
// @Tags Blocking
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} controller.SuccessResponse{data=[]dto.BlockListItemResponse}
// @Router /blocking/blocked-by [get]
func (c *BlockingController) GetUsersWhoBlockedMe(ctx echo.Context) error {
	userID, err := c.currentUserID(ctx)
	if err != nil {
		return err
	}

	page, appErr := c.BlockingService.ListBlockers(ctx.Request().Context(), userID, *params.NewQueryParams(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.PaginatedResponse(ctx, page.Items, page.Pagination, "Users who blocked you retrieved successfully")
}

// GetBlockingStats handles GET /blocking/stats
// @Summary Block counts for the current user
// @Tags Blocking
// @Security BearerAuth
// @Produce json
// @Success 200 {object} controller.SuccessResponse{data=dto.BlockStatsResponse}
// @Router /blocking/stats [get]
func (c *BlockingController) GetBlockingStats(ctx echo.Context) error {
	userID, err := c.currentUserID(ctx)
	if err != nil {
		return err
	}

	stats, appErr := c.BlockingService.Stats(ctx.Request().Context(), userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, stats, "Blocking statistics retrieved successfully")
}
