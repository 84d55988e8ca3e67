package controller

import (
	"strings"

	"appointment-scheduler/core/controller"
	"appointment-scheduler/core/errors"
	"appointment-scheduler/core/utils"
	"appointment-scheduler/modules/user/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type UserController struct {
	controller.BaseController
	AccountService service.AccountServiceInterface
}

func NewUserController(svc service.AccountServiceInterface) *UserController {
	return &UserController{
		BaseController: controller.NewBaseController(),
		AccountService: svc,
	}
}

// DeleteUser handles DELETE /users/:id
// @Summary Delete a user account (managers only)
// @Description Ends the user's sessions and clears their block edges before removing the account.
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} controller.SuccessResponse
// @Failure 400 {object} controller.ErrorResponse
// @Failure 403 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /users/{id} [delete]
func (c *UserController) DeleteUser(ctx echo.Context) error {
	claims, ok := utils.GetClaims(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	raw := strings.TrimSpace(ctx.Param("id"))
	if raw == "" {
		return c.BadRequest(errors.ErrInvalidInput, "User ID is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid user ID")
	}

	if appErr := c.AccountService.Delete(ctx.Request().Context(), claims, id); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "User deleted successfully")
}
