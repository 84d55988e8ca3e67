package controller

import (
	"appointment-scheduler/core/controller"
	"appointment-scheduler/core/errors"
	"appointment-scheduler/core/utils"
	"appointment-scheduler/modules/auth/dto"
	"appointment-scheduler/modules/auth/service"
	"appointment-scheduler/modules/auth/validator"

	"github.com/labstack/echo/v4"
)

type AuthController struct {
	controller.BaseController
	AuthService service.AuthServiceInterface
}

func NewAuthController(authService service.AuthServiceInterface) *AuthController {
	return &AuthController{
		BaseController: controller.NewBaseController(),
		AuthService:    authService,
	}
}

// Register handles POST /auth/register
// @Summary Register a user
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User details"
// @Success 201 {object} controller.SuccessResponse
// @Failure 400 {object} controller.ErrorResponse
// @Failure 409 {object} controller.ErrorResponse
// @Router /auth/register [post]
func (controller *AuthController) Register(c echo.Context) error {
	requestData := new(dto.RegisterRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data")
	}

	validationResult := validator.ValidateRegisterRequest(requestData)
	if validationResult.HasError() {
		return controller.BadRequest(errors.ErrInvalidInput, validationResult.Message(), validationResult.Errors)
	}

	user, err := controller.AuthService.Register(c.Request().Context(), requestData)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	return controller.CreatedResponse(c, user, "User registered successfully")
}

// Login handles POST /auth/login
// @Summary Log in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} controller.SuccessResponse{data=dto.LoginResponse}
// @Failure 400 {object} controller.ErrorResponse
// @Failure 401 {object} controller.ErrorResponse
// @Router /auth/login [post]
func (controller *AuthController) Login(c echo.Context) error {
	requestData := new(dto.LoginRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data")
	}

	validationResult := validator.ValidateLoginRequest(requestData)
	if validationResult.HasError() {
		return controller.BadRequest(errors.ErrInvalidInput, validationResult.Message())
	}

	loginResponse, err := controller.AuthService.Login(c.Request().Context(), requestData)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	return controller.SuccessResponse(c, loginResponse, "Login successful")
}

// Logout handles POST /auth/logout
// @Summary Revoke the current token
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} controller.SuccessResponse
// @Failure 401 {object} controller.ErrorResponse
// @Router /auth/logout [post]
func (controller *AuthController) Logout(c echo.Context) error {
	token := utils.GetTokenFromHeader(c)
	if token == "" {
		return controller.Unauthorized(errors.ErrMissingAuthorizationHeader, "Access denied. No token provided.")
	}

	if err := controller.AuthService.Logout(c.Request().Context(), token); err != nil {
		return controller.ErrorResponse(c, err)
	}

	return controller.SuccessResponse(c, nil, "Logout successful")
}
