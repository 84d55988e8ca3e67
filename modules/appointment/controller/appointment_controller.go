package controller

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"appointment-scheduler/core/controller"
	"appointment-scheduler/core/errors"
	"appointment-scheduler/core/params"
	"appointment-scheduler/core/utils"
	"appointment-scheduler/modules/appointment/dto"
	"appointment-scheduler/modules/appointment/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AppointmentController struct {
	controller.BaseController
	AppointmentService service.AppointmentServiceInterface
}

func NewAppointmentController(svc service.AppointmentServiceInterface) *AppointmentController {
	return &AppointmentController{
		BaseController:     controller.NewBaseController(),
		AppointmentService: svc,
	}
}

func (c *AppointmentController) claims(ctx echo.Context) (*utils.TokenClaims, error) {
	claims, ok := utils.GetClaims(ctx)
	if !ok {
		return nil, c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}
	return claims, nil
}

func (c *AppointmentController) pathID(ctx echo.Context, name, label string) (uuid.UUID, error) {
	raw := strings.TrimSpace(ctx.Param(name))
	if raw == "" {
		return uuid.Nil, c.BadRequest(errors.ErrInvalidInput, label+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, c.BadRequest(errors.ErrInvalidInput, "Invalid "+strings.ToLower(label))
	}
	return id, nil
}

// parseQuery reads the list/filter/export criteria from the query string.
func (c *AppointmentController) parseQuery(ctx echo.Context) (*dto.AppointmentQuery, error) {
	q := &dto.AppointmentQuery{
		Type:           strings.TrimSpace(ctx.QueryParam("type")),
		AttendeeStatus: strings.TrimSpace(ctx.QueryParam("attendeeStatus")),
		ResponseStatus: strings.TrimSpace(ctx.QueryParam("responseStatus")),
		Format:         strings.TrimSpace(ctx.QueryParam("format")),
		Raw:            map[string]string{},
	}
	for k, v := range ctx.QueryParams() {
		if len(v) > 0 {
			q.Raw[k] = v[0]
		}
	}

	var err error
	if q.StartDate, err = utils.ParseOptionalDate(ctx.QueryParam("startDate")); err != nil {
		return nil, c.BadRequest(errors.ErrInvalidInput, "Invalid startDate")
	}
	if q.EndDate, err = utils.ParseOptionalDate(ctx.QueryParam("endDate")); err != nil {
		return nil, c.BadRequest(errors.ErrInvalidInput, "Invalid endDate")
	}

	if raw := strings.TrimSpace(ctx.QueryParam("status")); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				q.Statuses = append(q.Statuses, s)
			}
		}
	}

	if q.MinDuration, err = optionalInt(ctx.QueryParam("minDuration")); err != nil {
		return nil, c.BadRequest(errors.ErrInvalidInput, "Invalid minDuration")
	}
	if q.MaxDuration, err = optionalInt(ctx.QueryParam("maxDuration")); err != nil {
		return nil, c.BadRequest(errors.ErrInvalidInput, "Invalid maxDuration")
	}

	if raw := strings.TrimSpace(ctx.QueryParam("managerId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, c.BadRequest(errors.ErrInvalidInput, "Invalid managerId")
		}
		q.ManagerID = &id
	}
	return q, nil
}

func optionalInt(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// GetAllAppointments handles GET /appointments
// @Summary List appointments visible to the current user
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param startDate query string false "Scheduled on or after"
// @Param endDate query string false "Scheduled on or before"
// @Param status query string false "Status, comma separated"
// @Param type query string false "created or assigned (managers)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} controller.SuccessResponse{data=[]dto.AppointmentResponse}
// @Failure 401 {object} controller.ErrorResponse
// @Router /appointments [get]
func (c *AppointmentController) GetAllAppointments(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}
	q, err := c.parseQuery(ctx)
	if err != nil {
		return err
	}

	page, appErr := c.AppointmentService.List(ctx.Request().Context(), claims, q, *params.NewQueryParams(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.PaginatedResponse(ctx, page.Items, page.Pagination, "Appointments retrieved successfully")
}

// CreateAppointment handles POST /appointments
// @Summary Create an appointment (managers only)
// @Tags Appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateAppointmentRequest true "Appointment"
// @Success 201 {object} controller.SuccessResponse{data=dto.AppointmentResponse}
// @Failure 400 {object} controller.ErrorResponse
// @Failure 403 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /appointments [post]
func (c *AppointmentController) CreateAppointment(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateAppointmentRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, appErr := c.AppointmentService.Create(ctx.Request().Context(), claims, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.CreatedResponse(ctx, result, "Appointment created successfully")
}

// GetAppointmentByID handles GET /appointments/:id
// @Summary Get an appointment
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} controller.SuccessResponse{data=dto.AppointmentResponse}
// @Failure 403 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /appointments/{id} [get]
func (c *AppointmentController) GetAppointmentByID(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}
	id, err := c.pathID(ctx, "id", "Appointment ID")
	if err != nil {
		return err
	}

	result, appErr := c.AppointmentService.Get(ctx.Request().Context(), id, claims)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Appointment retrieved successfully")
}

// UpdateAppointment handles PUT /appointments/:id
// @Summary Update an appointment (owning manager only)
// @Tags Appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.UpdateAppointmentRequest true "Fields to change"
// @Success 200 {object} controller.SuccessResponse{data=dto.AppointmentResponse}
// @Failure 400 {object} controller.ErrorResponse
// @Failure 403 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /appointments/{id} [put]
func (c *AppointmentController) UpdateAppointment(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}
	id, err := c.pathID(ctx, "id", "Appointment ID")
	if err != nil {
		return err
	}

	var req dto.UpdateAppointmentRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, appErr := c.AppointmentService.Update(ctx.Request().Context(), id, claims, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Appointment updated successfully")
}

// DeleteAppointment handles DELETE /appointments/:id
// @Summary Delete an appointment (owning manager only)
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} controller.SuccessResponse
// @Failure 403 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /appointments/{id} [delete]
func (c *AppointmentController) DeleteAppointment(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}
	id, err := c.pathID(ctx, "id", "Appointment ID")
	if err != nil {
		return err
	}

	if appErr := c.AppointmentService.Delete(ctx.Request().Context(), id, claims); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Appointment deleted successfully")
}

// AcceptAppointment handles PUT /appointments/:id/accept
// @Summary Accept an appointment
// @Tags Appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.RespondRequest false "Optional notes"
// @Success 200 {object} controller.SuccessResponse{data=dto.AppointmentResponse}
// @Failure 403 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /appointments/{id}/accept [put]
func (c *AppointmentController) AcceptAppointment(ctx echo.Context) error {
	return c.respond(ctx, c.AppointmentService.Accept, "Appointment accepted successfully")
}

// DeclineAppointment handles PUT /appointments/:id/decline
// @Summary Decline an appointment (developers only)
// @Tags Appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.RespondRequest false "Optional reason"
// @Success 200 {object} controller.SuccessResponse{data=dto.AppointmentResponse}
// @Failure 403 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /appointments/{id}/decline [put]
func (c *AppointmentController) DeclineAppointment(ctx echo.Context) error {
	return c.respond(ctx, c.AppointmentService.Decline, "Appointment declined successfully")
}

type respondFunc func(ctx context.Context, id uuid.UUID, actor *utils.TokenClaims, req *dto.RespondRequest) (*dto.AppointmentResponse, *errors.AppError)

func (c *AppointmentController) respond(ctx echo.Context, fn respondFunc, message string) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}
	id, err := c.pathID(ctx, "id", "Appointment ID")
	if err != nil {
		return err
	}

	var req dto.RespondRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, appErr := fn(ctx.Request().Context(), id, claims, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, message)
}

// GetAppointmentStatus handles GET /appointments/:id/status
// @Summary Attendee response summary of an appointment
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} controller.SuccessResponse{data=dto.StatusSummaryResponse}
// @Failure 403 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /appointments/{id}/status [get]
func (c *AppointmentController) GetAppointmentStatus(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}
	id, err := c.pathID(ctx, "id", "Appointment ID")
	if err != nil {
		return err
	}

	result, appErr := c.AppointmentService.StatusSummary(ctx.Request().Context(), id, claims)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Appointment status retrieved successfully")
}

// GetMyCreatedAppointments handles GET /appointments/my-created
// @Summary Appointments created by the current user
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param startDate query string false "Scheduled on or after"
// @Param endDate query string false "Scheduled on or before"
// @Param status query string false "Status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} controller.SuccessResponse{data=[]dto.AppointmentResponse}
// @Router /appointments/my-created [get]
func (c *AppointmentController) GetMyCreatedAppointments(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}
	q, err := c.parseQuery(ctx)
	if err != nil {
		return err
	}

	page, appErr := c.AppointmentService.MyCreated(ctx.Request().Context(), claims, q, *params.NewQueryParams(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	message := "Created appointments retrieved successfully"
	if !claims.IsManager() {
		message = "No created appointments (only managers can create appointments)"
	}
	return c.PaginatedResponse(ctx, page.Items, page.Pagination, message)
}

// GetMyAssignedAppointments handles GET /appointments/my-assigned
// @Summary Appointments the current user is assigned to
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param startDate query string false "Scheduled on or after"
// @Param endDate query string false "Scheduled on or before"
// @Param status query string false "Status"
// @Param responseStatus query string false "Own response: pending, accepted or declined"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} controller.SuccessResponse{data=[]dto.AppointmentResponse}
// @Router /appointments/my-assigned [get]
func (c *AppointmentController) GetMyAssignedAppointments(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}
	q, err := c.parseQuery(ctx)
	if err != nil {
		return err
	}

	page, appErr := c.AppointmentService.MyAssigned(ctx.Request().Context(), claims, q, *params.NewQueryParams(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.PaginatedResponse(ctx, page.Items, page.Pagination, "Assigned appointments retrieved successfully")
}

// GetUserCreatedAppointments handles GET /appointments/users/:userId/created
// @Summary Appointments created by a user (managers, or the user themself)
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param userId path string true "User ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.UserAppointmentsResponse
// @Failure 403 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /appointments/users/{userId}/created [get]
func (c *AppointmentController) GetUserCreatedAppointments(ctx echo.Context) error {
	return c.userAppointments(ctx, c.AppointmentService.ListCreatedBy, "Created appointments retrieved successfully for %s")
}

// GetUserAssignedAppointments handles GET /appointments/users/:userId/assigned
// @Summary Appointments a user is assigned to (managers, or the user themself)
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param userId path string true "User ID"
// @Param responseStatus query string false "Response status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.UserAppointmentsResponse
// @Failure 403 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /appointments/users/{userId}/assigned [get]
func (c *AppointmentController) GetUserAssignedAppointments(ctx echo.Context) error {
	return c.userAppointments(ctx, c.AppointmentService.ListAssignedTo, "Assigned appointments retrieved successfully for %s")
}

type userAppointmentsFunc func(ctx context.Context, actor *utils.TokenClaims, targetID uuid.UUID, q *dto.AppointmentQuery, p params.QueryParams) (*dto.UserAppointments, *errors.AppError)

func (c *AppointmentController) userAppointments(ctx echo.Context, fn userAppointmentsFunc, messageFormat string) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}
	targetID, err := c.pathID(ctx, "userId", "User ID")
	if err != nil {
		return err
	}
	q, err := c.parseQuery(ctx)
	if err != nil {
		return err
	}

	result, appErr := fn(ctx.Request().Context(), claims, targetID, q, *params.NewQueryParams(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return ctx.JSON(http.StatusOK, &dto.UserAppointmentsResponse{
		Success:    true,
		Message:    fmt.Sprintf(messageFormat, result.User.Name),
		Data:       result.Page.Items,
		User:       result.User,
		Pagination: result.Page.Pagination,
	})
}

// FilterAppointments handles GET /appointments/filter
// @Summary Multi-criteria appointment filter with summary
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param startDate query string false "Scheduled on or after"
// @Param endDate query string false "Scheduled on or before"
// @Param status query string false "Statuses, comma separated"
// @Param minDuration query int false "Minimum duration"
// @Param maxDuration query int false "Maximum duration"
// @Param managerId query string false "Manager ID"
// @Param attendeeStatus query string false "Any attendee with this status"
// @Param type query string false "created or assigned (managers)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.FilteredAppointmentsResponse
// @Router /appointments/filter [get]
func (c *AppointmentController) FilterAppointments(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}
	q, err := c.parseQuery(ctx)
	if err != nil {
		return err
	}

	result, appErr := c.AppointmentService.Filter(ctx.Request().Context(), claims, q, *params.NewQueryParams(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return ctx.JSON(http.StatusOK, &dto.FilteredAppointmentsResponse{
		Success:    true,
		Message:    "Filtered appointments retrieved successfully",
		Data:       result.Page.Items,
		Summary:    result.Summary,
		Filters:    result.Filters,
		Pagination: result.Page.Pagination,
	})
}

// ExportAppointments handles GET /appointments/export
// @Summary Export appointments as CSV or JSON
// @Tags Appointments
// @Security BearerAuth
// @Produce text/csv
// @Produce json
// @Param format query string false "csv, json or excel"
// @Param startDate query string false "Scheduled on or after"
// @Param endDate query string false "Scheduled on or before"
// @Param status query string false "Statuses, comma separated"
// @Param managerId query string false "Manager ID"
// @Success 200 {file} file
// @Failure 400 {object} controller.ErrorResponse
// @Failure 501 {object} controller.ErrorResponse
// @Router /appointments/export [get]
func (c *AppointmentController) ExportAppointments(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}
	q, err := c.parseQuery(ctx)
	if err != nil {
		return err
	}

	file, appErr := c.AppointmentService.Export(ctx.Request().Context(), claims, q)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	return ctx.Blob(http.StatusOK, file.ContentType, file.Body)
}
