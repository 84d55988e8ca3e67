package controller

import (
	"strconv"
	"strings"

	"appointment-scheduler/core/controller"
	"appointment-scheduler/core/errors"
	"appointment-scheduler/core/utils"
	"appointment-scheduler/modules/report/service"

	"github.com/labstack/echo/v4"
)

type ReportController struct {
	controller.BaseController
	ReportService service.ReportServiceInterface
}

func NewReportController(svc service.ReportServiceInterface) *ReportController {
	return &ReportController{
		BaseController: controller.NewBaseController(),
		ReportService:  svc,
	}
}

func (c *ReportController) claims(ctx echo.Context) (*utils.TokenClaims, error) {
	claims, ok := utils.GetClaims(ctx)
	if !ok {
		return nil, c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}
	return claims, nil
}

func includeDetails(ctx echo.Context) bool {
	return strings.EqualFold(ctx.QueryParam("includeDetails"), "true")
}

// GetMonthlyMeetingStats handles GET /reports/meetings/monthly
// @Summary Monthly meeting statistics
// @Description Twelve month buckets for the given year, defaulting to the current one
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param year query int false "Year"
// @Success 200 {object} controller.SuccessResponse{data=dto.MonthlyReportResponse}
// @Failure 401 {object} controller.ErrorResponse
// @Router /reports/meetings/monthly [get]
func (c *ReportController) GetMonthlyMeetingStats(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}

	// Unparseable years fall back to the current year.
	year, _ := strconv.Atoi(ctx.QueryParam("year"))

	result, appErr := c.ReportService.Monthly(ctx.Request().Context(), claims, year)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Monthly meeting statistics retrieved successfully")
}

// GetCustomDateRangeReport handles GET /reports/meetings/custom
// @Summary Statistics for a custom date range
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param startDate query string true "Range start"
// @Param endDate query string true "Range end"
// @Success 200 {object} controller.SuccessResponse{data=dto.CustomRangeReportResponse}
// @Failure 400 {object} controller.ErrorResponse
// @Router /reports/meetings/custom [get]
func (c *ReportController) GetCustomDateRangeReport(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}

	result, appErr := c.ReportService.CustomRange(ctx.Request().Context(), claims, ctx.QueryParam("startDate"), ctx.QueryParam("endDate"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Custom date range report retrieved successfully")
}

// GetScheduledMeetingsCount handles GET /reports/meetings/scheduled
// @Summary Scheduled meetings count
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param includeDetails query bool false "Include the matching appointments"
// @Success 200 {object} controller.SuccessResponse{data=dto.ScheduledReportResponse}
// @Router /reports/meetings/scheduled [get]
func (c *ReportController) GetScheduledMeetingsCount(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}

	result, appErr := c.ReportService.Scheduled(ctx.Request().Context(), claims, includeDetails(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Scheduled meetings count retrieved successfully")
}

// GetAttendedMeetingsCount handles GET /reports/meetings/attended
// @Summary Attended meetings statistics
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param timeframe query string false "week, month, quarter or year" default(month)
// @Param includeDetails query bool false "Include the matching appointments"
// @Success 200 {object} controller.SuccessResponse{data=dto.AttendedReportResponse}
// @Failure 400 {object} controller.ErrorResponse
// @Router /reports/meetings/attended [get]
func (c *ReportController) GetAttendedMeetingsCount(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}

	result, appErr := c.ReportService.Attended(ctx.Request().Context(), claims, ctx.QueryParam("timeframe"), includeDetails(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Attended meetings statistics retrieved successfully")
}

// GetUserActivityReport handles GET /reports/users/activity
// @Summary Activity report for a user
// @Description Managers may pass any userId; other users only see themselves
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param userId query string false "User ID"
// @Param timeframe query string false "week, month, quarter or year" default(month)
// @Success 200 {object} controller.SuccessResponse{data=dto.UserActivityReportResponse}
// @Failure 403 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /reports/users/activity [get]
func (c *ReportController) GetUserActivityReport(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}

	result, appErr := c.ReportService.UserActivity(ctx.Request().Context(), claims, ctx.QueryParam("userId"), ctx.QueryParam("timeframe"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "User activity report retrieved successfully")
}

// GetAppointmentStatusSummary handles GET /reports/appointments/status
// @Summary Appointment status summary
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Success 200 {object} controller.SuccessResponse{data=dto.StatusSummaryReportResponse}
// @Router /reports/appointments/status [get]
func (c *ReportController) GetAppointmentStatusSummary(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return err
	}

	result, appErr := c.ReportService.StatusSummary(ctx.Request().Context(), claims)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Appointment status summary retrieved successfully")
}
