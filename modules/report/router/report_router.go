package router

import (
	"appointment-scheduler/core/middleware"
	"appointment-scheduler/modules/report/controller"

	"github.com/labstack/echo/v4"
)

type ReportRouter struct {
	ReportController *controller.ReportController
}

func NewReportRouter(reportController *controller.ReportController) *ReportRouter {
	return &ReportRouter{ReportController: reportController}
}

func (r *ReportRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	reports := g.Group("/reports", mw.AuthMiddleware())

	meetings := reports.Group("/meetings")
	meetings.GET("/monthly", r.ReportController.GetMonthlyMeetingStats)
	meetings.GET("/custom", r.ReportController.GetCustomDateRangeReport)
	meetings.GET("/scheduled", r.ReportController.GetScheduledMeetingsCount)
	meetings.GET("/attended", r.ReportController.GetAttendedMeetingsCount)

	reports.GET("/users/activity", r.ReportController.GetUserActivityReport)
	reports.GET("/appointments/status", r.ReportController.GetAppointmentStatusSummary)
}
