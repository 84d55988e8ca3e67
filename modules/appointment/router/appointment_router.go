package router

import (
	"appointment-scheduler/core/middleware"
	"appointment-scheduler/modules/appointment/controller"

	"github.com/labstack/echo/v4"
)

type AppointmentRouter struct {
	AppointmentController *controller.AppointmentController
}

func NewAppointmentRouter(appointmentController *controller.AppointmentController) *AppointmentRouter {
	return &AppointmentRouter{AppointmentController: appointmentController}
}

func (r *AppointmentRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	appointments := g.Group("/appointments", mw.AuthMiddleware())

	appointments.GET("", r.AppointmentController.GetAllAppointments)
	appointments.POST("", r.AppointmentController.CreateAppointment)

	// static paths before /:id
	appointments.GET("/my-created", r.AppointmentController.GetMyCreatedAppointments)
	appointments.GET("/my-assigned", r.AppointmentController.GetMyAssignedAppointments)
	appointments.GET("/filter", r.AppointmentController.FilterAppointments)
	appointments.GET("/export", r.AppointmentController.ExportAppointments)
	appointments.GET("/users/:userId/created", r.AppointmentController.GetUserCreatedAppointments)
	appointments.GET("/users/:userId/assigned", r.AppointmentController.GetUserAssignedAppointments)

	appointments.GET("/:id", r.AppointmentController.GetAppointmentByID)
	appointments.PUT("/:id", r.AppointmentController.UpdateAppointment)
	appointments.DELETE("/:id", r.AppointmentController.DeleteAppointment)
	appointments.PUT("/:id/accept", r.AppointmentController.AcceptAppointment)
	appointments.PUT("/:id/decline", r.AppointmentController.DeclineAppointment)
	appointments.GET("/:id/status", r.AppointmentController.GetAppointmentStatus)
}
