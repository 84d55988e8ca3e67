package notification

import (
	"appointment-scheduler/core/database"
	"appointment-scheduler/core/middleware"
	"appointment-scheduler/modules/notification/controller"
	"appointment-scheduler/modules/notification/repository"
	"appointment-scheduler/modules/notification/router"
	"appointment-scheduler/modules/notification/service"

	"github.com/labstack/echo/v4"
)

// Init registers the notification routes and returns the service other modules notify through.
func Init(g *echo.Group, db database.IDatabase, mw *middleware.Middleware) service.NotificationServiceInterface {
	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo)
	ctrl := controller.NewNotificationController(svc)

	router.NewNotificationRouter(ctrl).Register(g, mw)

	return svc
}
