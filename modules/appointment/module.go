package appointment

import (
	"appointment-scheduler/core/database"
	"appointment-scheduler/core/middleware"
	"appointment-scheduler/modules/appointment/controller"
	"appointment-scheduler/modules/appointment/repository"
	"appointment-scheduler/modules/appointment/router"
	"appointment-scheduler/modules/appointment/service"

	"github.com/labstack/echo/v4"
)

func Init(g *echo.Group, db database.IDatabase, mw *middleware.Middleware, users service.UserDirectory, blocks service.BlockChecker, notifier service.Notifier) service.AppointmentServiceInterface {
	repo := repository.NewAppointmentRepository(db)
	svc := service.NewAppointmentService(repo, users, blocks, notifier)
	ctrl := controller.NewAppointmentController(svc)

	router.NewAppointmentRouter(ctrl).Register(g, mw)

	return svc
}
