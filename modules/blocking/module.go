package blocking

import (
	"appointment-scheduler/core/database"
	"appointment-scheduler/core/middleware"
	"appointment-scheduler/modules/blocking/controller"
	"appointment-scheduler/modules/blocking/repository"
	"appointment-scheduler/modules/blocking/router"
	"appointment-scheduler/modules/blocking/service"

	"github.com/labstack/echo/v4"
)

// Init registers the blocking routes and returns the ledger for the appointment module.
func Init(g *echo.Group, db database.IDatabase, mw *middleware.Middleware, users service.UserLookup) service.BlockingServiceInterface {
	repo := repository.NewBlockingRepository(db)
	svc := service.NewBlockingService(repo, users)
	ctrl := controller.NewBlockingController(svc)

	router.NewBlockingRouter(ctrl).Register(g, mw)

	return svc
}
