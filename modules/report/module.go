package report

import (
	"appointment-scheduler/core/database"
	"appointment-scheduler/core/middleware"
	"appointment-scheduler/modules/report/controller"
	"appointment-scheduler/modules/report/repository"
	"appointment-scheduler/modules/report/router"
	"appointment-scheduler/modules/report/service"

	"github.com/labstack/echo/v4"
)

func Init(g *echo.Group, db database.IDatabase, mw *middleware.Middleware, users service.UserLookup) {
	repo := repository.NewReportRepository(db)
	svc := service.NewReportService(repo, users)
	ctrl := controller.NewReportController(svc)

	router.NewReportRouter(ctrl).Register(g, mw)
}
