package user

import (
	"appointment-scheduler/core/database"
	"appointment-scheduler/core/middleware"
	"appointment-scheduler/modules/user/controller"
	"appointment-scheduler/modules/user/repository"
	"appointment-scheduler/modules/user/router"
	"appointment-scheduler/modules/user/service"

	"github.com/labstack/echo/v4"
)

// Init builds the user directory used by auth, appointment, blocking, bulk upload and reports.
func Init(db database.IDatabase) service.UserServiceInterface {
	repo := repository.NewUserRepository(db)
	return service.NewUserService(repo)
}

// InitAccounts registers account management. It runs after auth and blocking, whose
// services clean up behind a deleted account.
func InitAccounts(g *echo.Group, db database.IDatabase, mw *middleware.Middleware, sessions service.SessionRevoker, blocks service.BlockCleaner) {
	repo := repository.NewUserRepository(db)
	svc := service.NewAccountService(repo, sessions, blocks)
	ctrl := controller.NewUserController(svc)

	router.NewUserRouter(ctrl).Register(g, mw)
}
