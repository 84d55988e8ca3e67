package auth

import (
	"appointment-scheduler/core/cache"
	"appointment-scheduler/core/config"
	"appointment-scheduler/core/constants"
	"appointment-scheduler/core/database"
	"appointment-scheduler/core/middleware"
	"appointment-scheduler/core/queue"
	"appointment-scheduler/core/utils"
	"appointment-scheduler/modules/auth/controller"
	"appointment-scheduler/modules/auth/repository"
	"appointment-scheduler/modules/auth/router"
	"appointment-scheduler/modules/auth/service"
	"appointment-scheduler/modules/auth/worker"
	userService "appointment-scheduler/modules/user/service"

	"github.com/labstack/echo/v4"
)

// Init wires the auth module. It returns the middleware the other modules protect their
// routes with and the service account deletion uses to end sessions.
func Init(g *echo.Group, db database.IDatabase, c cache.Cache, users userService.UserServiceInterface, w *queue.Worker, cfg *config.Config) (*middleware.Middleware, service.AuthServiceInterface) {
	repo := repository.NewTokenRepository(db)
	tokens := service.NewTokenStore(repo, c, cfg.Cache.TokenTTL)
	issuer := utils.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.AccessTTL)
	authService := service.NewAuthService(users, tokens, issuer)

	mw := middleware.NewMiddleware(authService)
	ctrl := controller.NewAuthController(authService)
	router.NewAuthRouter(ctrl).Register(g, mw)

	if w != nil {
		w.HandleFunc(worker.TypeTokenSweep, worker.NewTokenSweepHandler(authService))
		w.Every(constants.TokenSweepCron, worker.NewTokenSweepTask())
	}

	return mw, authService
}
