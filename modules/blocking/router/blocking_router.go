package router

import (
	"appointment-scheduler/core/middleware"
	"appointment-scheduler/modules/blocking/controller"

	"github.com/labstack/echo/v4"
)

type BlockingRouter struct {
	BlockingController *controller.BlockingController
}

func NewBlockingRouter(blockingController *controller.BlockingController) *BlockingRouter {
	return &BlockingRouter{BlockingController: blockingController}
}

func (r *BlockingRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	blocking := g.Group("/blocking", mw.AuthMiddleware())
	blocking.GET("/blocked", r.BlockingController.GetMyBlockedUsers)
	blocking.POST("/block", r.BlockingController.BlockUser)
	blocking.DELETE("/unblock/:userId", r.BlockingController.UnblockUser)
	blocking.GET("/check/:userId", r.BlockingController.CheckIfUserBlocked)
	blocking.GET("/blocked-by", r.BlockingController.GetUsersWhoBlockedMe)
	blocking.GET("/stats", r.BlockingController.GetBlockingStats)
}
