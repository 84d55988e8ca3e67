package router

import (
	"appointment-scheduler/core/middleware"
	"appointment-scheduler/modules/user/controller"

	"github.com/labstack/echo/v4"
)

type UserRouter struct {
	UserController *controller.UserController
}

func NewUserRouter(userController *controller.UserController) *UserRouter {
	return &UserRouter{UserController: userController}
}

func (r *UserRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	users := g.Group("/users", mw.AuthMiddleware())
	users.DELETE("/:id", r.UserController.DeleteUser)
}
