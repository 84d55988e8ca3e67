package middleware

import (
	"context"
	"time"

	"appointment-scheduler/core/constants"
	"appointment-scheduler/core/controller"
	"appointment-scheduler/core/errors"
	"appointment-scheduler/core/logger"
	"appointment-scheduler/core/utils"

	"github.com/labstack/echo/v4"
)

// TokenAuthenticator resolves a bearer token to its claims.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*utils.TokenClaims, *errors.AppError)
}

type Middleware struct {
	auth TokenAuthenticator
}

func NewMiddleware(auth TokenAuthenticator) *Middleware {
	return &Middleware{auth: auth}
}

// AuthMiddleware requires a valid bearer token and stores its claims in the context.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := utils.GetTokenFromHeader(c)
			if token == "" {
				return controller.NewErrorResponse(401, errors.ErrMissingAuthorizationHeader, "Access denied. No token provided.")
			}

			claims, appErr := m.auth.Authenticate(c.Request().Context(), token)
			if appErr != nil {
				return controller.NewErrorResponse(controller.HTTPStatus(appErr.Code), appErr.Code, appErr.Message)
			}

			c.Set(constants.ContextTokenData, claims)
			c.Set(constants.ContextToken, token)
			return next(c)
		}
	}
}

// RequestLogger logs one line per request.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			args := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"route", c.Path(),
				"status", res.Status,
				"latency_ms", time.Since(start).Milliseconds(),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
			}
			if claims, ok := utils.GetClaims(c); ok {
				args = append(args, "user_id", claims.UserID.String())
			}
			logger.Info("HTTP:Request", args...)
			return nil
		}
	}
}
