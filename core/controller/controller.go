package controller

import (
	stdErrors "errors"
	"net/http"

	"appointment-scheduler/core/dto"
	"appointment-scheduler/core/errors"
	"appointment-scheduler/core/logger"

	"github.com/labstack/echo/v4"
)

// Response types
type (
	SuccessResponse struct {
		Success    bool            `json:"success"`
		Message    string          `json:"message"`
		Data       any             `json:"data,omitempty"`
		Pagination *dto.Pagination `json:"pagination,omitempty"`
	}

	ErrorResponse struct {
		Success bool             `json:"success"`
		Code    errors.ErrorCode `json:"code"`
		Message string           `json:"message"`
		Details any              `json:"details,omitempty"`
	}

	ValidationError struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}
)

// Response handler interface and implementation
type BaseController interface {
	BadRequest(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	InternalServerError(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	NotFound(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	Unauthorized(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	Forbidden(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	SuccessResponse(c echo.Context, data any, message string) error
	CreatedResponse(c echo.Context, data any, message string) error
	PaginatedResponse(c echo.Context, data any, pagination *dto.Pagination, message string) error
	ErrorResponse(c echo.Context, err error) error
}

type responseHandler struct{}

func NewBaseController() BaseController {
	return &responseHandler{}
}

func NewSuccessResponse(data any, message string) *SuccessResponse {
	return &SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// NewErrorResponse builds an echo error whose message is the failure envelope.
// HTTPErrorHandler renders it as is.
func NewErrorResponse(httpStatusCode int, appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	body := &ErrorResponse{
		Success: false,
		Code:    appErrCode,
		Message: message,
	}
	if len(details) > 0 && details[0] != nil {
		body.Details = details[0]
	}
	return echo.NewHTTPError(httpStatusCode, body)
}

func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// HTTPStatus maps an error code to its response status.
func HTTPStatus(code errors.ErrorCode) int {
	switch code.Kind() {
	case errors.KindValidation:
		return http.StatusBadRequest
	case errors.KindAuthorization:
		if code == errors.ErrForbidden {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case errors.KindNotFound:
		return http.StatusNotFound
	case errors.KindConflict:
		return http.StatusConflict
	case errors.KindUnimplemented:
		return http.StatusNotImplemented
	case errors.KindInternal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

func (h *responseHandler) BadRequest(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewErrorResponse(http.StatusBadRequest, appErrCode, message, details...)
}

func (h *responseHandler) InternalServerError(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewErrorResponse(http.StatusInternalServerError, appErrCode, message, details...)
}

func (h *responseHandler) NotFound(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewErrorResponse(http.StatusNotFound, appErrCode, message, details...)
}

func (h *responseHandler) Unauthorized(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewErrorResponse(http.StatusUnauthorized, appErrCode, message, details...)
}

func (h *responseHandler) Forbidden(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewErrorResponse(http.StatusForbidden, appErrCode, message, details...)
}

func (h *responseHandler) SuccessResponse(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, NewSuccessResponse(data, message))
}

func (h *responseHandler) CreatedResponse(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusCreated, NewSuccessResponse(data, message))
}

func (h *responseHandler) PaginatedResponse(c echo.Context, data any, pagination *dto.Pagination, message string) error {
	resp := NewSuccessResponse(data, message)
	resp.Pagination = pagination
	return c.JSON(http.StatusOK, resp)
}

// ErrorResponse writes err as a failure envelope. Internal errors are logged with their
// cause and reach the client only with the service's generic message.
func (h *responseHandler) ErrorResponse(c echo.Context, err error) error {
	httpStatus := http.StatusInternalServerError
	appCode := errors.ErrInternalServer
	msg := "Internal server error"

	if ae, ok := errors.As(err); ok {
		appCode = ae.Code
		httpStatus = HTTPStatus(ae.Code)
		if ae.Message != "" {
			msg = ae.Message
		}
		if ae.Kind() == errors.KindInternal {
			logger.Error("BaseController:ErrorResponse",
				"status", httpStatus,
				"code", appCode,
				"message", msg,
				"error", ae.Err,
				"path", c.Path(),
			)
		} else {
			logger.Info("BaseController:ErrorResponse",
				"status", httpStatus,
				"code", appCode,
				"message", msg,
			)
		}
	} else if err != nil {
		logger.Error("BaseController:ErrorResponse:Untyped", "error", err, "path", c.Path())
	}

	return c.JSON(httpStatus, &ErrorResponse{Success: false, Code: appCode, Message: msg})
}

// HTTPErrorHandler renders framework errors (unknown route, bind failures, body limit,
// NewErrorResponse values) with the same envelope.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	body := &ErrorResponse{Success: false, Code: errors.ErrInternalServer, Message: "Internal server error"}

	var he *echo.HTTPError
	if stdErrors.As(err, &he) {
		status = he.Code
		switch m := he.Message.(type) {
		case *ErrorResponse:
			body = m
		case string:
			body.Message = m
			body.Code = codeForStatus(status)
		default:
			body.Message = http.StatusText(status)
			body.Code = codeForStatus(status)
		}
	} else if ae, ok := errors.As(err); ok {
		status = HTTPStatus(ae.Code)
		body.Code = ae.Code
		if ae.Kind() != errors.KindInternal {
			body.Message = ae.Message
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error("HTTPErrorHandler", "status", status, "path", c.Path(), "error", err)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, body)
	}
	if writeErr != nil {
		logger.Error("HTTPErrorHandler:Write", "error", writeErr)
	}
}

func codeForStatus(status int) errors.ErrorCode {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return errors.ErrInvalidRequestData
	case http.StatusUnauthorized:
		return errors.ErrUnauthorized
	case http.StatusForbidden:
		return errors.ErrForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return errors.ErrNotFound
	case http.StatusConflict:
		return errors.ErrAlreadyExists
	case http.StatusNotImplemented:
		return errors.ErrNotImplemented
	default:
		return errors.ErrInternalServer
	}
}
