package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"papertrade/internal/domain"
)

// Response represents a standardized API response
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// SuccessResponse sends a success response
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Status: "success",
		Data:   data,
	})
}

// CreatedResponse sends a 201 Created response
func CreatedResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{
		Status: "success",
		Data:   data,
	})
}

// ErrorResponse sends an error response
func ErrorResponse(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, Response{
		Status:  "error",
		Message: message,
	})
}

// BadRequestResponse sends a 400 Bad Request response
func BadRequestResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusBadRequest, message)
}

// UnauthorizedResponse sends a 401 Unauthorized response
func UnauthorizedResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusUnauthorized, message)
}

// InternalServerErrorResponse sends a 500 Internal Server Error response
func InternalServerErrorResponse(c echo.Context, message string, err error) error {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	return c.JSON(http.StatusInternalServerError, Response{
		Status:  "error",
		Message: message,
		Error:   errMsg,
	})
}

// DomainErrorResponse maps a domain error to its HTTP status. Recoverable
// failures keep their message; anything unexpected becomes an opaque 500.
func DomainErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInsufficientShares),
		errors.Is(err, domain.ErrWeakPassword),
		errors.Is(err, domain.ErrPasswordMismatch):
		return ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnknownSymbol),
		errors.Is(err, domain.ErrUserNotFound):
		return ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicateUsername):
		return ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrSessionNotFound):
		return ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrQuoteUnavailable):
		return ErrorResponse(c, http.StatusBadGateway, err.Error())
	default:
		return InternalServerErrorResponse(c, "Internal server error", err)
	}
}
