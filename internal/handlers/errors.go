package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/zenigame/zenigame/internal/domain"
)

// HTTPErrorHandler maps domain and framework errors onto the API's response
// envelope. Handlers and middleware return plain errors; this is the single
// place HTTP statuses and envelope codes are decided.
//
// Authentication failures answer 403 rather than 401 so browsers never pop
// their built-in credentials dialog.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	envelope := Envelope{Code: CodeServerError, Message: "server error"}

	var httpErr *echo.HTTPError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		status = http.StatusForbidden
		envelope = Envelope{Code: CodeAuthFailed, Message: "authentication failed"}

	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
		envelope = Envelope{Code: CodeForbidden, Message: "forbidden"}

	case errors.Is(err, domain.ErrUserAlreadyExists):
		status = http.StatusConflict
		envelope = Envelope{Code: CodeForbidden, Message: "user already exists"}

	case errors.Is(err, domain.ErrIncorrectPassword):
		status = http.StatusUnauthorized
		envelope = Envelope{Code: CodeIncorrectPassword, Message: "incorrect password"}

	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		envelope = Envelope{Code: CodeNotFound, Message: "resource not found"}

	case errors.Is(err, domain.ErrAlreadyCheckedIn):
		status = http.StatusForbidden
		envelope = Envelope{Code: CodeForbidden, Message: "already checked in today"}

	case errors.Is(err, domain.ErrCheckNotOpen):
		status = http.StatusForbidden
		envelope = Envelope{Code: CodeForbidden, Message: "attendance window not open"}

	case errors.As(err, &validationErrs):
		status = http.StatusBadRequest
		envelope = Envelope{Code: CodeBadRequest, Message: "invalid request parameters"}

	case errors.As(err, &httpErr):
		status = httpErr.Code
		envelope = envelopeForStatus(httpErr)

	default:
		slog.Error("Unhandled request error", "method", c.Request().Method,
			"path", c.Path(), "error", err)
	}

	if err := c.JSON(status, envelope); err != nil {
		slog.Error("Failed to write error response", "error", err)
	}
}

func envelopeForStatus(httpErr *echo.HTTPError) Envelope {
	message, _ := httpErr.Message.(string)

	switch httpErr.Code {
	case http.StatusBadRequest:
		if message == "" {
			message = "invalid request parameters"
		}
		return Envelope{Code: CodeBadRequest, Message: message}
	case http.StatusUnauthorized, http.StatusForbidden:
		return Envelope{Code: CodeAuthFailed, Message: "authentication failed"}
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return Envelope{Code: CodeNotFound, Message: "resource not found"}
	default:
		return Envelope{Code: CodeServerError, Message: "server error"}
	}
}
