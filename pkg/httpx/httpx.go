// Package httpx holds the small helpers shared by all HTTP handlers:
// error-to-status mapping and request parsing.
package httpx

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/FACorreiaa/agroplan/internal/common"
)

// DateLayout is the wire format for date-only fields.
const DateLayout = "2006-01-02"

// ErrorResponse is the JSON body returned on failure
type ErrorResponse struct {
	Error string `json:"error"`
}

// Status maps a service error to an HTTP status code
func Status(err error) int {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error writes a service error as a JSON response. Internal errors are not
// echoed back to the client.
func Error(c echo.Context, err error) error {
	status := Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	return c.JSON(status, ErrorResponse{Error: msg})
}

// PathID parses a uuid path parameter
func PathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// ParseDate parses a date-only wire value
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// ParseDatePtr parses an optional date-only wire value
func ParseDatePtr(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatDate renders a date-only wire value
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatDatePtr renders an optional date-only wire value
func FormatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
