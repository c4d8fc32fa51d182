package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/shipquote/internal/core/domain"
	"github.com/samirrijal/shipquote/internal/pkg/logging"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, not_found, infeasible, internal_error, ...
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// errFromDomain maps the domain error taxonomy onto HTTP responses.
// Anything outside the taxonomy is logged and hidden behind a generic 500.
func errFromDomain(c *fiber.Ctx, err error) error {
	msg := err.Error()
	var se *domain.StageError
	if errors.As(err, &se) {
		msg = se.Err.Error()
	}

	switch {
	case errors.Is(err, domain.ErrUnexpected):
		// falls through to the 500 below
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, msg)
	case errors.Is(err, domain.ErrInvalidInput):
		return errBadRequest(c, msg)
	case errors.Is(err, domain.ErrInfeasible):
		return newError(c, fiber.StatusBadRequest, "infeasible", domain.ErrInfeasible.Error())
	}

	logging.FromContext(c.UserContext()).Error("request failed",
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)
	return errInternal(c, "an unexpected error occurred")
}
