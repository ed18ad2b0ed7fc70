package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/AdelSuarez/geo-api-v2/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int                 `json:"status"`
	Code      string              `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string              `json:"message"` // Human-readable message
	Fields    []domain.FieldError `json:"fields,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
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
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// respondError maps domain errors onto the wire taxonomy. Upstream
// details are logged but never leak into the response body.
func respondError(c *fiber.Ctx, err error, notFoundMsg string) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		reqID, _ := c.Locals("requestid").(string)
		return c.Status(400).JSON(APIError{
			Status:    400,
			Code:      "bad_request",
			Message:   "validation failed",
			Fields:    ve.Fields,
			RequestID: reqID,
		})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return errNotFound(c, notFoundMsg)
	}
	var ue *domain.UpstreamError
	if errors.As(err, &ue) {
		slog.Error("upstream failure", "api", ue.API, "error", ue.Message)
		return errInternal(c, "upstream service failure")
	}
	slog.Error("request failed", "path", c.Path(), "error", err)
	return errInternal(c, "internal error")
}
