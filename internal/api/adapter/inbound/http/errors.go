package http_handler

import (
	"context"
	"errors"
	"strings"

	"github.com/anthanhphan/go-file-gateway/internal/api/domain"
	"github.com/anthanhphan/go-file-gateway/pkg/resilience"
	"github.com/anthanhphan/gosdk/logger"
	"github.com/gofiber/fiber/v2"
)

// Every signature failure shares one response so callers cannot tell a
// tampered link from an expired one.
const signatureMessage = "Signed URL is invalid or has expired"

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorBody{Error: errorDetail{Code: code, Message: message}})
}

// errorHandler is the fiber ErrorHandler; handlers just return the service
// error.
func errorHandler(c *fiber.Ctx, err error) error {
	status, code, message := mapError(err)
	if status >= fiber.StatusInternalServerError {
		logger.Errorw("Request failed", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
	}
	return writeError(c, status, code, message)
}

func mapError(err error) (int, string, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fiberCode(fe.Code), fe.Message
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		status := fiber.StatusBadRequest
		switch ve.Reason {
		case domain.ReasonTooLarge:
			status = fiber.StatusRequestEntityTooLarge
		case domain.ReasonUnsupportedType:
			status = fiber.StatusUnsupportedMediaType
		}
		message := ve.Detail
		if message == "" {
			message = "Invalid request"
		}
		return status, strings.ToUpper(string(ve.Reason)), message
	}

	switch {
	case errors.Is(err, errUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED", "Authentication required"
	case errors.Is(err, domain.ErrSignature):
		return fiber.StatusForbidden, "INVALID_SIGNATURE", signatureMessage
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN", "You do not have access to this file"
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrObjectNotFound):
		return fiber.StatusNotFound, "NOT_FOUND", "File not found"
	case errors.Is(err, domain.ErrStorageQuota):
		return fiber.StatusInsufficientStorage, "STORAGE_QUOTA_EXCEEDED", "Storage quota exceeded"
	case errors.Is(err, resilience.ErrCircuitOpen):
		return fiber.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Storage is temporarily unavailable"
	case errors.Is(err, domain.ErrStorageIO):
		return fiber.StatusBadGateway, "STORAGE_ERROR", "Storage backend failed"
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, "TIMEOUT", "Request timed out"
	case errors.Is(err, context.Canceled):
		return fiber.StatusRequestTimeout, "CANCELED", "Request was canceled"
	}

	return fiber.StatusInternalServerError, "INTERNAL", "Internal server error"
}

func fiberCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusNotFound:
		return "ROUTE_NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "TOO_LARGE"
	case fiber.StatusUnsupportedMediaType:
		return "UNSUPPORTED_MEDIA_TYPE"
	default:
		if status >= fiber.StatusInternalServerError {
			return "INTERNAL"
		}
		return "REQUEST_ERROR"
	}
}
