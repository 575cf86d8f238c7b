package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/snap-vault/apperr"
)

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:     fiber.StatusBadRequest,
	apperr.KindAuthentication: fiber.StatusUnauthorized,
	apperr.KindConflict:       fiber.StatusConflict,
	apperr.KindNotFound:       fiber.StatusNotFound,
	apperr.KindUpstream:       fiber.StatusBadGateway,
	apperr.KindInternal:       fiber.StatusInternalServerError,
}

func success(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

// ErrorHandler writes every error returned by a handler or middleware as
// the JSON envelope with the status of its kind.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		kind := apperr.KindOf(err)
		status := kindStatus[kind]
		message := "Internal server error"

		var fe *fiber.Error
		var ae *apperr.Error
		switch {
		case errors.As(err, &ae):
			message = ae.Message
		case errors.As(err, &fe):
			status = fe.Code
			message = fe.Message
			kind = kindForStatus(status)
		}

		if status >= fiber.StatusInternalServerError {
			log.Error("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"status", status,
				"error", err,
			)
		}

		return c.Status(status).JSON(fiber.Map{
			"status":  "error",
			"kind":    kind,
			"message": message,
			"data":    nil,
		})
	}
}

func kindForStatus(status int) apperr.Kind {
	for kind, s := range kindStatus {
		if s == status {
			return kind
		}
	}
	if status < fiber.StatusInternalServerError {
		return apperr.KindValidation
	}
	return apperr.KindInternal
}
