package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/tender-evaluator/internal/models"
)

// statusFor maps an engine error kind to its HTTP status.
func statusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindValidation:
		return fiber.StatusBadRequest
	case models.KindOutOfBounds:
		return fiber.StatusUnprocessableEntity
	case models.KindNotFound:
		return fiber.StatusNotFound
	case models.KindStateConflict:
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func respondError(c *fiber.Ctx, err error) error {
	var engineErr *models.EngineError
	if errors.As(err, &engineErr) {
		return c.Status(statusFor(engineErr.Kind)).JSON(models.ErrorResponse{
			Error: engineErr.Message,
			Code:  engineErr.Code,
			Kind:  string(engineErr.Kind),
		})
	}

	log.Printf("❌ Request %s %s failed: %v\n", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error: "Internal server error",
	})
}

func invalidPayload(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error: "Invalid request payload",
		Code:  models.CodeValidation,
		Kind:  string(models.KindValidation),
	})
}

// ErrorHandler is the fiber error handler for errors not answered by a handler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(models.ErrorResponse{
			Error: fiberErr.Message,
		})
	}
	return respondError(c, err)
}
