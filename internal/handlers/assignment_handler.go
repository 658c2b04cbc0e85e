package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/tender-evaluator/internal/models"
	"alfredoptarigan/tender-evaluator/internal/services"
)

type AssignmentHandler struct {
	assignments services.AssignmentService
}

func NewAssignmentHandler(assignments services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// HandleCreate handles POST /assignments
func (h *AssignmentHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(c)
	}

	assignment, err := h.assignments.CreateAssignment(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(assignment)
}

// HandleGetByTender handles GET /tenders/:tenderId/assignment
func (h *AssignmentHandler) HandleGetByTender(c *fiber.Ctx) error {
	assignment, err := h.assignments.GetByTenderID(c.UserContext(), c.Params("tenderId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(assignment)
}

// HandleUpdateStatus handles PATCH /assignments/:id/status
func (h *AssignmentHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, models.ValidationError("invalid assignment id format"))
	}

	var req models.UpdateAssignmentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(c)
	}

	assignment, err := h.assignments.SetStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(assignment)
}
