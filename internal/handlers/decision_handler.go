package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/tender-evaluator/internal/models"
	"alfredoptarigan/tender-evaluator/internal/services"
)

type DecisionHandler struct {
	decisions services.DecisionService
}

func NewDecisionHandler(decisions services.DecisionService) *DecisionHandler {
	return &DecisionHandler{decisions: decisions}
}

// HandleApprove handles POST /tenders/:tenderId/decision/approve
func (h *DecisionHandler) HandleApprove(c *fiber.Ctx) error {
	var req models.ApproveRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(c)
	}

	decision, err := h.decisions.Approve(c.UserContext(), services.ApproveInput{
		TenderID:      c.Params("tenderId"),
		ApproverID:    req.ApproverID,
		WinningBidder: req.WinningBidder,
		Notes:         req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(decision)
}

// HandleRequestRevision handles POST /tenders/:tenderId/decision/revision
func (h *DecisionHandler) HandleRequestRevision(c *fiber.Ctx) error {
	var req models.RevisionRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(c)
	}

	decision, err := h.decisions.RequestRevision(c.UserContext(), c.Params("tenderId"), req.ApproverID, req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(decision)
}

// HandleGet handles GET /tenders/:tenderId/decision
func (h *DecisionHandler) HandleGet(c *fiber.Ctx) error {
	decision, err := h.decisions.GetDecision(c.UserContext(), c.Params("tenderId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(decision)
}

// HandleHistory handles GET /tenders/:tenderId/decision/history
func (h *DecisionHandler) HandleHistory(c *fiber.Ctx) error {
	history, err := h.decisions.GetHistory(c.UserContext(), c.Params("tenderId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(history)
}
