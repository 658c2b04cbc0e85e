package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/tender-evaluator/internal/models"
	"alfredoptarigan/tender-evaluator/internal/services"
)

type ScoreHandler struct {
	submissions services.SubmissionService
	standings   services.StandingsService
}

func NewScoreHandler(
	submissions services.SubmissionService,
	standings services.StandingsService,
) *ScoreHandler {
	return &ScoreHandler{
		submissions: submissions,
		standings:   standings,
	}
}

// HandleSubmit handles POST /tenders/:tenderId/scores
func (h *ScoreHandler) HandleSubmit(c *fiber.Ctx) error {
	var req models.SubmitScoresRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(c)
	}

	submission, err := h.submissions.SubmitBatched(c.UserContext(), c.Params("tenderId"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(submission)
}

// HandleSubmitLegacy handles POST /tenders/:tenderId/scores/legacy
func (h *ScoreHandler) HandleSubmitLegacy(c *fiber.Ctx) error {
	var req models.SubmitLegacyScoresRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(c)
	}

	submission, err := h.submissions.SubmitLegacy(c.UserContext(), c.Params("tenderId"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(submission)
}

// HandleList handles GET /tenders/:tenderId/scores
func (h *ScoreHandler) HandleList(c *fiber.Ctx) error {
	submissions, err := h.submissions.GetScores(c.UserContext(), c.Params("tenderId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(submissions)
}

// HandleFinalScores handles GET /tenders/:tenderId/final-scores
func (h *ScoreHandler) HandleFinalScores(c *fiber.Ctx) error {
	tenderID := c.Params("tenderId")

	standings, err := h.standings.GetFinalScores(c.UserContext(), tenderID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.FinalScoresResponse{
		TenderID:    tenderID,
		Methodology: standings.Template.Methodology,
		Scores:      standings.Scores,
	})
}
