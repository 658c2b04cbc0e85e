package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/tender-evaluator/internal/models"
	"alfredoptarigan/tender-evaluator/internal/services"
)

type TemplateHandler struct {
	registry services.TemplateRegistry
}

func NewTemplateHandler(registry services.TemplateRegistry) *TemplateHandler {
	return &TemplateHandler{registry: registry}
}

// HandleCreate handles POST /templates
func (h *TemplateHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(c)
	}

	template, err := h.registry.CreateTemplate(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(template)
}

// HandleList handles GET /templates
func (h *TemplateHandler) HandleList(c *fiber.Ctx) error {
	templates, err := h.registry.ListTemplates(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	if templates == nil {
		templates = []models.EvaluationTemplate{}
	}
	return c.JSON(templates)
}

// HandleGet handles GET /templates/:id
func (h *TemplateHandler) HandleGet(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, models.ValidationError("invalid template id format"))
	}

	template, err := h.registry.GetTemplate(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(template)
}
