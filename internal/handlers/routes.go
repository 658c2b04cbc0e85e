package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Templates   *TemplateHandler
	Assignments *AssignmentHandler
	Scores      *ScoreHandler
	Decisions   *DecisionHandler
}

// RegisterRoutes mounts the evaluation API on api, normally the /api/v1 group.
func RegisterRoutes(api fiber.Router, h Handlers) {
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/templates", h.Templates.HandleCreate)
	api.Get("/templates", h.Templates.HandleList)
	api.Get("/templates/:id", h.Templates.HandleGet)

	api.Post("/assignments", h.Assignments.HandleCreate)
	api.Patch("/assignments/:id/status", h.Assignments.HandleUpdateStatus)

	tenders := api.Group("/tenders/:tenderId")
	tenders.Get("/assignment", h.Assignments.HandleGetByTender)
	tenders.Post("/scores", h.Scores.HandleSubmit)
	tenders.Post("/scores/legacy", h.Scores.HandleSubmitLegacy)
	tenders.Get("/scores", h.Scores.HandleList)
	tenders.Get("/final-scores", h.Scores.HandleFinalScores)
	tenders.Post("/decision/approve", h.Decisions.HandleApprove)
	tenders.Post("/decision/revision", h.Decisions.HandleRequestRevision)
	tenders.Get("/decision", h.Decisions.HandleGet)
	tenders.Get("/decision/history", h.Decisions.HandleHistory)
}

// RouteList lists the registered routes as "METHOD path" for the API index
// page. Fiber's implicit HEAD routes are left out.
func RouteList(app *fiber.App) []string {
	var endpoints []string
	for _, route := range app.GetRoutes(true) {
		if route.Method == fiber.MethodHead {
			continue
		}
		endpoints = append(endpoints, route.Method+" "+route.Path)
	}
	return endpoints
}
