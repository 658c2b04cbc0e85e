package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/tender-evaluator/internal/models"
	"alfredoptarigan/tender-evaluator/internal/repositories"
	"alfredoptarigan/tender-evaluator/internal/scoring"
	"alfredoptarigan/tender-evaluator/internal/services"
)

func newTestApp() *fiber.App {
	store := repositories.NewMemoryStore()
	registry := services.NewTemplateRegistry(store.Templates)
	assignments := services.NewAssignmentService(store.Assignments, store.Templates)
	submissions := services.NewSubmissionService(store.Assignments, store.Templates, store.Submissions, nil)
	standings := services.NewStandingsService(store.Assignments, store.Templates, store.Submissions, scoring.ExcludeZeros, nil)
	decisions := services.NewDecisionService(standings, assignments, store.Decisions)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app.Group("/api/v1"), Handlers{
		Templates:   NewTemplateHandler(registry),
		Assignments: NewAssignmentHandler(assignments),
		Scores:      NewScoreHandler(submissions, standings),
		Decisions:   NewDecisionHandler(decisions),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func setupTender(t *testing.T, app *fiber.App, tenderID string) models.EvaluationTemplate {
	t.Helper()

	var template models.EvaluationTemplate
	status := doJSON(t, app, http.MethodPost, "/api/v1/templates", fiber.Map{
		"name":        "Consulting services",
		"methodology": "QCBS",
		"criteria": []fiber.Map{
			{"id": "1", "name": "Technical approach", "kind": "technical", "max_score": 60},
			{"id": "2", "name": "Financial proposal", "kind": "financial", "max_score": 40},
		},
	}, &template)
	require.Equal(t, http.StatusCreated, status)

	status = doJSON(t, app, http.MethodPost, "/api/v1/assignments", fiber.Map{
		"tender_id":              tenderID,
		"evaluation_template_id": template.ID.String(),
		"committee_template_id":  "committee-a",
		"window_start":           "2026-03-01T09:00:00Z",
		"window_end":             "2026-03-15T17:00:00Z",
	}, nil)
	require.Equal(t, http.StatusCreated, status)

	return template
}

func TestEvaluationFlow(t *testing.T) {
	app := newTestApp()
	setupTender(t, app, "T1")

	for _, sub := range []fiber.Map{
		{"evaluator_id": "E1", "bidder_name": "Acme", "items": []fiber.Map{{"criterion_id": 1, "score": 50}, {"criterion_id": 2, "score": 30}}},
		{"evaluator_id": "E2", "bidder_name": "Acme", "items": []fiber.Map{{"criterion_id": 1, "score": 54}, {"criterion_id": 2, "score": 34}}},
	} {
		status := doJSON(t, app, http.MethodPost, "/api/v1/tenders/T1/scores/legacy", sub, nil)
		require.Equal(t, http.StatusCreated, status)
	}

	var final models.FinalScoresResponse
	status := doJSON(t, app, http.MethodGet, "/api/v1/tenders/T1/final-scores", nil, &final)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.MethodologyQCBS, final.Methodology)
	require.Len(t, final.Scores, 1)
	assert.Equal(t, 86.67, final.Scores[0].TechnicalScore)
	assert.Equal(t, 80.0, final.Scores[0].FinancialScore)
	assert.Equal(t, 84.67, final.Scores[0].FinalScore)

	var decision models.ChairmanDecision
	status = doJSON(t, app, http.MethodPost, "/api/v1/tenders/T1/decision/approve", fiber.Map{"approver_id": "chair"}, &decision)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Acme", decision.WinningBidder)

	var assignment models.CommitteeAssignment
	status = doJSON(t, app, http.MethodGet, "/api/v1/tenders/T1/assignment", nil, &assignment)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.AssignmentCompleted, assignment.Status)

	var history []models.DecisionHistory
	status = doJSON(t, app, http.MethodGet, "/api/v1/tenders/T1/decision/history", nil, &history)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, history, 1)
}

func TestBatchedScores(t *testing.T) {
	app := newTestApp()
	setupTender(t, app, "T1")

	status := doJSON(t, app, http.MethodPost, "/api/v1/tenders/T1/scores", fiber.Map{
		"evaluator_id": "E1",
		"items": []fiber.Map{
			{"bidder_name": "Acme", "criterion_id": "1", "score": 54},
			{"bidder_name": "Acme", "criterion_id": "2", "score": 34},
			{"bidder_name": "Beta", "criterion_id": "1", "score": 30},
			{"bidder_name": "Beta", "criterion_id": "2", "score": 20},
		},
	}, nil)
	require.Equal(t, http.StatusCreated, status)

	var scores []models.ScoreSubmission
	status = doJSON(t, app, http.MethodGet, "/api/v1/tenders/T1/scores", nil, &scores)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, scores, 1)
	assert.Equal(t, models.AllBidders, scores[0].BidderName)

	var final models.FinalScoresResponse
	status = doJSON(t, app, http.MethodGet, "/api/v1/tenders/T1/final-scores", nil, &final)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, final.Scores, 2)
	assert.Equal(t, "Acme", final.Scores[0].BidderName)
	assert.Equal(t, 2, final.Scores[1].Rank)
}

func TestErrorMapping(t *testing.T) {
	app := newTestApp()
	template := setupTender(t, app, "T1")

	assignmentBody := func(templateID string) fiber.Map {
		return fiber.Map{
			"tender_id":              "T1",
			"evaluation_template_id": templateID,
			"committee_template_id":  "committee-a",
			"window_start":           "2026-03-01T09:00:00Z",
			"window_end":             "2026-03-15T17:00:00Z",
		}
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{
			name:   "score out of range",
			method: http.MethodPost,
			path:   "/api/v1/tenders/T1/scores/legacy",
			body:   fiber.Map{"evaluator_id": "E1", "bidder_name": "Acme", "items": []fiber.Map{{"criterion_id": 1, "score": 70}, {"criterion_id": 2, "score": 30}}},
			status: http.StatusUnprocessableEntity,
			code:   models.CodeScoreOutOfRange,
		},
		{
			name:   "unknown tender",
			method: http.MethodGet,
			path:   "/api/v1/tenders/T404/final-scores",
			status: http.StatusNotFound,
			code:   models.CodeAssignmentNotFound,
		},
		{
			name:   "duplicate assignment",
			method: http.MethodPost,
			path:   "/api/v1/assignments",
			body:   assignmentBody(template.ID.String()),
			status: http.StatusConflict,
			code:   models.CodeDuplicateActiveAssignment,
		},
		{
			name:   "unknown template",
			method: http.MethodPost,
			path:   "/api/v1/assignments",
			body:   assignmentBody("3f1c1a52-8f0e-4c55-9d0b-2f5a4e1c7b10"),
			status: http.StatusNotFound,
			code:   models.CodeTemplateNotFound,
		},
		{
			name:   "approve without scores",
			method: http.MethodPost,
			path:   "/api/v1/tenders/T1/decision/approve",
			body:   fiber.Map{"approver_id": "chair"},
			status: http.StatusConflict,
			code:   models.CodeNoScores,
		},
		{
			name:   "short revision reason",
			method: http.MethodPost,
			path:   "/api/v1/tenders/T1/decision/revision",
			body:   fiber.Map{"approver_id": "chair", "reason": "no"},
			status: http.StatusBadRequest,
			code:   models.CodeValidation,
		},
		{
			name:   "no decision yet",
			method: http.MethodGet,
			path:   "/api/v1/tenders/T1/decision",
			status: http.StatusNotFound,
			code:   models.CodeDecisionNotFound,
		},
		{
			name:   "bad template id",
			method: http.MethodGet,
			path:   "/api/v1/templates/not-a-uuid",
			status: http.StatusBadRequest,
			code:   models.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp models.ErrorResponse
			status := doJSON(t, app, tt.method, tt.path, tt.body, &resp)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestAssignmentStatusEndpoint(t *testing.T) {
	app := newTestApp()
	setupTender(t, app, "T1")

	var assignment models.CommitteeAssignment
	require.Equal(t, http.StatusOK, doJSON(t, app, http.MethodGet, "/api/v1/tenders/T1/assignment", nil, &assignment))

	path := "/api/v1/assignments/" + assignment.ID.String() + "/status"

	var updated models.CommitteeAssignment
	status := doJSON(t, app, http.MethodPatch, path, fiber.Map{"status": "suspended"}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.AssignmentSuspended, updated.Status)

	var errResp models.ErrorResponse
	status = doJSON(t, app, http.MethodPatch, path, fiber.Map{"status": "completed"}, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, models.CodeInvalidTransition, errResp.Code)
}

func TestRouteList(t *testing.T) {
	app := newTestApp()
	endpoints := RouteList(app)

	assert.Contains(t, endpoints, "GET /api/v1/tenders/:tenderId/final-scores")
	assert.Contains(t, endpoints, "PATCH /api/v1/assignments/:id/status")
	assert.Contains(t, endpoints, "POST /api/v1/tenders/:tenderId/decision/approve")
	for _, endpoint := range endpoints {
		assert.NotContains(t, endpoint, "HEAD ")
	}
}

func TestInvalidPayload(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/templates", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListTemplatesEmpty(t *testing.T) {
	app := newTestApp()

	var templates []models.EvaluationTemplate
	status := doJSON(t, app, http.MethodGet, "/api/v1/templates", nil, &templates)
	assert.Equal(t, http.StatusOK, status)
	assert.NotNil(t, templates)
	assert.Empty(t, templates)
}
