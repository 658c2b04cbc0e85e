package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/tender-evaluator/internal/models"
	"alfredoptarigan/tender-evaluator/internal/repositories"
	"alfredoptarigan/tender-evaluator/internal/scoring"
)

type testEnv struct {
	templateRepo   repositories.TemplateRepository
	assignmentRepo repositories.AssignmentRepository
	submissionRepo repositories.SubmissionRepository
	decisionRepo   repositories.DecisionRepository

	registry    TemplateRegistry
	assignments AssignmentService
	submissions SubmissionService
	standings   StandingsService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		templateRepo:   repositories.NewMemoryTemplateRepository(),
		assignmentRepo: repositories.NewMemoryAssignmentRepository(),
		submissionRepo: repositories.NewMemorySubmissionRepository(),
		decisionRepo:   repositories.NewMemoryDecisionRepository(),
	}
	env.registry = NewTemplateRegistry(env.templateRepo)
	env.assignments = NewAssignmentService(env.assignmentRepo, env.templateRepo)
	env.submissions = NewSubmissionService(env.assignmentRepo, env.templateRepo, env.submissionRepo, nil)
	env.standings = NewStandingsService(env.assignmentRepo, env.templateRepo, env.submissionRepo, scoring.ExcludeZeros, nil)
	return env
}

func (env *testEnv) decisions(opts ...DecisionServiceOption) DecisionService {
	return NewDecisionService(env.standings, env.assignments, env.decisionRepo, opts...)
}

// consultingTemplate registers a QCBS template with one technical criterion
// out of 60 and one financial criterion out of 40.
func (env *testEnv) consultingTemplate(t *testing.T) *models.EvaluationTemplate {
	t.Helper()
	template, err := env.registry.CreateTemplate(context.Background(), models.CreateTemplateRequest{
		Name:        "Consulting services",
		Methodology: models.MethodologyQCBS,
		Criteria: []models.CriterionRequest{
			{ID: "1", Name: "Technical approach", Kind: models.CriterionTechnical, MaxScore: 60},
			{ID: "2", Name: "Financial proposal", Kind: models.CriterionFinancial, MaxScore: 40},
		},
	})
	require.NoError(t, err)
	return template
}

func (env *testEnv) assign(t *testing.T, tenderID string, templateID uuid.UUID) *models.CommitteeAssignment {
	t.Helper()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	assignment, err := env.assignments.CreateAssignment(context.Background(), models.CreateAssignmentRequest{
		TenderID:             tenderID,
		EvaluationTemplateID: templateID.String(),
		CommitteeTemplateID:  "committee-a",
		WindowStart:          start,
		WindowEnd:            start.Add(14 * 24 * time.Hour),
	})
	require.NoError(t, err)
	return assignment
}

func (env *testEnv) submitLegacy(t *testing.T, tenderID, evaluator, bidder string, technical, financial float64) {
	t.Helper()
	_, err := env.submissions.SubmitLegacy(context.Background(), tenderID, models.SubmitLegacyScoresRequest{
		EvaluatorID: evaluator,
		BidderName:  bidder,
		Items: []models.LegacyScoreItem{
			{CriterionID: 1, Score: technical},
			{CriterionID: 2, Score: financial},
		},
	})
	require.NoError(t, err)
}

type fakeGemini struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (f *fakeGemini) GenerateText(_ context.Context, prompt string, _ float32) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGemini) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, _ int) (string, error) {
	return f.GenerateText(ctx, prompt, temperature)
}

func (f *fakeGemini) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type recordingQueue struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (q *recordingQueue) EnqueueJob(id uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, id)
}

var errGeminiDown = errors.New("gemini unavailable")
