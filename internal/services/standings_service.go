package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"alfredoptarigan/tender-evaluator/internal/models"
	"alfredoptarigan/tender-evaluator/internal/repositories"
	"alfredoptarigan/tender-evaluator/internal/scoring"
)

// Standings is the ranking computed from a tender's current submissions.
type Standings struct {
	Assignment *models.CommitteeAssignment
	Template   *models.EvaluationTemplate
	Scores     []models.FinalScore
}

type StandingsService interface {
	GetFinalScores(ctx context.Context, tenderID string) (*Standings, error)
}

type standingsService struct {
	assignmentRepo repositories.AssignmentRepository
	templateRepo   repositories.TemplateRepository
	submissionRepo repositories.SubmissionRepository
	zeroPolicy     scoring.ZeroPolicy
	metrics        Metrics
}

func NewStandingsService(
	assignmentRepo repositories.AssignmentRepository,
	templateRepo repositories.TemplateRepository,
	submissionRepo repositories.SubmissionRepository,
	zeroPolicy scoring.ZeroPolicy,
	metrics Metrics,
) StandingsService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &standingsService{
		assignmentRepo: assignmentRepo,
		templateRepo:   templateRepo,
		submissionRepo: submissionRepo,
		zeroPolicy:     zeroPolicy,
		metrics:        metrics,
	}
}

func (s *standingsService) GetFinalScores(ctx context.Context, tenderID string) (*Standings, error) {
	start := time.Now()
	defer func() { s.metrics.RecordStandingsLatency(time.Since(start)) }()

	assignment, err := s.assignmentRepo.FindByTenderID(ctx, tenderID)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			return nil, assignmentNotFound(tenderID)
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	template, err := s.templateRepo.FindByID(ctx, assignment.EvaluationTemplateID)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			return nil, models.NewEngineError(models.KindNotFound, models.CodeTemplateNotFound,
				"template %s bound to tender %s not found", assignment.EvaluationTemplateID, tenderID)
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	submissions, err := s.submissionRepo.FindByTenderID(ctx, tenderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions: %w", err)
	}

	result := scoring.Compute(template, submissions, s.zeroPolicy)
	if result.MethodologyFallback {
		log.Printf("⚠️  Template %s has unknown methodology %q, combining with QCBS weights\n",
			template.ID, template.Methodology)
	}

	return &Standings{
		Assignment: assignment,
		Template:   template,
		Scores:     result.Scores,
	}, nil
}
