package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"alfredoptarigan/tender-evaluator/internal/models"
	"alfredoptarigan/tender-evaluator/internal/repositories"
)

// ReportService writes the committee report narrative for approved decisions.
type ReportService interface {
	GenerateReport(ctx context.Context, decisionID uuid.UUID) error
}

type reportService struct {
	decisionRepo   repositories.DecisionRepository
	assignmentRepo repositories.AssignmentRepository
	templateRepo   repositories.TemplateRepository
	geminiService  GeminiService
	promptBuilder  *PromptBuilder
	metrics        Metrics
	maxRetries     int
}

func NewReportService(
	decisionRepo repositories.DecisionRepository,
	assignmentRepo repositories.AssignmentRepository,
	templateRepo repositories.TemplateRepository,
	geminiService GeminiService,
	metrics Metrics,
	maxRetries int,
) ReportService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &reportService{
		decisionRepo:   decisionRepo,
		assignmentRepo: assignmentRepo,
		templateRepo:   templateRepo,
		geminiService:  geminiService,
		promptBuilder:  NewPromptBuilder(),
		metrics:        metrics,
		maxRetries:     maxRetries,
	}
}

func (r *reportService) GenerateReport(ctx context.Context, decisionID uuid.UUID) error {
	decision, err := r.decisionRepo.FindByID(ctx, decisionID)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			// Replaced by a newer decision before the job ran.
			log.Printf("⚠️  Decision %s no longer current, skipping report\n", decisionID)
			return nil
		}
		return fmt.Errorf("failed to get decision: %w", err)
	}

	if decision.Status != models.DecisionApproved || decision.ReportStatus != models.ReportQueued {
		return nil
	}

	// The poller can enqueue a decision that is already in a worker's hands.
	claimed, err := r.decisionRepo.ClaimReport(ctx, decisionID)
	if err != nil {
		return fmt.Errorf("failed to claim report: %w", err)
	}
	if !claimed {
		return nil
	}

	methodology := r.methodologyFor(ctx, decision.TenderID)
	prompt := r.promptBuilder.BuildCommitteeReportPrompt(decision, methodology)

	log.Printf("🤖 Generating committee report for tender %s...\n", decision.TenderID)
	summary, err := r.geminiService.GenerateTextWithRetry(ctx, prompt, 0.3, r.maxRetries)
	if err != nil {
		r.metrics.RecordReport("failed")
		if updateErr := r.decisionRepo.UpdateReport(ctx, decisionID, models.ReportFailed, nil); updateErr != nil {
			log.Printf("❌ Failed to mark report failed for decision %s: %v\n", decisionID, updateErr)
		}
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if err := r.decisionRepo.UpdateReport(ctx, decisionID, models.ReportCompleted, &summary); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	r.metrics.RecordReport("completed")
	return nil
}

// methodologyFor is best effort: the narrative still renders without it.
func (r *reportService) methodologyFor(ctx context.Context, tenderID string) models.Methodology {
	assignment, err := r.assignmentRepo.FindByTenderID(ctx, tenderID)
	if err != nil {
		return ""
	}
	template, err := r.templateRepo.FindByID(ctx, assignment.EvaluationTemplateID)
	if err != nil {
		return ""
	}
	return template.Methodology
}
