package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/tender-evaluator/internal/models"
	"alfredoptarigan/tender-evaluator/internal/repositories"
)

// Protocol selects how a submission is shaped and how strictly it is checked.
type Protocol string

const (
	// ProtocolLegacy scores one bidder and must cover every template criterion.
	ProtocolLegacy Protocol = "legacy"
	// ProtocolBatched scores any number of bidders in one submission; partial
	// coverage is allowed.
	ProtocolBatched Protocol = "batched"
)

// genericMaxScore bounds every score when the template cannot be resolved.
const genericMaxScore = 100.0

type SubmitInput struct {
	TenderID    string
	EvaluatorID string
	// BidderName is required for the legacy protocol and ignored for batched.
	BidderName string
	Items      []models.ScoreItem
	Protocol   Protocol
	Status     models.SubmissionStatus
}

type SubmissionService interface {
	Submit(ctx context.Context, input SubmitInput) (*models.ScoreSubmission, error)
	SubmitLegacy(ctx context.Context, tenderID string, req models.SubmitLegacyScoresRequest) (*models.ScoreSubmission, error)
	SubmitBatched(ctx context.Context, tenderID string, req models.SubmitScoresRequest) (*models.ScoreSubmission, error)
	GetScores(ctx context.Context, tenderID string) ([]models.ScoreSubmission, error)
}

type submissionService struct {
	assignmentRepo repositories.AssignmentRepository
	templateRepo   repositories.TemplateRepository
	submissionRepo repositories.SubmissionRepository
	metrics        Metrics
	locks          *tenderLocks
	now            func() time.Time
}

func NewSubmissionService(
	assignmentRepo repositories.AssignmentRepository,
	templateRepo repositories.TemplateRepository,
	submissionRepo repositories.SubmissionRepository,
	metrics Metrics,
) SubmissionService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &submissionService{
		assignmentRepo: assignmentRepo,
		templateRepo:   templateRepo,
		submissionRepo: submissionRepo,
		metrics:        metrics,
		locks:          newTenderLocks(),
		now:            time.Now,
	}
}

func (s *submissionService) SubmitLegacy(ctx context.Context, tenderID string, req models.SubmitLegacyScoresRequest) (*models.ScoreSubmission, error) {
	items := make([]models.ScoreItem, 0, len(req.Items))
	for _, legacy := range req.Items {
		items = append(items, legacy.ScoreItem())
	}

	return s.Submit(ctx, SubmitInput{
		TenderID:    tenderID,
		EvaluatorID: req.EvaluatorID,
		BidderName:  req.BidderName,
		Items:       items,
		Protocol:    ProtocolLegacy,
		Status:      models.SubmissionStatus(req.Status),
	})
}

func (s *submissionService) SubmitBatched(ctx context.Context, tenderID string, req models.SubmitScoresRequest) (*models.ScoreSubmission, error) {
	return s.Submit(ctx, SubmitInput{
		TenderID:    tenderID,
		EvaluatorID: req.EvaluatorID,
		Items:       req.Items,
		Protocol:    ProtocolBatched,
		Status:      models.SubmissionStatus(req.Status),
	})
}

func (s *submissionService) Submit(ctx context.Context, input SubmitInput) (*models.ScoreSubmission, error) {
	submission, err := s.submit(ctx, input)
	if err != nil {
		s.metrics.RecordSubmission(input.Protocol, "rejected")
		return nil, err
	}
	s.metrics.RecordSubmission(input.Protocol, "accepted")
	return submission, nil
}

func (s *submissionService) submit(ctx context.Context, input SubmitInput) (*models.ScoreSubmission, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}

	assignment, err := s.assignmentRepo.FindByTenderID(ctx, input.TenderID)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			return nil, assignmentNotFound(input.TenderID)
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	template, err := s.templateRepo.FindByID(ctx, assignment.EvaluationTemplateID)
	switch {
	case errors.Is(err, models.ErrRecordNotFound):
		log.Printf("⚠️  Template %s bound to tender %s not found, validating with generic 0-%.0f bounds\n",
			assignment.EvaluationTemplateID, input.TenderID, genericMaxScore)
		s.metrics.RecordDegradedValidation()
		if err := validateGeneric(input.Items); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("failed to get template: %w", err)
	default:
		if err := validateAgainstTemplate(template, input); err != nil {
			return nil, err
		}
	}

	submission := &models.ScoreSubmission{
		ID:          uuid.New(),
		TenderID:    input.TenderID,
		EvaluatorID: input.EvaluatorID,
		BidderName:  input.BidderName,
		Items:       input.Items,
		TotalScore:  totalScore(input.Items),
		Status:      input.Status,
		SubmittedAt: s.now(),
	}

	unlock := s.locks.Lock(input.TenderID)
	defer unlock()

	if err := s.submissionRepo.Upsert(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	log.Printf("📥 Scores from %s stored for tender %s (%s)\n", submission.EvaluatorID, submission.TenderID, submission.BidderName)
	return submission, nil
}

func (s *submissionService) GetScores(ctx context.Context, tenderID string) ([]models.ScoreSubmission, error) {
	submissions, err := s.submissionRepo.FindByTenderID(ctx, tenderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get scores: %w", err)
	}
	if submissions == nil {
		submissions = []models.ScoreSubmission{}
	}
	return submissions, nil
}

// normalizeInput checks the fields every protocol needs and fills defaults.
func normalizeInput(input SubmitInput) (SubmitInput, error) {
	input.TenderID = strings.TrimSpace(input.TenderID)
	input.EvaluatorID = strings.TrimSpace(input.EvaluatorID)

	if input.TenderID == "" {
		return input, models.ValidationError("tender_id is required")
	}
	if input.EvaluatorID == "" {
		return input, models.ValidationError("evaluator_id is required")
	}
	if len(input.Items) == 0 {
		return input, models.ValidationError("at least one score item is required")
	}

	switch input.Status {
	case "":
		input.Status = models.SubmissionSubmitted
	case models.SubmissionDraft, models.SubmissionSubmitted:
	default:
		return input, models.ValidationError("invalid submission status %q", input.Status)
	}

	items := make([]models.ScoreItem, len(input.Items))
	seen := make(map[cellRef]bool, len(input.Items))

	switch input.Protocol {
	case ProtocolLegacy:
		input.BidderName = strings.TrimSpace(input.BidderName)
		if input.BidderName == "" || input.BidderName == models.AllBidders {
			return input, models.ValidationError("bidder_name is required")
		}
		for i, item := range input.Items {
			item.BidderName = ""
			item.CriterionID = models.CriterionID(strings.TrimSpace(string(item.CriterionID)))
			items[i] = item
		}
	case ProtocolBatched:
		input.BidderName = models.AllBidders
		for i, item := range input.Items {
			item.BidderName = strings.TrimSpace(item.BidderName)
			item.CriterionID = models.CriterionID(strings.TrimSpace(string(item.CriterionID)))
			if item.BidderName == "" || item.BidderName == models.AllBidders {
				return input, models.ValidationError("items[%d]: bidder_name is required", i)
			}
			items[i] = item
		}
	default:
		return input, models.ValidationError("unknown submission protocol %q", input.Protocol)
	}

	for i, item := range items {
		if item.CriterionID == "" {
			return input, models.ValidationError("items[%d]: criterion_id is required", i)
		}
		ref := cellRef{bidder: item.BidderName, criterion: item.CriterionID}
		if seen[ref] {
			return input, models.ValidationError("items[%d]: criterion %s scored twice", i, item.CriterionID)
		}
		seen[ref] = true
	}

	input.Items = items
	return input, nil
}

type cellRef struct {
	bidder    string
	criterion models.CriterionID
}

func validateGeneric(items []models.ScoreItem) error {
	for _, item := range items {
		if !inRange(item.Score, genericMaxScore) {
			return models.NewEngineError(models.KindOutOfBounds, models.CodeScoreOutOfRange,
				"score %v for criterion %s must be between 0 and %.0f", item.Score, item.CriterionID, genericMaxScore)
		}
	}
	return nil
}

func validateAgainstTemplate(template *models.EvaluationTemplate, input SubmitInput) error {
	for _, item := range input.Items {
		criterion, ok := template.Criterion(item.CriterionID)
		if !ok {
			return models.NewEngineError(models.KindValidation, models.CodeUnknownCriterion,
				"criterion %s is not part of template %s", item.CriterionID, template.Name)
		}
		if !inRange(item.Score, criterion.MaxScore) {
			return models.NewEngineError(models.KindOutOfBounds, models.CodeScoreOutOfRange,
				"score %v for %s must be between 0 and %v", item.Score, criterion.Name, criterion.MaxScore)
		}
	}

	if input.Protocol != ProtocolLegacy {
		return nil
	}

	present := make(map[models.CriterionID]bool, len(input.Items))
	for _, item := range input.Items {
		present[item.CriterionID] = true
	}
	for _, criterion := range template.Criteria {
		if !present[criterion.CriterionID] {
			return models.NewEngineError(models.KindValidation, models.CodeMissingCriterion,
				"missing score for criterion %s", criterion.Name)
		}
	}
	return nil
}

func inRange(score, max float64) bool {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return false
	}
	return score >= 0 && score <= max
}

// totalScore is the unweighted sum shown next to a submission. Ranking never
// uses it.
func totalScore(items []models.ScoreItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Score
	}
	return total
}
