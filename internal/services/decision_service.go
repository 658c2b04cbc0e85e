package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"alfredoptarigan/tender-evaluator/internal/models"
	"alfredoptarigan/tender-evaluator/internal/repositories"
)

// DefaultMinRevisionReasonLength is the shortest accepted revision reason.
const DefaultMinRevisionReasonLength = 5

type ApproveInput struct {
	TenderID   string
	ApproverID string
	// WinningBidder overrides the top-ranked bidder when set.
	WinningBidder *string
	Notes         string
}

// ReportQueue accepts approved decisions for committee report narration.
type ReportQueue interface {
	EnqueueJob(decisionID uuid.UUID)
}

type DecisionService interface {
	Approve(ctx context.Context, input ApproveInput) (*models.ChairmanDecision, error)
	RequestRevision(ctx context.Context, tenderID, approverID, reason string) (*models.ChairmanDecision, error)
	GetDecision(ctx context.Context, tenderID string) (*models.ChairmanDecision, error)
	GetHistory(ctx context.Context, tenderID string) ([]models.DecisionHistory, error)
}

type decisionService struct {
	standings       StandingsService
	assignments     AssignmentService
	decisionRepo    repositories.DecisionRepository
	reportQueue     ReportQueue
	metrics         Metrics
	minReasonLength int
	locks           *tenderLocks
	now             func() time.Time
}

type DecisionServiceOption func(*decisionService)

// WithReportQueue queues every approval for report narration.
func WithReportQueue(queue ReportQueue) DecisionServiceOption {
	return func(s *decisionService) { s.reportQueue = queue }
}

func WithMetrics(metrics Metrics) DecisionServiceOption {
	return func(s *decisionService) { s.metrics = metrics }
}

func WithMinRevisionReasonLength(n int) DecisionServiceOption {
	return func(s *decisionService) { s.minReasonLength = n }
}

func NewDecisionService(
	standings StandingsService,
	assignments AssignmentService,
	decisionRepo repositories.DecisionRepository,
	opts ...DecisionServiceOption,
) DecisionService {
	s := &decisionService{
		standings:       standings,
		assignments:     assignments,
		decisionRepo:    decisionRepo,
		metrics:         NopMetrics{},
		minReasonLength: DefaultMinRevisionReasonLength,
		locks:           newTenderLocks(),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Approve freezes the current ranking into an approved decision, replacing
// any earlier decision for the tender, then tries to complete the bound
// assignment. The decision stands even if that status change fails.
func (s *decisionService) Approve(ctx context.Context, input ApproveInput) (*models.ChairmanDecision, error) {
	decision, err := s.approve(ctx, input)
	if err != nil {
		s.metrics.RecordDecision(string(models.DecisionApproved), "rejected")
		return nil, err
	}
	s.metrics.RecordDecision(string(models.DecisionApproved), "accepted")
	return decision, nil
}

func (s *decisionService) approve(ctx context.Context, input ApproveInput) (*models.ChairmanDecision, error) {
	tenderID := strings.TrimSpace(input.TenderID)
	approverID := strings.TrimSpace(input.ApproverID)
	if tenderID == "" {
		return nil, models.ValidationError("tender_id is required")
	}
	if approverID == "" {
		return nil, models.ValidationError("approver_id is required")
	}

	unlock := s.locks.Lock(tenderID)
	defer unlock()

	standings, err := s.standings.GetFinalScores(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	if len(standings.Scores) == 0 {
		return nil, models.NewEngineError(models.KindStateConflict, models.CodeNoScores,
			"tender %s has no aggregated scores to approve", tenderID)
	}

	winner := standings.Scores[0].BidderName
	if input.WinningBidder != nil && strings.TrimSpace(*input.WinningBidder) != "" {
		override := strings.TrimSpace(*input.WinningBidder)
		if !containsBidder(standings.Scores, override) {
			return nil, models.NewEngineError(models.KindValidation, models.CodeUnknownBidder,
				"bidder %q is not in the ranking for tender %s", override, tenderID)
		}
		winner = override
	}

	reportStatus := models.ReportNone
	if s.reportQueue != nil {
		reportStatus = models.ReportQueued
	}

	decision := &models.ChairmanDecision{
		ID:            uuid.New(),
		TenderID:      tenderID,
		Status:        models.DecisionApproved,
		ApproverID:    approverID,
		Notes:         strings.TrimSpace(input.Notes),
		WinningBidder: winner,
		Ranking:       standings.Scores,
		DecidedAt:     s.now(),
		ReportStatus:  reportStatus,
	}

	if err := s.decisionRepo.Save(ctx, decision); err != nil {
		return nil, fmt.Errorf("failed to save decision: %w", err)
	}
	log.Printf("✅ Tender %s approved by %s, winner %s\n", tenderID, approverID, winner)

	if _, err := s.assignments.Complete(ctx, standings.Assignment.ID); err != nil {
		log.Printf("⚠️  Decision %s stored but assignment %s was not completed: %v\n",
			decision.ID, standings.Assignment.ID, err)
	}

	if s.reportQueue != nil {
		s.reportQueue.EnqueueJob(decision.ID)
	}

	return decision, nil
}

// RequestRevision records that the committee must rescore. The assignment is
// left as it is so evaluators can resubmit.
func (s *decisionService) RequestRevision(ctx context.Context, tenderID, approverID, reason string) (*models.ChairmanDecision, error) {
	decision, err := s.requestRevision(ctx, tenderID, approverID, reason)
	if err != nil {
		s.metrics.RecordDecision(string(models.DecisionRevisionRequested), "rejected")
		return nil, err
	}
	s.metrics.RecordDecision(string(models.DecisionRevisionRequested), "accepted")
	return decision, nil
}

func (s *decisionService) requestRevision(ctx context.Context, tenderID, approverID, reason string) (*models.ChairmanDecision, error) {
	tenderID = strings.TrimSpace(tenderID)
	approverID = strings.TrimSpace(approverID)
	reason = strings.TrimSpace(reason)

	if tenderID == "" {
		return nil, models.ValidationError("tender_id is required")
	}
	if approverID == "" {
		return nil, models.ValidationError("approver_id is required")
	}
	if utf8.RuneCountInString(reason) < s.minReasonLength {
		return nil, models.ValidationError("reason must be at least %d characters", s.minReasonLength)
	}

	unlock := s.locks.Lock(tenderID)
	defer unlock()

	decision := &models.ChairmanDecision{
		ID:           uuid.New(),
		TenderID:     tenderID,
		Status:       models.DecisionRevisionRequested,
		ApproverID:   approverID,
		Notes:        reason,
		DecidedAt:    s.now(),
		ReportStatus: models.ReportNone,
	}

	if err := s.decisionRepo.Save(ctx, decision); err != nil {
		return nil, fmt.Errorf("failed to save decision: %w", err)
	}

	log.Printf("📝 Revision requested for tender %s by %s\n", tenderID, approverID)
	return decision, nil
}

func (s *decisionService) GetDecision(ctx context.Context, tenderID string) (*models.ChairmanDecision, error) {
	decision, err := s.decisionRepo.FindByTenderID(ctx, tenderID)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			return nil, models.NewEngineError(models.KindNotFound, models.CodeDecisionNotFound,
				"no decision for tender %s", tenderID)
		}
		return nil, fmt.Errorf("failed to get decision: %w", err)
	}
	return decision, nil
}

func (s *decisionService) GetHistory(ctx context.Context, tenderID string) ([]models.DecisionHistory, error) {
	history, err := s.decisionRepo.History(ctx, tenderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get decision history: %w", err)
	}
	if history == nil {
		history = []models.DecisionHistory{}
	}
	return history, nil
}

func containsBidder(scores []models.FinalScore, bidder string) bool {
	for _, s := range scores {
		if s.BidderName == bidder {
			return true
		}
	}
	return false
}
