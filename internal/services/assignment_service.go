package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"alfredoptarigan/tender-evaluator/internal/models"
	"alfredoptarigan/tender-evaluator/internal/repositories"
)

type AssignmentService interface {
	CreateAssignment(ctx context.Context, req models.CreateAssignmentRequest) (*models.CommitteeAssignment, error)
	GetByTenderID(ctx context.Context, tenderID string) (*models.CommitteeAssignment, error)
	// SetStatus is the administrative status change. It cannot complete an
	// assignment; only an approval does that.
	SetStatus(ctx context.Context, id uuid.UUID, status string) (*models.CommitteeAssignment, error)
	// Complete moves an active assignment to completed after an approval.
	Complete(ctx context.Context, id uuid.UUID) (*models.CommitteeAssignment, error)
}

type assignmentService struct {
	assignmentRepo repositories.AssignmentRepository
	templateRepo   repositories.TemplateRepository
	locks          *tenderLocks
}

func NewAssignmentService(
	assignmentRepo repositories.AssignmentRepository,
	templateRepo repositories.TemplateRepository,
) AssignmentService {
	return &assignmentService{
		assignmentRepo: assignmentRepo,
		templateRepo:   templateRepo,
		locks:          newTenderLocks(),
	}
}

func (s *assignmentService) CreateAssignment(ctx context.Context, req models.CreateAssignmentRequest) (*models.CommitteeAssignment, error) {
	req.TenderID = strings.TrimSpace(req.TenderID)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	templateID, err := uuid.Parse(req.EvaluationTemplateID)
	if err != nil {
		return nil, models.ValidationError("invalid evaluation_template_id format")
	}

	if _, err := s.templateRepo.FindByID(ctx, templateID); err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			return nil, models.NewEngineError(models.KindNotFound, models.CodeTemplateNotFound, "template %s not found", templateID)
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	status := models.AssignmentActive
	if req.Status != "" {
		status = models.AssignmentStatus(req.Status)
	}

	assignment := &models.CommitteeAssignment{
		ID:                   uuid.New(),
		TenderID:             req.TenderID,
		EvaluationTemplateID: templateID,
		CommitteeTemplateID:  req.CommitteeTemplateID,
		WindowStart:          req.WindowStart,
		WindowEnd:            req.WindowEnd,
		Status:               status,
	}

	unlock := s.locks.Lock(req.TenderID)
	defer unlock()

	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		if errors.Is(err, repositories.ErrDuplicateOpenAssignment) {
			return nil, models.NewEngineError(models.KindStateConflict, models.CodeDuplicateActiveAssignment,
				"tender %s already has an active assignment", req.TenderID)
		}
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	log.Printf("📋 Assignment %s created for tender %s\n", assignment.ID, assignment.TenderID)
	return assignment, nil
}

func (s *assignmentService) GetByTenderID(ctx context.Context, tenderID string) (*models.CommitteeAssignment, error) {
	assignment, err := s.assignmentRepo.FindByTenderID(ctx, tenderID)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			return nil, assignmentNotFound(tenderID)
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return assignment, nil
}

func (s *assignmentService) SetStatus(ctx context.Context, id uuid.UUID, status string) (*models.CommitteeAssignment, error) {
	target := models.AssignmentStatus(status)
	if !target.IsValid() {
		return nil, models.NewEngineError(models.KindValidation, models.CodeInvalidStatus, "invalid assignment status %q", status)
	}
	if target == models.AssignmentCompleted {
		return nil, models.NewEngineError(models.KindStateConflict, models.CodeInvalidTransition,
			"assignments are completed only by a chairman approval")
	}
	return s.transition(ctx, id, target)
}

func (s *assignmentService) Complete(ctx context.Context, id uuid.UUID) (*models.CommitteeAssignment, error) {
	return s.transition(ctx, id, models.AssignmentCompleted)
}

func (s *assignmentService) transition(ctx context.Context, id uuid.UUID, target models.AssignmentStatus) (*models.CommitteeAssignment, error) {
	current, err := s.assignmentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			return nil, models.NewEngineError(models.KindNotFound, models.CodeAssignmentNotFound, "assignment %s not found", id)
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	if current.Status == target {
		return current, nil
	}
	if !canTransition(current.Status, target) {
		return nil, models.NewEngineError(models.KindStateConflict, models.CodeInvalidTransition,
			"cannot move assignment from %s to %s", current.Status, target)
	}

	unlock := s.locks.Lock(current.TenderID)
	defer unlock()

	updated, err := s.assignmentRepo.UpdateStatus(ctx, id, target)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateOpenAssignment) {
			return nil, models.NewEngineError(models.KindStateConflict, models.CodeDuplicateActiveAssignment,
				"tender %s already has an active assignment", current.TenderID)
		}
		return nil, fmt.Errorf("failed to update assignment status: %w", err)
	}

	log.Printf("🔄 Assignment %s moved from %s to %s\n", id, current.Status, target)
	return updated, nil
}

// canTransition encodes the assignment lifecycle. Any assignment may be
// suspended, including a completed one.
func canTransition(from, to models.AssignmentStatus) bool {
	switch to {
	case models.AssignmentSuspended:
		return true
	case models.AssignmentActive:
		return from == models.AssignmentDraft || from == models.AssignmentSuspended
	case models.AssignmentCompleted:
		return from == models.AssignmentActive
	}
	return false
}

func assignmentNotFound(tenderID string) error {
	return models.NewEngineError(models.KindNotFound, models.CodeAssignmentNotFound, "no assignment for tender %s", tenderID)
}
