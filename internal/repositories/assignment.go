package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/tender-evaluator/internal/models"
)

// ErrDuplicateOpenAssignment is returned when a tender already has a draft or
// active assignment.
var ErrDuplicateOpenAssignment = errors.New("tender already has an open assignment")

type AssignmentRepository interface {
	// Create fails with ErrDuplicateOpenAssignment if the tender already has
	// an open assignment.
	Create(ctx context.Context, assignment *models.CommitteeAssignment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CommitteeAssignment, error)
	// FindByTenderID returns the most recently created assignment.
	FindByTenderID(ctx context.Context, tenderID string) (*models.CommitteeAssignment, error)
	// UpdateStatus fails with ErrDuplicateOpenAssignment when reopening an
	// assignment would give its tender two open assignments.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.AssignmentStatus) (*models.CommitteeAssignment, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.CommitteeAssignment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockTender(tx, assignment.TenderID); err != nil {
			return err
		}

		open, err := countOpenAssignments(tx, assignment.TenderID, uuid.Nil)
		if err != nil {
			return err
		}
		if open > 0 {
			return ErrDuplicateOpenAssignment
		}

		if err := tx.Create(assignment).Error; err != nil {
			return fmt.Errorf("failed to create assignment: %w", err)
		}
		return nil
	})
}

func (r *assignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.CommitteeAssignment, error) {
	var assignment models.CommitteeAssignment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}
	return &assignment, nil
}

func (r *assignmentRepository) FindByTenderID(ctx context.Context, tenderID string) (*models.CommitteeAssignment, error) {
	var assignment models.CommitteeAssignment
	err := r.db.WithContext(ctx).
		Where("tender_id = ?", tenderID).
		Order("created_at DESC").
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}
	return &assignment, nil
}

func (r *assignmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.AssignmentStatus) (*models.CommitteeAssignment, error) {
	var updated models.CommitteeAssignment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&updated).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrRecordNotFound
			}
			return fmt.Errorf("failed to find assignment: %w", err)
		}

		if err := lockTender(tx, updated.TenderID); err != nil {
			return err
		}

		if status.IsOpen() {
			open, err := countOpenAssignments(tx, updated.TenderID, id)
			if err != nil {
				return err
			}
			if open > 0 {
				return ErrDuplicateOpenAssignment
			}
		}

		now := time.Now()
		result := tx.Model(&models.CommitteeAssignment{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":     status,
				"updated_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update status: %w", result.Error)
		}

		updated.Status = status
		updated.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func countOpenAssignments(tx *gorm.DB, tenderID string, exclude uuid.UUID) (int64, error) {
	var count int64
	query := tx.Model(&models.CommitteeAssignment{}).
		Where("tender_id = ? AND status IN ?", tenderID, []models.AssignmentStatus{models.AssignmentDraft, models.AssignmentActive})
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count open assignments: %w", err)
	}
	return count, nil
}

// lockTender serializes writes for one tender across service instances for
// the rest of the transaction.
func lockTender(tx *gorm.DB, tenderID string) error {
	if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "tender:"+tenderID).Error; err != nil {
		return fmt.Errorf("failed to lock tender %s: %w", tenderID, err)
	}
	return nil
}
