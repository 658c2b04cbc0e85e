package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"alfredoptarigan/tender-evaluator/internal/models"
)

type SubmissionRepository interface {
	// Upsert stores the submission keyed by (tender, evaluator, bidder). An
	// existing row is overwritten in place and keeps its id.
	Upsert(ctx context.Context, submission *models.ScoreSubmission) error
	// FindByTenderID returns submissions in creation order. Resubmitting
	// keeps a submission's place.
	FindByTenderID(ctx context.Context, tenderID string) ([]models.ScoreSubmission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Upsert(ctx context.Context, submission *models.ScoreSubmission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockTender(tx, submission.TenderID); err != nil {
			return err
		}

		var existing models.ScoreSubmission
		err := tx.Where("tender_id = ? AND evaluator_id = ? AND bidder_name = ?",
			submission.TenderID, submission.EvaluatorID, submission.BidderName).
			First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(submission).Error; err != nil {
				return fmt.Errorf("failed to create submission: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("failed to find submission: %w", err)
		}

		submission.ID = existing.ID
		submission.CreatedAt = existing.CreatedAt
		if err := tx.Save(submission).Error; err != nil {
			return fmt.Errorf("failed to update submission: %w", err)
		}
		return nil
	})
}

func (r *submissionRepository) FindByTenderID(ctx context.Context, tenderID string) ([]models.ScoreSubmission, error) {
	var submissions []models.ScoreSubmission
	err := r.db.WithContext(ctx).
		Where("tender_id = ?", tenderID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&submissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find submissions: %w", err)
	}
	return submissions, nil
}
