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

type DecisionRepository interface {
	// Save replaces the tender's current decision and appends it to the
	// decision history.
	Save(ctx context.Context, decision *models.ChairmanDecision) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ChairmanDecision, error)
	FindByTenderID(ctx context.Context, tenderID string) (*models.ChairmanDecision, error)
	History(ctx context.Context, tenderID string) ([]models.DecisionHistory, error)
	UpdateReport(ctx context.Context, id uuid.UUID, status models.ReportStatus, summary *string) error
	FindPendingReports(ctx context.Context, limit int) ([]models.ChairmanDecision, error)
	// ClaimReport moves a queued report to running. It reports false when
	// another worker already claimed it or the decision is gone.
	ClaimReport(ctx context.Context, id uuid.UUID) (bool, error)
}

type decisionRepository struct {
	db *gorm.DB
}

func NewDecisionRepository(db *gorm.DB) DecisionRepository {
	return &decisionRepository{db: db}
}

func (r *decisionRepository) Save(ctx context.Context, decision *models.ChairmanDecision) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockTender(tx, decision.TenderID); err != nil {
			return err
		}

		if err := tx.Where("tender_id = ?", decision.TenderID).Delete(&models.ChairmanDecision{}).Error; err != nil {
			return fmt.Errorf("failed to replace decision: %w", err)
		}

		if err := tx.Create(decision).Error; err != nil {
			return fmt.Errorf("failed to create decision: %w", err)
		}

		entry := decision.HistoryEntry()
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to append decision history: %w", err)
		}
		return nil
	})
}

func (r *decisionRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.ChairmanDecision, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *decisionRepository) FindByTenderID(ctx context.Context, tenderID string) (*models.ChairmanDecision, error) {
	return r.findOne(ctx, "tender_id = ?", tenderID)
}

func (r *decisionRepository) findOne(ctx context.Context, query string, arg any) (*models.ChairmanDecision, error) {
	var decision models.ChairmanDecision
	if err := r.db.WithContext(ctx).Where(query, arg).First(&decision).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find decision: %w", err)
	}
	return &decision, nil
}

func (r *decisionRepository) History(ctx context.Context, tenderID string) ([]models.DecisionHistory, error) {
	var history []models.DecisionHistory
	err := r.db.WithContext(ctx).
		Where("tender_id = ?", tenderID).
		Order("decided_at ASC").
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load decision history: %w", err)
	}
	return history, nil
}

func (r *decisionRepository) UpdateReport(ctx context.Context, id uuid.UUID, status models.ReportStatus, summary *string) error {
	updates := map[string]interface{}{
		"report_status": status,
		"updated_at":    time.Now(),
	}
	if summary != nil {
		updates["report_summary"] = *summary
	}

	result := r.db.WithContext(ctx).Model(&models.ChairmanDecision{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrRecordNotFound
	}
	return nil
}

func (r *decisionRepository) ClaimReport(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.ChairmanDecision{}).
		Where("id = ? AND report_status = ?", id, models.ReportQueued).
		Updates(map[string]interface{}{
			"report_status": models.ReportRunning,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim report: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *decisionRepository) FindPendingReports(ctx context.Context, limit int) ([]models.ChairmanDecision, error) {
	var decisions []models.ChairmanDecision
	err := r.db.WithContext(ctx).
		Where("report_status = ?", models.ReportQueued).
		Order("decided_at ASC").
		Limit(limit).
		Find(&decisions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending reports: %w", err)
	}
	return decisions, nil
}
