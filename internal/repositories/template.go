package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/tender-evaluator/internal/models"
)

// TemplateRepository is append-only: templates are never updated or deleted.
type TemplateRepository interface {
	Create(ctx context.Context, template *models.EvaluationTemplate) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.EvaluationTemplate, error)
	FindByName(ctx context.Context, name string) (*models.EvaluationTemplate, error)
	List(ctx context.Context) ([]models.EvaluationTemplate, error)
}

type templateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(ctx context.Context, template *models.EvaluationTemplate) error {
	if err := r.db.WithContext(ctx).Create(template).Error; err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

func (r *templateRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.EvaluationTemplate, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *templateRepository) FindByName(ctx context.Context, name string) (*models.EvaluationTemplate, error) {
	return r.findOne(ctx, "name = ?", name)
}

func (r *templateRepository) findOne(ctx context.Context, query string, arg any) (*models.EvaluationTemplate, error) {
	var template models.EvaluationTemplate
	err := r.withCriteria(ctx).
		Where(query, arg).
		Order("created_at ASC").
		First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find template: %w", err)
	}
	return &template, nil
}

func (r *templateRepository) List(ctx context.Context) ([]models.EvaluationTemplate, error) {
	var templates []models.EvaluationTemplate
	if err := r.withCriteria(ctx).Order("created_at ASC").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

func (r *templateRepository) withCriteria(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Criteria", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}
