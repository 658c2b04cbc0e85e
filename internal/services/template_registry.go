package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"alfredoptarigan/tender-evaluator/internal/models"
	"alfredoptarigan/tender-evaluator/internal/repositories"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type TemplateRegistry interface {
	CreateTemplate(ctx context.Context, req models.CreateTemplateRequest) (*models.EvaluationTemplate, error)
	GetTemplate(ctx context.Context, id uuid.UUID) (*models.EvaluationTemplate, error)
	ListTemplates(ctx context.Context) ([]models.EvaluationTemplate, error)
}

type templateRegistry struct {
	templateRepo repositories.TemplateRepository
}

func NewTemplateRegistry(templateRepo repositories.TemplateRepository) TemplateRegistry {
	return &templateRegistry{templateRepo: templateRepo}
}

// CreateTemplate always creates a new template with a fresh id; changing a
// methodology means registering a new one.
func (r *templateRegistry) CreateTemplate(ctx context.Context, req models.CreateTemplateRequest) (*models.EvaluationTemplate, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	template := &models.EvaluationTemplate{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Methodology: req.Methodology,
	}

	seen := make(map[models.CriterionID]bool, len(req.Criteria))
	for i, c := range req.Criteria {
		id := models.CriterionID(strings.TrimSpace(string(c.ID)))
		if seen[id] {
			return nil, models.ValidationError("duplicate criterion id %q", id)
		}
		seen[id] = true

		template.Criteria = append(template.Criteria, models.EvaluationCriterion{
			RowID:       uuid.New(),
			TemplateID:  template.ID,
			CriterionID: id,
			Name:        strings.TrimSpace(c.Name),
			Kind:        c.Kind,
			MaxScore:    c.MaxScore,
			Position:    i,
		})
	}

	if err := r.templateRepo.Create(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	return template, nil
}

func (r *templateRegistry) GetTemplate(ctx context.Context, id uuid.UUID) (*models.EvaluationTemplate, error) {
	template, err := r.templateRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			return nil, models.NewEngineError(models.KindNotFound, models.CodeTemplateNotFound, "template %s not found", id)
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return template, nil
}

func (r *templateRegistry) ListTemplates(ctx context.Context) ([]models.EvaluationTemplate, error) {
	templates, err := r.templateRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// validateStruct runs struct-tag validation and reports the first failure as
// an engine validation error.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		return models.ValidationError("%s failed on %q", fe.Namespace(), fe.Tag())
	}
	return models.ValidationError("%v", err)
}
