package models

import (
	"time"

	"github.com/google/uuid"
)

type Methodology string

const (
	MethodologyQCBS Methodology = "QCBS"
	MethodologyLCS  Methodology = "LCS"
	MethodologyQBS  Methodology = "QBS"
	MethodologyFBS  Methodology = "FBS"
)

// IsKnown reports whether m is one of the supported methodologies.
func (m Methodology) IsKnown() bool {
	switch m {
	case MethodologyQCBS, MethodologyLCS, MethodologyQBS, MethodologyFBS:
		return true
	}
	return false
}

type CriterionKind string

const (
	CriterionTechnical CriterionKind = "technical"
	CriterionFinancial CriterionKind = "financial"
)

// CriterionID identifies a criterion within its template. Legacy clients send
// numeric ids; they are converted to their decimal string form on the way in.
type CriterionID string

type EvaluationTemplate struct {
	ID          uuid.UUID             `gorm:"type:uuid;primary_key" json:"id"`
	Name        string                `gorm:"type:text;not null" json:"name"`
	Methodology Methodology           `gorm:"type:text;not null" json:"methodology"`
	Criteria    []EvaluationCriterion `gorm:"foreignKey:TemplateID;constraint:OnDelete:RESTRICT" json:"criteria"`
	CreatedAt   time.Time             `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (EvaluationTemplate) TableName() string {
	return "evaluation_templates"
}

// Criterion returns the criterion with the given id.
func (t *EvaluationTemplate) Criterion(id CriterionID) (EvaluationCriterion, bool) {
	for _, c := range t.Criteria {
		if c.CriterionID == id {
			return c, true
		}
	}
	return EvaluationCriterion{}, false
}

type EvaluationCriterion struct {
	// RowID is the storage key; CriterionID is the id scores refer to.
	RowID       uuid.UUID     `gorm:"type:uuid;primary_key" json:"-"`
	TemplateID  uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_template_criterion" json:"-"`
	CriterionID CriterionID   `gorm:"type:text;not null;uniqueIndex:idx_template_criterion" json:"id"`
	Name        string        `gorm:"type:text;not null" json:"name"`
	Kind        CriterionKind `gorm:"type:text;not null" json:"kind"`
	MaxScore    float64       `gorm:"type:numeric;not null" json:"max_score"`
	Position    int           `gorm:"not null" json:"-"`
}

func (EvaluationCriterion) TableName() string {
	return "evaluation_criteria"
}
