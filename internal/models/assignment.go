package models

import (
	"time"

	"github.com/google/uuid"
)

type AssignmentStatus string

const (
	AssignmentDraft     AssignmentStatus = "draft"
	AssignmentActive    AssignmentStatus = "active"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentSuspended AssignmentStatus = "suspended"
)

func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentDraft, AssignmentActive, AssignmentCompleted, AssignmentSuspended:
		return true
	}
	return false
}

// IsOpen reports whether an assignment in this status still blocks a new one
// for the same tender.
func (s AssignmentStatus) IsOpen() bool {
	return s == AssignmentDraft || s == AssignmentActive
}

type CommitteeAssignment struct {
	ID                   uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	TenderID             string           `gorm:"type:text;not null;index" json:"tender_id"`
	EvaluationTemplateID uuid.UUID        `gorm:"type:uuid;not null" json:"evaluation_template_id"`
	CommitteeTemplateID  string           `gorm:"type:text;not null" json:"committee_template_id"`
	WindowStart          time.Time        `gorm:"not null" json:"window_start"`
	WindowEnd            time.Time        `gorm:"not null" json:"window_end"`
	Status               AssignmentStatus `gorm:"type:text;not null;default:'active'" json:"status"`
	CreatedAt            time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CommitteeAssignment) TableName() string {
	return "committee_assignments"
}
