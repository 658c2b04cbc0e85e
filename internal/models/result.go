package models

import "time"

type CriterionRequest struct {
	ID       CriterionID   `json:"id" yaml:"id" validate:"required"`
	Name     string        `json:"name" yaml:"name" validate:"required"`
	Kind     CriterionKind `json:"kind" yaml:"kind" validate:"required,oneof=technical financial"`
	MaxScore float64       `json:"max_score" yaml:"max_score" validate:"gt=0"`
}

type CreateTemplateRequest struct {
	Name        string             `json:"name" yaml:"name" validate:"required"`
	Methodology Methodology        `json:"methodology" yaml:"methodology" validate:"required,oneof=QCBS LCS QBS FBS"`
	Criteria    []CriterionRequest `json:"criteria" yaml:"criteria" validate:"required,min=1,dive"`
}

type CreateAssignmentRequest struct {
	TenderID             string    `json:"tender_id" validate:"required"`
	EvaluationTemplateID string    `json:"evaluation_template_id" validate:"required,uuid"`
	CommitteeTemplateID  string    `json:"committee_template_id" validate:"required"`
	WindowStart          time.Time `json:"window_start" validate:"required"`
	WindowEnd            time.Time `json:"window_end" validate:"required,gtfield=WindowStart"`
	Status               string    `json:"status" validate:"omitempty,oneof=draft active"`
}

type UpdateAssignmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type SubmitScoresRequest struct {
	EvaluatorID string      `json:"evaluator_id" validate:"required"`
	Items       []ScoreItem `json:"items" validate:"required,min=1"`
	Status      string      `json:"status" validate:"omitempty,oneof=draft submitted"`
}

type SubmitLegacyScoresRequest struct {
	EvaluatorID string            `json:"evaluator_id" validate:"required"`
	BidderName  string            `json:"bidder_name" validate:"required"`
	Items       []LegacyScoreItem `json:"items" validate:"required,min=1"`
	Status      string            `json:"status" validate:"omitempty,oneof=draft submitted"`
}

type ApproveRequest struct {
	ApproverID    string  `json:"approver_id" validate:"required"`
	WinningBidder *string `json:"winning_bidder,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

type RevisionRequest struct {
	ApproverID string `json:"approver_id" validate:"required"`
	Reason     string `json:"reason"`
}

type FinalScoresResponse struct {
	TenderID    string       `json:"tender_id"`
	Methodology Methodology  `json:"methodology"`
	Scores      []FinalScore `json:"scores"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Kind  string `json:"kind,omitempty"`
}
