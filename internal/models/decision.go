package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type DecisionStatus string

const (
	DecisionApproved          DecisionStatus = "approved"
	DecisionRevisionRequested DecisionStatus = "revision_requested"
)

type ReportStatus string

const (
	ReportNone      ReportStatus = "none"
	ReportQueued    ReportStatus = "queued"
	ReportRunning   ReportStatus = "running"
	ReportCompleted ReportStatus = "completed"
	ReportFailed    ReportStatus = "failed"
)

// FinalScore is one bidder's standing. It is derived from submissions and is
// only stored as part of an approved decision's snapshot.
type FinalScore struct {
	BidderName     string  `json:"bidder_name"`
	TechnicalScore float64 `json:"technical_score"`
	FinancialScore float64 `json:"financial_score"`
	FinalScore     float64 `json:"final_score"`
	Rank           int     `json:"rank"`
}

type ChairmanDecision struct {
	ID            uuid.UUID                       `gorm:"type:uuid;primary_key" json:"id"`
	TenderID      string                          `gorm:"type:text;not null;uniqueIndex" json:"tender_id"`
	Status        DecisionStatus                  `gorm:"type:text;not null" json:"status"`
	ApproverID    string                          `gorm:"type:text;not null" json:"approver_id"`
	Notes         string                          `gorm:"type:text" json:"notes,omitempty"`
	WinningBidder string                          `gorm:"type:text" json:"winning_bidder,omitempty"`
	Ranking       datatypes.JSONSlice[FinalScore] `gorm:"type:jsonb" json:"ranking,omitempty"`
	DecidedAt     time.Time                       `gorm:"not null" json:"decided_at"`
	ReportStatus  ReportStatus                    `gorm:"type:text;not null;default:'none'" json:"report_status"`
	ReportSummary *string                         `gorm:"type:text" json:"report_summary,omitempty"`
	UpdatedAt     time.Time                       `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ChairmanDecision) TableName() string {
	return "chairman_decisions"
}

// DecisionHistory is an append-only log of every decision filed.
type DecisionHistory struct {
	ID            uuid.UUID                       `gorm:"type:uuid;primary_key" json:"id"`
	DecisionID    uuid.UUID                       `gorm:"type:uuid;not null" json:"decision_id"`
	TenderID      string                          `gorm:"type:text;not null;index" json:"tender_id"`
	Status        DecisionStatus                  `gorm:"type:text;not null" json:"status"`
	ApproverID    string                          `gorm:"type:text;not null" json:"approver_id"`
	Notes         string                          `gorm:"type:text" json:"notes,omitempty"`
	WinningBidder string                          `gorm:"type:text" json:"winning_bidder,omitempty"`
	Ranking       datatypes.JSONSlice[FinalScore] `gorm:"type:jsonb" json:"ranking,omitempty"`
	DecidedAt     time.Time                       `gorm:"not null" json:"decided_at"`
}

func (DecisionHistory) TableName() string {
	return "decision_history"
}

func (d *ChairmanDecision) HistoryEntry() DecisionHistory {
	return DecisionHistory{
		ID:            uuid.New(),
		DecisionID:    d.ID,
		TenderID:      d.TenderID,
		Status:        d.Status,
		ApproverID:    d.ApproverID,
		Notes:         d.Notes,
		WinningBidder: d.WinningBidder,
		Ranking:       d.Ranking,
		DecidedAt:     d.DecidedAt,
	}
}
