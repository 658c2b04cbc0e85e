package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AllBidders is the bidder name recorded on batched submissions, whose items
// each name their own bidder.
const AllBidders = "all bidders"

type SubmissionStatus string

const (
	SubmissionDraft     SubmissionStatus = "draft"
	SubmissionSubmitted SubmissionStatus = "submitted"
)

type ScoreItem struct {
	BidderName  string      `json:"bidder_name,omitempty"`
	CriterionID CriterionID `json:"criterion_id"`
	Score       float64     `json:"score"`
}

// LegacyScoreItem is the single-bidder item shape with numeric criterion ids.
type LegacyScoreItem struct {
	CriterionID int     `json:"criterion_id"`
	Score       float64 `json:"score"`
}

func (l LegacyScoreItem) ScoreItem() ScoreItem {
	return ScoreItem{
		CriterionID: CriterionID(strconv.Itoa(l.CriterionID)),
		Score:       l.Score,
	}
}

type ScoreSubmission struct {
	ID          uuid.UUID                      `gorm:"type:uuid;primary_key" json:"id"`
	TenderID    string                         `gorm:"type:text;not null;uniqueIndex:idx_submission_key" json:"tender_id"`
	EvaluatorID string                         `gorm:"type:text;not null;uniqueIndex:idx_submission_key" json:"evaluator_id"`
	BidderName  string                         `gorm:"type:text;not null;uniqueIndex:idx_submission_key" json:"bidder_name"`
	Items       datatypes.JSONSlice[ScoreItem] `gorm:"type:jsonb;not null" json:"items"`
	TotalScore  float64                        `gorm:"type:numeric" json:"total_score"`
	Status      SubmissionStatus               `gorm:"type:text;not null;default:'submitted'" json:"status"`
	SubmittedAt time.Time                      `gorm:"not null" json:"submitted_at"`
	CreatedAt   time.Time                      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ScoreSubmission) TableName() string {
	return "score_submissions"
}

// IsBatched reports whether the submission covers several bidders.
func (s *ScoreSubmission) IsBatched() bool {
	return s.BidderName == AllBidders
}

// BidderFor returns the bidder an item scores.
func (s *ScoreSubmission) BidderFor(item ScoreItem) string {
	if item.BidderName != "" {
		return item.BidderName
	}
	return s.BidderName
}
