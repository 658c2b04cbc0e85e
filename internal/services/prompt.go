package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/tender-evaluator/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildCommitteeReportPrompt creates the prompt for the narrative attached to
// an approved decision.
func (pb *PromptBuilder) BuildCommitteeReportPrompt(decision *models.ChairmanDecision, methodology models.Methodology) string {
	return fmt.Sprintf(`You are the secretary of a government tender evaluation committee drafting the evaluation summary for the record.

TENDER: %s
EVALUATION METHODOLOGY: %s (%s)
APPROVED BY: %s
WINNING BIDDER: %s

FINAL RANKING:
%s
CHAIRMAN NOTES:
%s

Write a neutral, factual summary of 3-5 sentences for the procurement file:
- State the methodology and how technical and financial scores were combined.
- Name the winning bidder and its final score.
- Mention the margin to the next-ranked bidder, if any.
- If the winning bidder is not ranked first, state that the chairman selected it and refer to the notes.

Do not invent facts that are not in the data above. Return plain text only.`,
		decision.TenderID,
		methodology,
		methodologyDescription(methodology),
		decision.ApproverID,
		decision.WinningBidder,
		FormatRanking(decision.Ranking),
		orNone(decision.Notes),
	)
}

// FormatRanking renders a ranking as one line per bidder.
func FormatRanking(ranking []models.FinalScore) string {
	var b strings.Builder
	for _, s := range ranking {
		fmt.Fprintf(&b, "%d. %s - technical %.2f%%, financial %.2f%%, final %.2f%%\n",
			s.Rank, s.BidderName, s.TechnicalScore, s.FinancialScore, s.FinalScore)
	}
	return b.String()
}

func methodologyDescription(m models.Methodology) string {
	switch m {
	case models.MethodologyQCBS:
		return "quality and cost based, 70% technical / 30% financial"
	case models.MethodologyLCS:
		return "least cost, 80% financial / 20% technical once technical reaches 75%"
	case models.MethodologyQBS:
		return "quality based, technical score only"
	case models.MethodologyFBS:
		return "fixed budget, 90% technical / 10% financial"
	}
	return "unrecognised, combined with QCBS weights"
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}
