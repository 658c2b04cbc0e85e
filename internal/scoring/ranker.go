package scoring

import (
	"sort"

	"alfredoptarigan/tender-evaluator/internal/models"
)

// Rank sorts scores by FinalScore descending and assigns
// rank = 1 + number of strictly higher scores. Equal scores share a rank and
// keep their input order. The input slice is not modified.
func Rank(scores []models.FinalScore) []models.FinalScore {
	ranked := make([]models.FinalScore, len(scores))
	copy(ranked, scores)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})

	for i := range ranked {
		if i > 0 && ranked[i].FinalScore == ranked[i-1].FinalScore {
			ranked[i].Rank = ranked[i-1].Rank
			continue
		}
		ranked[i].Rank = i + 1
	}

	return ranked
}

// Result is the outcome of a full standings computation.
type Result struct {
	Scores []models.FinalScore
	// MethodologyFallback is set when the template's methodology was unknown
	// and QCBS was applied instead.
	MethodologyFallback bool
}

// Compute runs aggregation, combination and ranking for one tender.
func Compute(template *models.EvaluationTemplate, submissions []models.ScoreSubmission, policy ZeroPolicy) Result {
	combine, known := CombinerFor(template.Methodology)

	aggregates := Aggregate(submissions, policy)
	scores := make([]models.FinalScore, 0, len(aggregates))
	for _, agg := range aggregates {
		technical, financial := Percentages(agg, template.Criteria)
		scores = append(scores, models.FinalScore{
			BidderName:     agg.BidderName,
			TechnicalScore: Round2(technical),
			FinancialScore: Round2(financial),
			FinalScore:     Round2(combine(technical, financial)),
		})
	}

	return Result{
		Scores:              Rank(scores),
		MethodologyFallback: !known,
	}
}
