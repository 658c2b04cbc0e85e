package scoring

import (
	"math"

	"alfredoptarigan/tender-evaluator/internal/models"
)

// LCSTechnicalThreshold is the technical percentage a bidder must reach under
// Least-Cost Selection before the financial score dominates.
const LCSTechnicalThreshold = 75.0

// CombineFunc merges technical and financial percentages (0-100) into an
// unrounded final percentage.
type CombineFunc func(technical, financial float64) float64

var combiners = map[models.Methodology]CombineFunc{
	models.MethodologyQCBS: combineQCBS,
	models.MethodologyLCS:  combineLCS,
	models.MethodologyQBS:  combineQBS,
	models.MethodologyFBS:  combineFBS,
}

func combineQCBS(technical, financial float64) float64 {
	return 0.70*technical + 0.30*financial
}

// Bidders under the threshold keep half their technical score, which takes
// them out of contention without excluding them from the ranking.
func combineLCS(technical, financial float64) float64 {
	if technical >= LCSTechnicalThreshold {
		return 0.80*financial + 0.20*technical
	}
	return 0.50 * technical
}

func combineQBS(technical, _ float64) float64 {
	return technical
}

func combineFBS(technical, financial float64) float64 {
	return 0.90*technical + 0.10*financial
}

// CombinerFor returns the combination formula for m. Unknown methodologies
// fall back to QCBS and report ok=false so callers can surface the fallback.
func CombinerFor(m models.Methodology) (fn CombineFunc, ok bool) {
	if fn, ok := combiners[m]; ok {
		return fn, true
	}
	return combineQCBS, false
}

// Percentages returns the technical and financial percentages of one bidder:
// 100 x (sum of aggregated scores) / (sum of max scores) per kind. A kind with
// no criteria yields 0.
func Percentages(agg BidderAggregate, criteria []models.EvaluationCriterion) (technical, financial float64) {
	var techSum, techMax, finSum, finMax float64

	for _, c := range criteria {
		score := agg.Criteria[c.CriterionID]
		switch c.Kind {
		case models.CriterionTechnical:
			techSum += score
			techMax += c.MaxScore
		case models.CriterionFinancial:
			finSum += score
			finMax += c.MaxScore
		}
	}

	if techMax > 0 {
		technical = 100 * techSum / techMax
	}
	if finMax > 0 {
		financial = 100 * finSum / finMax
	}
	return technical, financial
}

// Round2 rounds half-up to two decimal places.
func Round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}
