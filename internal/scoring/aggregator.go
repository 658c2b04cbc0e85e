// Package scoring turns committee score submissions into ranked final scores.
// Everything here is pure and safe for concurrent use.
package scoring

import (
	"fmt"
	"time"

	"alfredoptarigan/tender-evaluator/internal/models"
)

// ZeroPolicy decides whether a zero score takes part in the per-criterion mean.
type ZeroPolicy string

const (
	// ExcludeZeros treats a zero as "not meaningfully scored": it is left out
	// of the mean, so [0, 80] averages to 80.
	ExcludeZeros ZeroPolicy = "exclude"

	// IncludeZeros counts a zero as a real score: [0, 80] averages to 40.
	IncludeZeros ZeroPolicy = "include"
)

// ParseZeroPolicy maps a configuration string to a ZeroPolicy.
func ParseZeroPolicy(s string) (ZeroPolicy, error) {
	switch ZeroPolicy(s) {
	case ExcludeZeros, IncludeZeros:
		return ZeroPolicy(s), nil
	case "":
		return ExcludeZeros, nil
	}
	return "", fmt.Errorf("unknown zero score policy %q", s)
}

// BidderAggregate holds one bidder's averaged score per criterion.
// Criteria with no qualifying score are absent from the map.
type BidderAggregate struct {
	BidderName string
	Criteria   map[models.CriterionID]float64
}

type evaluatorScore struct {
	score       float64
	submittedAt time.Time
}

type cellKey struct {
	bidder    string
	criterion models.CriterionID
}

// Aggregate groups submissions by bidder and criterion and averages the
// scores contributed by distinct evaluators. When one evaluator scored the
// same (bidder, criterion) more than once across submissions, the most
// recently submitted score wins; equal submission times fall back to slice
// order. Draft submissions are ignored.
//
// Bidders appear in the order they were first seen, and a bidder left with no
// qualifying score is dropped. Callers pass submissions in creation order so
// that resubmitting does not reorder bidders.
func Aggregate(submissions []models.ScoreSubmission, policy ZeroPolicy) []BidderAggregate {
	perEvaluator := make(map[cellKey]map[string]evaluatorScore)
	var bidderOrder []string
	seenBidder := make(map[string]bool)

	for i := range submissions {
		sub := &submissions[i]
		if sub.Status == models.SubmissionDraft {
			continue
		}
		for _, item := range sub.Items {
			bidder := sub.BidderFor(item)
			if bidder == "" || bidder == models.AllBidders {
				continue
			}
			if !seenBidder[bidder] {
				seenBidder[bidder] = true
				bidderOrder = append(bidderOrder, bidder)
			}

			key := cellKey{bidder: bidder, criterion: item.CriterionID}
			if perEvaluator[key] == nil {
				perEvaluator[key] = make(map[string]evaluatorScore)
			}
			if prev, ok := perEvaluator[key][sub.EvaluatorID]; ok && sub.SubmittedAt.Before(prev.submittedAt) {
				continue
			}
			perEvaluator[key][sub.EvaluatorID] = evaluatorScore{score: item.Score, submittedAt: sub.SubmittedAt}
		}
	}

	means := make(map[string]map[models.CriterionID]float64)
	for key, byEvaluator := range perEvaluator {
		var sum float64
		var count int
		for _, entry := range byEvaluator {
			score := entry.score
			if policy != IncludeZeros && score <= 0 {
				continue
			}
			sum += score
			count++
		}
		if count == 0 {
			continue
		}
		if means[key.bidder] == nil {
			means[key.bidder] = make(map[models.CriterionID]float64)
		}
		means[key.bidder][key.criterion] = sum / float64(count)
	}

	aggregates := make([]BidderAggregate, 0, len(means))
	for _, bidder := range bidderOrder {
		criteria, ok := means[bidder]
		if !ok {
			continue
		}
		aggregates = append(aggregates, BidderAggregate{BidderName: bidder, Criteria: criteria})
	}

	return aggregates
}
