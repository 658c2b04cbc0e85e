package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/tender-evaluator/internal/models"
)

func TestSubmitLegacy(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a complete submission", func(t *testing.T) {
		env := newTestEnv()
		template := env.consultingTemplate(t)
		env.assign(t, "T1", template.ID)

		sub, err := env.submissions.SubmitLegacy(ctx, "T1", models.SubmitLegacyScoresRequest{
			EvaluatorID: "E1",
			BidderName:  "Acme",
			Items: []models.LegacyScoreItem{
				{CriterionID: 1, Score: 50},
				{CriterionID: 2, Score: 30},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "Acme", sub.BidderName)
		assert.Equal(t, 80.0, sub.TotalScore)
		assert.Equal(t, models.SubmissionSubmitted, sub.Status)
		assert.Equal(t, models.CriterionID("1"), sub.Items[0].CriterionID)
	})

	t.Run("score above max is rejected and not stored", func(t *testing.T) {
		env := newTestEnv()
		template := env.consultingTemplate(t)
		env.assign(t, "T1", template.ID)

		_, err := env.submissions.SubmitLegacy(ctx, "T1", models.SubmitLegacyScoresRequest{
			EvaluatorID: "E1",
			BidderName:  "Acme",
			Items: []models.LegacyScoreItem{
				{CriterionID: 1, Score: 61},
				{CriterionID: 2, Score: 30},
			},
		})
		require.Error(t, err)
		assert.Equal(t, models.KindOutOfBounds, models.ErrorKindOf(err))
		assert.Equal(t, models.CodeScoreOutOfRange, models.ErrorCode(err))
		assert.Contains(t, err.Error(), "Technical approach")

		scores, err := env.submissions.GetScores(ctx, "T1")
		require.NoError(t, err)
		assert.Empty(t, scores)
	})

	t.Run("negative and non-finite scores are rejected", func(t *testing.T) {
		env := newTestEnv()
		template := env.consultingTemplate(t)
		env.assign(t, "T1", template.ID)

		for _, score := range []float64{-1, math.NaN(), math.Inf(1)} {
			_, err := env.submissions.SubmitLegacy(ctx, "T1", models.SubmitLegacyScoresRequest{
				EvaluatorID: "E1",
				BidderName:  "Acme",
				Items: []models.LegacyScoreItem{
					{CriterionID: 1, Score: score},
					{CriterionID: 2, Score: 30},
				},
			})
			assert.Equal(t, models.CodeScoreOutOfRange, models.ErrorCode(err), "score %v", score)
		}
	})

	t.Run("missing criterion", func(t *testing.T) {
		env := newTestEnv()
		template := env.consultingTemplate(t)
		env.assign(t, "T1", template.ID)

		_, err := env.submissions.SubmitLegacy(ctx, "T1", models.SubmitLegacyScoresRequest{
			EvaluatorID: "E1",
			BidderName:  "Acme",
			Items:       []models.LegacyScoreItem{{CriterionID: 1, Score: 50}},
		})
		assert.Equal(t, models.KindValidation, models.ErrorKindOf(err))
		assert.Equal(t, models.CodeMissingCriterion, models.ErrorCode(err))
	})

	t.Run("unknown criterion", func(t *testing.T) {
		env := newTestEnv()
		template := env.consultingTemplate(t)
		env.assign(t, "T1", template.ID)

		_, err := env.submissions.SubmitLegacy(ctx, "T1", models.SubmitLegacyScoresRequest{
			EvaluatorID: "E1",
			BidderName:  "Acme",
			Items: []models.LegacyScoreItem{
				{CriterionID: 1, Score: 50},
				{CriterionID: 2, Score: 30},
				{CriterionID: 9, Score: 1},
			},
		})
		assert.Equal(t, models.CodeUnknownCriterion, models.ErrorCode(err))
	})

	t.Run("bidder is required", func(t *testing.T) {
		env := newTestEnv()
		template := env.consultingTemplate(t)
		env.assign(t, "T1", template.ID)

		_, err := env.submissions.SubmitLegacy(ctx, "T1", models.SubmitLegacyScoresRequest{
			EvaluatorID: "E1",
			Items:       []models.LegacyScoreItem{{CriterionID: 1, Score: 50}},
		})
		assert.Equal(t, models.KindValidation, models.ErrorKindOf(err))
	})

	t.Run("no assignment", func(t *testing.T) {
		env := newTestEnv()
		env.consultingTemplate(t)

		_, err := env.submissions.SubmitLegacy(ctx, "T404", models.SubmitLegacyScoresRequest{
			EvaluatorID: "E1",
			BidderName:  "Acme",
			Items:       []models.LegacyScoreItem{{CriterionID: 1, Score: 50}},
		})
		assert.Equal(t, models.KindNotFound, models.ErrorKindOf(err))
		assert.Equal(t, models.CodeAssignmentNotFound, models.ErrorCode(err))
	})

	t.Run("resubmission replaces the earlier one", func(t *testing.T) {
		env := newTestEnv()
		template := env.consultingTemplate(t)
		env.assign(t, "T1", template.ID)

		env.submitLegacy(t, "T1", "E1", "Acme", 40, 20)
		first, err := env.submissions.GetScores(ctx, "T1")
		require.NoError(t, err)
		require.Len(t, first, 1)

		env.submitLegacy(t, "T1", "E1", "Acme", 50, 30)
		second, err := env.submissions.GetScores(ctx, "T1")
		require.NoError(t, err)
		require.Len(t, second, 1)
		assert.Equal(t, first[0].ID, second[0].ID)
		assert.Equal(t, 80.0, second[0].TotalScore)
	})
}

func TestSubmitBatched(t *testing.T) {
	ctx := context.Background()

	t.Run("scores several bidders and allows partial coverage", func(t *testing.T) {
		env := newTestEnv()
		template := env.consultingTemplate(t)
		env.assign(t, "T1", template.ID)

		sub, err := env.submissions.SubmitBatched(ctx, "T1", models.SubmitScoresRequest{
			EvaluatorID: "E1",
			Items: []models.ScoreItem{
				{BidderName: "Acme", CriterionID: "1", Score: 50},
				{BidderName: "Beta", CriterionID: "1", Score: 45},
				{BidderName: "Beta", CriterionID: "2", Score: 35},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, models.AllBidders, sub.BidderName)
		assert.True(t, sub.IsBatched())
		assert.Equal(t, 130.0, sub.TotalScore)
	})

	t.Run("each item needs a bidder", func(t *testing.T) {
		env := newTestEnv()
		template := env.consultingTemplate(t)
		env.assign(t, "T1", template.ID)

		_, err := env.submissions.SubmitBatched(ctx, "T1", models.SubmitScoresRequest{
			EvaluatorID: "E1",
			Items:       []models.ScoreItem{{CriterionID: "1", Score: 50}},
		})
		assert.Equal(t, models.KindValidation, models.ErrorKindOf(err))
	})

	t.Run("duplicate cell is rejected", func(t *testing.T) {
		env := newTestEnv()
		template := env.consultingTemplate(t)
		env.assign(t, "T1", template.ID)

		_, err := env.submissions.SubmitBatched(ctx, "T1", models.SubmitScoresRequest{
			EvaluatorID: "E1",
			Items: []models.ScoreItem{
				{BidderName: "Acme", CriterionID: "1", Score: 50},
				{BidderName: "Acme", CriterionID: "1", Score: 40},
			},
		})
		assert.Equal(t, models.KindValidation, models.ErrorKindOf(err))
	})

	t.Run("invalid status", func(t *testing.T) {
		env := newTestEnv()
		template := env.consultingTemplate(t)
		env.assign(t, "T1", template.ID)

		_, err := env.submissions.SubmitBatched(ctx, "T1", models.SubmitScoresRequest{
			EvaluatorID: "E1",
			Status:      "final",
			Items:       []models.ScoreItem{{BidderName: "Acme", CriterionID: "1", Score: 50}},
		})
		assert.Equal(t, models.KindValidation, models.ErrorKindOf(err))
	})
}

func TestSubmitWithDanglingTemplate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	start := time.Now()
	require.NoError(t, env.assignmentRepo.Create(ctx, &models.CommitteeAssignment{
		ID:                   uuid.New(),
		TenderID:             "T9",
		EvaluationTemplateID: uuid.New(),
		CommitteeTemplateID:  "committee-a",
		WindowStart:          start,
		WindowEnd:            start.Add(time.Hour),
		Status:               models.AssignmentActive,
	}))

	sub, err := env.submissions.SubmitLegacy(ctx, "T9", models.SubmitLegacyScoresRequest{
		EvaluatorID: "E1",
		BidderName:  "Acme",
		Items:       []models.LegacyScoreItem{{CriterionID: 7, Score: 95}},
	})
	require.NoError(t, err)
	assert.Equal(t, 95.0, sub.TotalScore)

	_, err = env.submissions.SubmitLegacy(ctx, "T9", models.SubmitLegacyScoresRequest{
		EvaluatorID: "E2",
		BidderName:  "Acme",
		Items:       []models.LegacyScoreItem{{CriterionID: 7, Score: 101}},
	})
	assert.Equal(t, models.CodeScoreOutOfRange, models.ErrorCode(err))

	scores, err := env.submissions.GetScores(ctx, "T9")
	require.NoError(t, err)
	assert.Len(t, scores, 1)
}

func TestGetScoresEmpty(t *testing.T) {
	env := newTestEnv()
	scores, err := env.submissions.GetScores(context.Background(), "nothing")
	require.NoError(t, err)
	assert.NotNil(t, scores)
	assert.Empty(t, scores)
}
