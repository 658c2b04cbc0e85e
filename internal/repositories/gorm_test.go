package repositories

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/tender-evaluator/internal/config"
	"alfredoptarigan/tender-evaluator/internal/models"
)

// openTestDB connects to TEST_DATABASE_DSN; the gorm repositories are only
// exercised when a Postgres instance is available.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

func TestGormStore(t *testing.T) {
	db := openTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()
	tenderID := "gorm-" + uuid.NewString()

	template := &models.EvaluationTemplate{
		ID:          uuid.New(),
		Name:        "Gorm template " + tenderID,
		Methodology: models.MethodologyQCBS,
	}
	template.Criteria = []models.EvaluationCriterion{
		{RowID: uuid.New(), TemplateID: template.ID, CriterionID: "2", Name: "Price", Kind: models.CriterionFinancial, MaxScore: 40, Position: 1},
		{RowID: uuid.New(), TemplateID: template.ID, CriterionID: "1", Name: "Approach", Kind: models.CriterionTechnical, MaxScore: 60, Position: 0},
	}
	require.NoError(t, store.Templates.Create(ctx, template))

	found, err := store.Templates.FindByID(ctx, template.ID)
	require.NoError(t, err)
	require.Len(t, found.Criteria, 2)
	assert.Equal(t, models.CriterionID("1"), found.Criteria[0].CriterionID)

	start := time.Now()
	assignment := &models.CommitteeAssignment{
		ID:                   uuid.New(),
		TenderID:             tenderID,
		EvaluationTemplateID: template.ID,
		CommitteeTemplateID:  "committee-a",
		WindowStart:          start,
		WindowEnd:            start.Add(time.Hour),
		Status:               models.AssignmentActive,
	}
	require.NoError(t, store.Assignments.Create(ctx, assignment))

	duplicate := *assignment
	duplicate.ID = uuid.New()
	assert.ErrorIs(t, store.Assignments.Create(ctx, &duplicate), ErrDuplicateOpenAssignment)

	sub := &models.ScoreSubmission{
		ID:          uuid.New(),
		TenderID:    tenderID,
		EvaluatorID: "E1",
		BidderName:  "Acme",
		Items:       []models.ScoreItem{{CriterionID: "1", Score: 50}, {CriterionID: "2", Score: 30}},
		TotalScore:  80,
		Status:      models.SubmissionSubmitted,
		SubmittedAt: time.Now(),
	}
	require.NoError(t, store.Submissions.Upsert(ctx, sub))
	firstID := sub.ID

	again := *sub
	again.ID = uuid.New()
	again.TotalScore = 90
	require.NoError(t, store.Submissions.Upsert(ctx, &again))
	assert.Equal(t, firstID, again.ID)

	subs, err := store.Submissions.FindByTenderID(ctx, tenderID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, 90.0, subs[0].TotalScore)
	assert.Len(t, subs[0].Items, 2)

	for _, approver := range []string{"chair", "deputy"} {
		decision := &models.ChairmanDecision{
			ID:            uuid.New(),
			TenderID:      tenderID,
			Status:        models.DecisionApproved,
			ApproverID:    approver,
			WinningBidder: "Acme",
			Ranking:       []models.FinalScore{{BidderName: "Acme", FinalScore: 84.67, Rank: 1}},
			DecidedAt:     time.Now(),
			ReportStatus:  models.ReportQueued,
		}
		require.NoError(t, store.Decisions.Save(ctx, decision))
	}

	current, err := store.Decisions.FindByTenderID(ctx, tenderID)
	require.NoError(t, err)
	assert.Equal(t, "deputy", current.ApproverID)

	history, err := store.Decisions.History(ctx, tenderID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	claimed, err := store.Decisions.ClaimReport(ctx, current.ID)
	require.NoError(t, err)
	assert.True(t, claimed)
	claimed, err = store.Decisions.ClaimReport(ctx, current.ID)
	require.NoError(t, err)
	assert.False(t, claimed)

	summary := "Acme wins."
	require.NoError(t, store.Decisions.UpdateReport(ctx, current.ID, models.ReportCompleted, &summary))
	updated, err := store.Decisions.FindByID(ctx, current.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportCompleted, updated.ReportStatus)
	require.NotNil(t, updated.ReportSummary)
	assert.Equal(t, summary, *updated.ReportSummary)
}
