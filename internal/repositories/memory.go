package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/tender-evaluator/internal/models"
)

// In-memory implementations back STORE_DRIVER=memory and the service tests.
// Each keeps the same uniqueness rules as its gorm counterpart and hands out
// copies so callers cannot mutate stored records.

type memoryTemplateRepository struct {
	mu        sync.RWMutex
	templates []models.EvaluationTemplate
}

func NewMemoryTemplateRepository() TemplateRepository {
	return &memoryTemplateRepository{}
}

func (r *memoryTemplateRepository) Create(_ context.Context, template *models.EvaluationTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if template.CreatedAt.IsZero() {
		template.CreatedAt = time.Now()
	}
	r.templates = append(r.templates, cloneTemplate(*template))
	return nil
}

func (r *memoryTemplateRepository) FindByID(_ context.Context, id uuid.UUID) (*models.EvaluationTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.templates {
		if t.ID == id {
			clone := cloneTemplate(t)
			return &clone, nil
		}
	}
	return nil, models.ErrRecordNotFound
}

func (r *memoryTemplateRepository) FindByName(_ context.Context, name string) (*models.EvaluationTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.templates {
		if t.Name == name {
			clone := cloneTemplate(t)
			return &clone, nil
		}
	}
	return nil, models.ErrRecordNotFound
}

func (r *memoryTemplateRepository) List(_ context.Context) ([]models.EvaluationTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	templates := make([]models.EvaluationTemplate, 0, len(r.templates))
	for _, t := range r.templates {
		templates = append(templates, cloneTemplate(t))
	}
	return templates, nil
}

func cloneTemplate(t models.EvaluationTemplate) models.EvaluationTemplate {
	t.Criteria = append([]models.EvaluationCriterion(nil), t.Criteria...)
	return t
}

type memoryAssignmentRepository struct {
	mu          sync.RWMutex
	assignments []models.CommitteeAssignment
}

func NewMemoryAssignmentRepository() AssignmentRepository {
	return &memoryAssignmentRepository{}
}

func (r *memoryAssignmentRepository) Create(_ context.Context, assignment *models.CommitteeAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hasOpen(assignment.TenderID, uuid.Nil) {
		return ErrDuplicateOpenAssignment
	}
	now := time.Now()
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = now
	}
	if assignment.UpdatedAt.IsZero() {
		assignment.UpdatedAt = now
	}
	r.assignments = append(r.assignments, *assignment)
	return nil
}

func (r *memoryAssignmentRepository) FindByID(_ context.Context, id uuid.UUID) (*models.CommitteeAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.assignments {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, models.ErrRecordNotFound
}

func (r *memoryAssignmentRepository) FindByTenderID(_ context.Context, tenderID string) (*models.CommitteeAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.assignments) - 1; i >= 0; i-- {
		if r.assignments[i].TenderID == tenderID {
			found := r.assignments[i]
			return &found, nil
		}
	}
	return nil, models.ErrRecordNotFound
}

func (r *memoryAssignmentRepository) UpdateStatus(_ context.Context, id uuid.UUID, status models.AssignmentStatus) (*models.CommitteeAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.assignments {
		a := &r.assignments[i]
		if a.ID != id {
			continue
		}
		if status.IsOpen() && r.hasOpen(a.TenderID, id) {
			return nil, ErrDuplicateOpenAssignment
		}
		a.Status = status
		a.UpdatedAt = time.Now()
		updated := *a
		return &updated, nil
	}
	return nil, models.ErrRecordNotFound
}

func (r *memoryAssignmentRepository) hasOpen(tenderID string, exclude uuid.UUID) bool {
	for _, a := range r.assignments {
		if a.TenderID == tenderID && a.ID != exclude && a.Status.IsOpen() {
			return true
		}
	}
	return false
}

type submissionKey struct {
	tenderID    string
	evaluatorID string
	bidderName  string
}

type memorySubmissionRepository struct {
	mu          sync.RWMutex
	submissions map[submissionKey]models.ScoreSubmission
	// order holds keys in first-insert order; upserts keep their slot.
	order []submissionKey
}

func NewMemorySubmissionRepository() SubmissionRepository {
	return &memorySubmissionRepository{
		submissions: make(map[submissionKey]models.ScoreSubmission),
	}
}

func (r *memorySubmissionRepository) Upsert(_ context.Context, submission *models.ScoreSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := submissionKey{submission.TenderID, submission.EvaluatorID, submission.BidderName}
	if existing, ok := r.submissions[key]; ok {
		submission.ID = existing.ID
		submission.CreatedAt = existing.CreatedAt
	} else {
		if submission.CreatedAt.IsZero() {
			submission.CreatedAt = time.Now()
		}
		r.order = append(r.order, key)
	}
	stored := *submission
	stored.Items = append([]models.ScoreItem(nil), submission.Items...)
	r.submissions[key] = stored
	return nil
}

func (r *memorySubmissionRepository) FindByTenderID(_ context.Context, tenderID string) ([]models.ScoreSubmission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var submissions []models.ScoreSubmission
	for _, key := range r.order {
		if key.tenderID != tenderID {
			continue
		}
		s := r.submissions[key]
		s.Items = append([]models.ScoreItem(nil), s.Items...)
		submissions = append(submissions, s)
	}
	return submissions, nil
}

type memoryDecisionRepository struct {
	mu        sync.RWMutex
	decisions map[string]models.ChairmanDecision
	history   []models.DecisionHistory
}

func NewMemoryDecisionRepository() DecisionRepository {
	return &memoryDecisionRepository{
		decisions: make(map[string]models.ChairmanDecision),
	}
}

func (r *memoryDecisionRepository) Save(_ context.Context, decision *models.ChairmanDecision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	decision.UpdatedAt = time.Now()
	r.decisions[decision.TenderID] = cloneDecision(*decision)
	entry := decision.HistoryEntry()
	entry.Ranking = append([]models.FinalScore(nil), entry.Ranking...)
	r.history = append(r.history, entry)
	return nil
}

func (r *memoryDecisionRepository) FindByID(_ context.Context, id uuid.UUID) (*models.ChairmanDecision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.decisions {
		if d.ID == id {
			clone := cloneDecision(d)
			return &clone, nil
		}
	}
	return nil, models.ErrRecordNotFound
}

func (r *memoryDecisionRepository) FindByTenderID(_ context.Context, tenderID string) (*models.ChairmanDecision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.decisions[tenderID]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	clone := cloneDecision(d)
	return &clone, nil
}

func (r *memoryDecisionRepository) History(_ context.Context, tenderID string) ([]models.DecisionHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var history []models.DecisionHistory
	for _, h := range r.history {
		if h.TenderID == tenderID {
			history = append(history, h)
		}
	}
	return history, nil
}

func (r *memoryDecisionRepository) UpdateReport(_ context.Context, id uuid.UUID, status models.ReportStatus, summary *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for tenderID, d := range r.decisions {
		if d.ID != id {
			continue
		}
		d.ReportStatus = status
		if summary != nil {
			text := *summary
			d.ReportSummary = &text
		}
		d.UpdatedAt = time.Now()
		r.decisions[tenderID] = d
		return nil
	}
	return models.ErrRecordNotFound
}

func (r *memoryDecisionRepository) ClaimReport(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for tenderID, d := range r.decisions {
		if d.ID != id {
			continue
		}
		if d.ReportStatus != models.ReportQueued {
			return false, nil
		}
		d.ReportStatus = models.ReportRunning
		d.UpdatedAt = time.Now()
		r.decisions[tenderID] = d
		return true, nil
	}
	return false, nil
}

func (r *memoryDecisionRepository) FindPendingReports(_ context.Context, limit int) ([]models.ChairmanDecision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var pending []models.ChairmanDecision
	for _, d := range r.decisions {
		if d.ReportStatus == models.ReportQueued {
			pending = append(pending, cloneDecision(d))
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].DecidedAt.Before(pending[j].DecidedAt)
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func cloneDecision(d models.ChairmanDecision) models.ChairmanDecision {
	d.Ranking = append([]models.FinalScore(nil), d.Ranking...)
	if d.ReportSummary != nil {
		text := *d.ReportSummary
		d.ReportSummary = &text
	}
	return d
}
