package repositories

import "gorm.io/gorm"

// Store bundles the repositories backing one evaluation engine.
type Store struct {
	Templates   TemplateRepository
	Assignments AssignmentRepository
	Submissions SubmissionRepository
	Decisions   DecisionRepository
}

func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Templates:   NewTemplateRepository(db),
		Assignments: NewAssignmentRepository(db),
		Submissions: NewSubmissionRepository(db),
		Decisions:   NewDecisionRepository(db),
	}
}

// NewMemoryStore keeps everything in process memory; data is lost on restart.
func NewMemoryStore() *Store {
	return &Store{
		Templates:   NewMemoryTemplateRepository(),
		Assignments: NewMemoryAssignmentRepository(),
		Submissions: NewMemorySubmissionRepository(),
		Decisions:   NewMemoryDecisionRepository(),
	}
}
