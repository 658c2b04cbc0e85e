package models

import (
	"errors"
	"fmt"
)

// ErrRecordNotFound is returned by repositories when a lookup matches nothing.
var ErrRecordNotFound = errors.New("record not found")

type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "not-found"
	KindOutOfBounds   ErrorKind = "out-of-bounds"
	KindStateConflict ErrorKind = "state-conflict"
)

const (
	CodeValidation                = "validation"
	CodeAssignmentNotFound        = "assignment-not-found"
	CodeTemplateNotFound          = "template-not-found"
	CodeDecisionNotFound          = "decision-not-found"
	CodeDuplicateActiveAssignment = "duplicate-active-assignment"
	CodeInvalidStatus             = "invalid-status"
	CodeInvalidTransition         = "invalid-transition"
	CodeUnknownCriterion          = "unknown-criterion"
	CodeScoreOutOfRange           = "score-out-of-range"
	CodeMissingCriterion          = "missing-criterion"
	CodeNoScores                  = "no-scores"
	CodeUnknownBidder             = "unknown-bidder"
)

// EngineError is the error type surfaced to callers of the evaluation engine.
type EngineError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *EngineError) Unwrap() error { return e.Err }

func NewEngineError(kind ErrorKind, code, format string, args ...any) *EngineError {
	return &EngineError{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func ValidationError(format string, args ...any) *EngineError {
	return NewEngineError(KindValidation, CodeValidation, format, args...)
}

// ErrorCode returns the engine code carried by err, or "" if none.
func ErrorCode(err error) string {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Code
	}
	return ""
}

// ErrorKindOf returns the engine kind carried by err, or "" if none.
func ErrorKindOf(err error) ErrorKind {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Kind
	}
	return ""
}
