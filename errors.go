package datamodel

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCallback indicates an entry with neither a callback nor an
	// expression with a destination.
	ErrMissingCallback = errors.New("datamodel: entry requires a callback")
	// ErrMissingPath indicates an entry that watches no path.
	ErrMissingPath = errors.New("datamodel: entry requires at least one path")
	// ErrConflictingEntry indicates an entry that sets both a callback and
	// an expression.
	ErrConflictingEntry = errors.New("datamodel: entry sets both a callback and an expression")
	// ErrNoEvaluator indicates an expression entry with no usable evaluator.
	ErrNoEvaluator = errors.New("datamodel: evaluator not configured")

	errEmptyExpression = errors.New("expression must not be empty")
	errDetachedRule    = errors.New("compiled rule missing evaluator")
)

// RegistrationError reports a malformed ChangeSet entry.
type RegistrationError struct {
	Index int
	Tag   string
	Err   error
}

func (e *RegistrationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Tag != "" {
		return fmt.Sprintf("datamodel: entry %d (tag %q): %v", e.Index, e.Tag, e.Err)
	}
	return fmt.Sprintf("datamodel: entry %d: %v", e.Index, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// EvaluationError reports a failed expression compile or run together with
// the engine, the expression and the tag of the entry.
type EvaluationError struct {
	Engine string
	Expr   string
	Tag    string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	expr := "<empty>"
	if e.Expr != "" {
		expr = fmt.Sprintf("%q", e.Expr)
	}
	return fmt.Sprintf("datamodel: %s evaluator expr=%s tag=%s: %v", e.Engine, expr, e.Tag, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// evaluationError wraps err as an *EvaluationError. An existing one is
// completed in place; fields already set win.
func evaluationError(engine, expr, tag string, err error) error {
	if err == nil {
		return nil
	}
	var existing *EvaluationError
	if !errors.As(err, &existing) {
		return &EvaluationError{Engine: engine, Expr: expr, Tag: tag, Err: err}
	}
	if existing.Engine == "" {
		existing.Engine = engine
	}
	if existing.Expr == "" {
		existing.Expr = expr
	}
	if existing.Tag == "" {
		existing.Tag = tag
	}
	return existing
}
