package datamodel

import (
	"errors"
	"testing"
)

func TestEvaluationErrorCreatesMetadata(t *testing.T) {
	base := errors.New("boom")
	err := evaluationError("expr", "hp && missing", "hud", base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != "expr" || evalErr.Expr != "hp && missing" || evalErr.Tag != "hud" {
		t.Fatalf("unexpected metadata: %+v", evalErr)
	}
	if !errors.Is(err, base) {
		t.Fatalf("wrapped error should unwrap to base error")
	}
	want := `datamodel: expr evaluator expr="hp && missing" tag=hud: boom`
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}

func TestEvaluationErrorCompletesExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{Engine: "expr", Err: base}

	err := evaluationError("cel", "rule", "menu", existing)
	if err != existing {
		t.Fatalf("expected the existing error to be returned")
	}
	if existing.Engine != "expr" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "rule" || existing.Tag != "menu" {
		t.Fatalf("expected missing fields filled, got %+v", existing)
	}
}

func TestEvaluationErrorNil(t *testing.T) {
	if evaluationError("expr", "x", "", nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
	var evalErr *EvaluationError
	if evalErr.Error() != "<nil>" || evalErr.Unwrap() != nil {
		t.Fatalf("expected nil receiver to be safe")
	}
}
