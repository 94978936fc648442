//go:build !js_eval

package datamodel

// NewJSEvaluator needs the js_eval build tag; without it the result is nil
// and BuildChangeSet rejects expression entries with ErrNoEvaluator.
func NewJSEvaluator(...JSEvaluatorOption) Evaluator {
	return nil
}

func jsEvaluatorAvailable() bool {
	return false
}
