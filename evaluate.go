package datamodel

import (
	"time"
)

// expressionCallback turns a compiled expression entry into a Callback.
// Results written to a target are staged on doc and surface on the next
// commit.
func (s *ChangeSet) expressionCallback(b *binding) Callback {
	return func(doc *Document, values ...any) {
		s.evaluate(doc, b, values)
	}
}

func (s *ChangeSet) evaluate(doc *Document, b *binding, values []any) {
	ctx := RuleContext{
		Snapshot: bindValues(b.paths, values),
		Args:     map[string]any{"values": plainValues(values)},
		Metadata: map[string]any{"document_id": doc.ID()},
		Tag:      b.tag,
	}.withDefaults()

	target := ""
	if b.target != nil {
		target = b.target.String()
	}

	start := time.Now()
	value, err := b.rule.Evaluate(ctx)
	err = evaluationError(s.engine, b.expression, ctx.label(), err)
	if err == nil && b.target != nil {
		err = b.target.Set(doc, value)
	}
	s.cfg.evaluatorLogger.LogEvaluation(EvaluatorLogEvent{
		Engine:   s.engine,
		Expr:     b.expression,
		Tag:      ctx.label(),
		Target:   target,
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return
	}
	if b.result != nil {
		b.result(doc, value)
	}
}

// bindValues nests each value under its path segments so "player.hp" is
// reachable as player.hp from the expression.
func bindValues(paths []*Path, values []any) map[string]any {
	root := make(map[string]any)
	for i, path := range paths {
		var value any
		if i < len(values) {
			value = plainBinding(values[i])
		}
		segments := path.segments
		node := root
		for _, segment := range segments[:len(segments)-1] {
			key := formatKey(segment)
			next, ok := node[key].(map[string]any)
			if !ok {
				next = make(map[string]any)
				node[key] = next
			}
			node = next
		}
		node[formatKey(segments[len(segments)-1])] = value
	}
	return root
}

func plainValues(values []any) []any {
	out := make([]any, len(values))
	for i, value := range values {
		out[i] = plainBinding(value)
	}
	return out
}

func plainBinding(value any) any {
	if value == Null {
		return nil
	}
	return plainValue(value)
}
