package datamodel

import "time"

// RuleContext carries the inputs of one expression evaluation. Snapshot
// holds the values bound for the mapping dependencies, nested by path
// segment; Args carries the positional values under "values".
type RuleContext struct {
	Snapshot any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	Tag      string
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	if ctx.Now == nil {
		return time.Now()
	}
	return *ctx.Now
}

func (ctx RuleContext) label() string {
	if ctx.Tag != "" {
		return ctx.Tag
	}
	return "untagged"
}

// bindings flattens the context into the variables every engine exposes:
// now, args, metadata and the top-level snapshot keys.
func (ctx RuleContext) bindings() map[string]any {
	snapshot := ctx.snapshot()
	vars := make(map[string]any, len(snapshot)+3)
	for key, value := range snapshot {
		vars[key] = value
	}
	vars["now"] = ctx.timestamp()
	vars["args"] = ctx.Args
	vars["metadata"] = ctx.Metadata
	return vars
}

func (ctx RuleContext) snapshot() map[string]any {
	if m, ok := ctx.Snapshot.(map[string]any); ok && m != nil {
		return m
	}
	return map[string]any{}
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour. No options are
// defined yet; the parameter keeps custom evaluators source compatible.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}
