//go:build js_eval

package datamodel

import (
	"fmt"

	"github.com/dop251/goja"
)

type jsEvaluator struct {
	jsOptions
}

// NewJSEvaluator constructs an Evaluator backed by goja. Expressions are
// wrapped in a function body so they may be written as plain expressions.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	return &jsEvaluator{jsOptions: newJSOptions(opts)}
}

func (e *jsEvaluator) engine() string { return engineJS }

func (e *jsEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, evaluationError(engineJS, expression, ctx.label(), err)
	}
	return rule.Evaluate(ctx)
}

func (e *jsEvaluator) Compile(expression string, _ ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, evaluationError(engineJS, "", "", errEmptyExpression)
	}
	program, err := e.program(expression)
	if err != nil {
		return nil, err
	}
	return &jsRule{
		expression: expression,
		program:    program,
		registry:   e.registry,
	}, nil
}

func (e *jsEvaluator) program(expression string) (*goja.Program, error) {
	if program, ok := cacheLoad[*goja.Program](e.cache, expression); ok {
		return program, nil
	}
	source := fmt.Sprintf("(function(){ return (%s); })()", expression)
	program, err := goja.Compile("", source, false)
	if err != nil {
		return nil, evaluationError(engineJS, expression, "", err)
	}
	cacheStore(e.cache, expression, program)
	return program, nil
}

type jsRule struct {
	expression string
	program    *goja.Program
	registry   *FunctionRegistry
}

// Evaluate runs on a fresh runtime: goja runtimes are single goroutine and
// each mapping binds different globals.
func (r *jsRule) Evaluate(ctx RuleContext) (any, error) {
	if r.program == nil {
		return nil, evaluationError(engineJS, r.expression, ctx.label(), errDetachedRule)
	}
	ctx = ctx.withDefaults()
	vars := ctx.bindings()
	r.registry.bind(vars)

	runtime := goja.New()
	for name, value := range vars {
		if err := runtime.Set(name, value); err != nil {
			return nil, evaluationError(engineJS, r.expression, ctx.label(), err)
		}
	}
	value, err := runtime.RunProgram(r.program)
	if err != nil {
		return nil, evaluationError(engineJS, r.expression, ctx.label(), err)
	}
	return value.Export(), nil
}

func jsEvaluatorAvailable() bool {
	return true
}
