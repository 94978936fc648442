package datamodel

import (
	exprlang "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

const engineExpr = "expr"

// ExprEvaluatorOption configures an expr evaluator instance.
type ExprEvaluatorOption func(*exprEvaluator)

// ExprWithProgramCache wires a ProgramCache into the expr evaluator.
func ExprWithProgramCache(cache ProgramCache) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		e.cache = cache
	}
}

// ExprWithFunctionRegistry exposes the functions of registry by name.
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		e.registry = registry.Clone()
	}
}

// exprEvaluator is the default engine behind Derive and Compute entries.
// Each expression is compiled once; bindings are supplied per run.
type exprEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr.
func NewExprEvaluator(opts ...ExprEvaluatorOption) Evaluator {
	e := &exprEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Evaluate compiles expression (or reuses the cached program) and runs it.
func (e *exprEvaluator) engine() string { return engineExpr }

func (e *exprEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, evaluationError(engineExpr, expression, ctx.label(), err)
	}
	return rule.Evaluate(ctx)
}

// Compile type-checks expression against an open environment so undeclared
// mapping variables resolve at run time.
func (e *exprEvaluator) Compile(expression string, _ ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, evaluationError(engineExpr, "", "", errEmptyExpression)
	}
	program, err := e.program(expression)
	if err != nil {
		return nil, err
	}
	return &exprRule{
		expression: expression,
		program:    program,
		registry:   e.registry,
	}, nil
}

func (e *exprEvaluator) program(expression string) (*vm.Program, error) {
	if program, ok := cacheLoad[*vm.Program](e.cache, expression); ok {
		return program, nil
	}
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	for _, name := range e.registry.Names() {
		options = append(options, exprlang.Function(name, e.registry.caller(name)))
	}
	program, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, evaluationError(engineExpr, expression, "", err)
	}
	cacheStore(e.cache, expression, program)
	return program, nil
}

type exprRule struct {
	expression string
	program    *vm.Program
	registry   *FunctionRegistry
}

func (r *exprRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	vars := ctx.bindings()
	r.registry.bind(vars)
	out, err := exprlang.Run(r.program, vars)
	if err != nil {
		return nil, evaluationError(engineExpr, r.expression, ctx.label(), err)
	}
	return out, nil
}
