package datamodel

import (
	"reflect"
	"slices"
	"strings"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

const engineCEL = "cel"

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry makes call(name, [args]) available to CEL
// expressions.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.registry = registry.Clone()
	}
}

type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go. CEL checks
// variables at compile time, so programs are built on first evaluation from
// the names a mapping binds and cached per expression and name set.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) engine() string { return engineCEL }

func (e *celEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, evaluationError(engineCEL, expression, ctx.label(), err)
	}
	return rule.Evaluate(ctx)
}

func (e *celEvaluator) Compile(expression string, _ ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, evaluationError(engineCEL, "", "", errEmptyExpression)
	}
	return &celRule{evaluator: e, expression: expression}, nil
}

// program returns the checked program for expression over the given
// variable names.
func (e *celEvaluator) program(expression string, names []string) (celgo.Program, error) {
	key := expression + "\x00" + strings.Join(names, ",")
	if program, ok := cacheLoad[celgo.Program](e.cache, key); ok {
		return program, nil
	}
	env, err := e.env(names)
	if err != nil {
		return nil, err
	}
	checked, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	program, err := env.Program(checked)
	if err != nil {
		return nil, err
	}
	cacheStore(e.cache, key, program)
	return program, nil
}

func (e *celEvaluator) env(names []string) (*celgo.Env, error) {
	options := []celgo.EnvOption{
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("args", celgo.DynType),
		celgo.Variable("metadata", celgo.DynType),
	}
	for _, name := range names {
		options = append(options, celgo.Variable(name, celgo.DynType))
	}
	if e.registry != nil {
		options = append(options, celgo.Function("call", celgo.Overload(
			"call_string_list",
			[]*celgo.Type{celgo.StringType, celgo.ListType(celgo.DynType)},
			celgo.DynType,
			celgo.BinaryBinding(e.call),
		)))
	}
	return celgo.NewEnv(options...)
}

// call backs call(name, [args...]).
func (e *celEvaluator) call(nameVal, argsVal ref.Val) ref.Val {
	name, ok := nameVal.Value().(string)
	if !ok {
		return types.NewErr("datamodel: call name must be a string")
	}
	native, err := argsVal.ConvertToNative(reflect.TypeOf([]any{}))
	if err != nil {
		return types.NewErr("datamodel: call arguments: %v", err)
	}
	args, _ := native.([]any)
	result, err := e.registry.Call(name, args...)
	if err != nil {
		return types.NewErr("%s", err.Error())
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}

type celRule struct {
	evaluator  *celEvaluator
	expression string
	program    celgo.Program
}

func (r *celRule) Evaluate(ctx RuleContext) (any, error) {
	if r.evaluator == nil {
		return nil, evaluationError(engineCEL, r.expression, ctx.label(), errDetachedRule)
	}
	ctx = ctx.withDefaults()
	vars := ctx.bindings()
	if r.program == nil {
		program, err := r.evaluator.program(r.expression, celVariables(vars))
		if err != nil {
			return nil, evaluationError(engineCEL, r.expression, ctx.label(), err)
		}
		r.program = program
	}
	out, _, err := r.program.Eval(vars)
	if err != nil {
		return nil, evaluationError(engineCEL, r.expression, ctx.label(), err)
	}
	return out.Value(), nil
}

// celVariables lists the snapshot names CEL can declare, sorted.
func celVariables(vars map[string]any) []string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		switch name {
		case "now", "args", "metadata":
			continue
		}
		if isIdentifier(name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
