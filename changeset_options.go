package datamodel

import "github.com/goliatone/go-datamodel/pkg/activity"

// Option configures a ChangeSet at construction.
type Option func(*changeSetConfig)

type changeSetConfig struct {
	evaluator       Evaluator
	evaluatorSet    bool
	programCache    ProgramCache
	functions       *FunctionRegistry
	evaluatorLogger EvaluatorLogger
	dispatchLogger  DispatchLogger
	activityHooks   activity.Hooks
	activityConfig  activity.Config
	activitySet     bool
}

func applyOptions(opts []Option) changeSetConfig {
	cfg := changeSetConfig{
		evaluatorLogger: noopLogger{},
		dispatchLogger:  noopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithEvaluator selects the engine used for Derive and Compute entries.
// Passing nil disables expressions; building a ChangeSet that still
// declares one then fails with ErrNoEvaluator.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *changeSetConfig) {
		cfg.evaluator = e
		cfg.evaluatorSet = true
	}
}

// WithActivityHooks attaches activity hooks notified on every dispatch.
// Emission is enabled unless WithActivityConfig says otherwise.
func WithActivityHooks(hooks activity.Hooks) Option {
	return func(cfg *changeSetConfig) {
		cfg.activityHooks = append(activity.Hooks(nil), hooks...)
	}
}

// WithActivityConfig controls activity emission defaults.
func WithActivityConfig(config activity.Config) Option {
	return func(cfg *changeSetConfig) {
		cfg.activityConfig = config
		cfg.activitySet = true
	}
}

func (cfg changeSetConfig) emitter() *activity.Emitter {
	config := cfg.activityConfig
	if !cfg.activitySet {
		config.Enabled = true
	}
	return activity.NewEmitter(cfg.activityHooks, config)
}

func (cfg changeSetConfig) resolveEvaluator() (Evaluator, error) {
	if cfg.evaluatorSet {
		if cfg.evaluator == nil {
			return nil, ErrNoEvaluator
		}
		return cfg.evaluator, nil
	}
	var exprOpts []ExprEvaluatorOption
	if cfg.programCache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(cfg.programCache))
	}
	if cfg.functions != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(cfg.functions))
	}
	evaluator := NewExprEvaluator(exprOpts...)
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	return evaluator, nil
}

// evaluatorEngineName labels log events and errors with the engine of e.
func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	if named, ok := e.(interface{ engine() string }); ok {
		return named.engine()
	}
	return "custom"
}
