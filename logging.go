package datamodel

import "time"

// EvaluatorLogEvent describes an expression evaluation for logging.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Tag      string
	Target   string
	Duration time.Duration
	Err      error
}

// EvaluatorLogger records evaluator events.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

// DispatchStrategy names how a dispatch matched watchers against a diff.
type DispatchStrategy string

const (
	// StrategyByWatch walks the watched paths and probes the diff.
	StrategyByWatch DispatchStrategy = "by-watch"
	// StrategyByDiff walks the diff and probes the watcher index.
	StrategyByDiff DispatchStrategy = "by-diff"
	// StrategyForced is a MapUpdate refresh that bypasses the diff.
	StrategyForced DispatchStrategy = "forced"
)

// DispatchLogEvent summarises one MapChange or MapUpdate call.
type DispatchLogEvent struct {
	DocumentID string
	Strategy   DispatchStrategy
	Changes    int
	Watchers   int
	Mappings   int
	Tags       []string
	Duration   time.Duration
	Err        error
}

// DispatchLogger records dispatch events.
type DispatchLogger interface {
	LogDispatch(DispatchLogEvent)
}

// DispatchLoggerFunc adapts a function to DispatchLogger.
type DispatchLoggerFunc func(DispatchLogEvent)

// LogDispatch implements DispatchLogger.
func (f DispatchLoggerFunc) LogDispatch(event DispatchLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogEvaluation(EvaluatorLogEvent) {}

func (noopLogger) LogDispatch(DispatchLogEvent) {}

// WithEvaluatorLogger attaches an evaluator logger to the ChangeSet.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(cfg *changeSetConfig) {
		if logger == nil {
			cfg.evaluatorLogger = noopLogger{}
			return
		}
		cfg.evaluatorLogger = logger
	}
}

// WithDispatchLogger attaches a dispatch logger to the ChangeSet.
func WithDispatchLogger(logger DispatchLogger) Option {
	return func(cfg *changeSetConfig) {
		if logger == nil {
			cfg.dispatchLogger = noopLogger{}
			return
		}
		cfg.dispatchLogger = logger
	}
}
