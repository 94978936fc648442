package datamodel

import (
	"time"

	"github.com/golang/glog"
)

// GlogLogger writes evaluator and dispatch events to glog. Successful events
// are logged at the configured verbosity; failures always go to the warning
// log.
type GlogLogger struct {
	Verbosity glog.Level
}

// NewGlogLogger returns a logger usable with both WithEvaluatorLogger and
// WithDispatchLogger.
func NewGlogLogger(verbosity glog.Level) *GlogLogger {
	return &GlogLogger{Verbosity: verbosity}
}

// LogEvaluation implements EvaluatorLogger.
func (l *GlogLogger) LogEvaluation(event EvaluatorLogEvent) {
	if event.Err != nil {
		glog.Warningf("[datamodel][eval] %s tag=%s target=%s: %v", event.Engine, event.Tag, event.Target, event.Err)
		return
	}
	glog.V(l.Verbosity).Infof("[datamodel][eval] %s tag=%s target=%s (%.3fms)", event.Engine, event.Tag, event.Target, millis(event.Duration))
}

// LogDispatch implements DispatchLogger.
func (l *GlogLogger) LogDispatch(event DispatchLogEvent) {
	if event.Err != nil {
		glog.Warningf("[datamodel][dispatch] %s doc=%s: %v", event.Strategy, event.DocumentID, event.Err)
		return
	}
	glog.V(l.Verbosity).Infof("[datamodel][dispatch] %s doc=%s changes=%d watchers=%d mappings=%d (%.3fms)",
		event.Strategy, event.DocumentID, event.Changes, event.Watchers, event.Mappings, millis(event.Duration))
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
