// Package activity turns document changes into activity events and fans
// them out to hooks such as audit sinks.
package activity

import (
	"context"
	"errors"
	"maps"
	"strings"
	"time"
)

// Event is one activity record. Identifiers are plain strings; sinks that
// need UUIDs parse them.
type Event struct {
	Verb       string
	ActorID    string
	TenantID   string
	ObjectType string
	ObjectID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Routable reports whether the event names a verb and an object.
func (e Event) Routable() bool {
	return e.Verb != "" && e.ObjectType != "" && e.ObjectID != ""
}

// NormalizeEvent returns a copy of event with trimmed identifiers, its own
// metadata map and OccurredAt stamped when zero.
func NormalizeEvent(event Event) Event {
	for _, field := range []*string{
		&event.Verb, &event.ActorID, &event.TenantID,
		&event.ObjectType, &event.ObjectID, &event.Channel,
	} {
		*field = strings.TrimSpace(*field)
	}
	if len(event.Metadata) == 0 {
		event.Metadata = nil
	} else {
		event.Metadata = maps.Clone(event.Metadata)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	return event
}

// ActivityHook receives normalized events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function to ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks is a fan-out list of hooks.
type Hooks []ActivityHook

func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify normalizes event once and hands it to every hook. Unroutable events
// are dropped; hook failures are joined.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}
	event = NormalizeEvent(event)
	if !event.Routable() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// compact drops nil hooks.
func (h Hooks) compact() Hooks {
	var out Hooks
	for _, hook := range h {
		if hook != nil {
			out = append(out, hook)
		}
	}
	return out
}
