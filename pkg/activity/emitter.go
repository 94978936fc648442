package activity

import (
	"context"
	"strings"
)

// DefaultChannel is applied to events emitted without a channel.
const DefaultChannel = "datamodel"

// Config controls activity emission for a change set.
type Config struct {
	Enabled bool
	Channel string
	ActorID string
}

// Emitter stamps the configured channel and actor on events that lack them
// and forwards them to its hooks.
type Emitter struct {
	hooks    Hooks
	defaults Event
}

// NewEmitter returns an emitter over the non-nil hooks. A disabled config or
// an empty hook list yields an emitter that drops everything.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	e := &Emitter{
		defaults: Event{
			Channel: strings.TrimSpace(cfg.Channel),
			ActorID: strings.TrimSpace(cfg.ActorID),
		},
	}
	if e.defaults.Channel == "" {
		e.defaults.Channel = DefaultChannel
	}
	if cfg.Enabled {
		e.hooks = hooks.compact()
	}
	return e
}

func (e *Emitter) Enabled() bool {
	return e != nil && e.hooks.Enabled()
}

func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.defaults.Channel
	}
	if strings.TrimSpace(event.ActorID) == "" {
		event.ActorID = e.defaults.ActorID
	}
	return e.hooks.Notify(ctx, event)
}
