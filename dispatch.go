package datamodel

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-datamodel/pkg/activity"
)

// MapChange commits doc into diff (a fresh one when nil) and dispatches the
// result against set: watchers first, then each mapping with a changed
// dependency, at most once. The diff is returned for further inspection.
func MapChange(doc *Document, set *ChangeSet, diff *Diff) *Diff {
	return MapChangeContext(context.Background(), doc, set, diff)
}

// MapChangeContext is MapChange with a context for activity hooks.
func MapChangeContext(ctx context.Context, doc *Document, set *ChangeSet, diff *Diff) *Diff {
	if diff == nil {
		diff = NewDiff()
	}
	if doc == nil {
		return diff
	}
	start := time.Now()
	doc.CommitInto(diff)
	if set == nil {
		return diff
	}

	event := DispatchLogEvent{
		DocumentID: doc.ID(),
		Changes:    diff.Len(),
	}
	if diff.Len() > len(set.watched) {
		event.Strategy = StrategyByWatch
		for _, path := range set.watched {
			if value, ok := diff.Get(path); ok {
				event.Watchers += invoke(doc, set.watchers[path], value)
			}
		}
	} else {
		event.Strategy = StrategyByDiff
		for path, value := range diff.All() {
			if watchers, ok := set.watchers[path]; ok {
				event.Watchers += invoke(doc, watchers, value)
			}
		}
	}

	for _, b := range set.mappings {
		if !b.touchedBy(diff) {
			continue
		}
		b.callback(doc, b.resolve(doc, diff)...)
		event.Mappings++
	}

	event.Err = set.emitChanges(ctx, doc, diff)
	event.Duration = time.Since(start)
	set.cfg.dispatchLogger.LogDispatch(event)
	return diff
}

// MapUpdate invokes every entry tagged with one of tags, or every entry when
// no tag is given, with live-read values and without committing. Each entry
// runs at most once, in registration order. It returns the number of
// invocations.
func MapUpdate(doc *Document, set *ChangeSet, tags ...string) int {
	return MapUpdateContext(context.Background(), doc, set, tags...)
}

// MapUpdateContext is MapUpdate with a context for activity hooks.
func MapUpdateContext(ctx context.Context, doc *Document, set *ChangeSet, tags ...string) int {
	if doc == nil || set == nil {
		return 0
	}
	start := time.Now()
	event := DispatchLogEvent{
		DocumentID: doc.ID(),
		Strategy:   StrategyForced,
		Tags:       append([]string(nil), tags...),
	}
	selected := set.selection(tags)
	for _, b := range selected {
		b.callback(doc, b.resolve(doc, nil)...)
		if b.watcher() {
			event.Watchers++
		} else {
			event.Mappings++
		}
	}

	if set.emitter.Enabled() {
		event.Err = set.emitter.Emit(ctx, activity.BuildMappingRefreshedEvent(activity.RefreshInput{
			DocumentID: doc.ID(),
			Tags:       tags,
			Invoked:    len(selected),
		}))
	}
	event.Duration = time.Since(start)
	set.cfg.dispatchLogger.LogDispatch(event)
	return len(selected)
}

func invoke(doc *Document, watchers []*binding, value any) int {
	for _, b := range watchers {
		b.callback(doc, value)
	}
	return len(watchers)
}

func (b *binding) touchedBy(diff *Diff) bool {
	for _, path := range b.paths {
		if diff.Has(path.String()) {
			return true
		}
	}
	return false
}

// resolve reads each dependency from diff when it changed there, else from
// the live document. Absent values resolve to nil.
func (b *binding) resolve(doc *Document, diff *Diff) []any {
	values := make([]any, len(b.paths))
	for i, path := range b.paths {
		if value, ok := diff.Get(path.String()); ok {
			values[i] = value
			continue
		}
		values[i], _ = path.Get(doc)
	}
	return values
}

func (s *ChangeSet) emitChanges(ctx context.Context, doc *Document, diff *Diff) error {
	if !s.emitter.Enabled() {
		return nil
	}
	var errs []error
	for path, value := range diff.All() {
		input := activity.ChangeInput{
			DocumentID: doc.ID(),
			Path:       path,
		}
		var event activity.Event
		if value == Null {
			event = activity.BuildValueDeletedEvent(input)
		} else {
			input.Value = plainBinding(value)
			event = activity.BuildValueChangedEvent(input)
		}
		if err := s.emitter.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
