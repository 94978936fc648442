package datamodel

import (
	"fmt"

	"github.com/goliatone/go-datamodel/pkg/activity"
)

// Callback receives the document and the resolved values of the entry
// paths, in declaration order.
type Callback func(doc *Document, values ...any)

// Entry declares one ChangeSet binding. An entry with a single path is a
// watcher; with several paths it is a mapping. Expression entries compute a
// value from their paths and either write it to Target or hand it to Result.
type Entry struct {
	Tag        string
	Callback   Callback
	Paths      []string
	Expression string
	Target     string
	Result     func(doc *Document, value any)
}

// Watch binds fn to changes of path.
func Watch(path string, fn func(doc *Document, value any)) Entry {
	entry := Entry{Paths: []string{path}}
	if fn != nil {
		entry.Callback = func(doc *Document, values ...any) {
			fn(doc, firstValue(values))
		}
	}
	return entry
}

// Map binds fn to changes of any of paths.
func Map(fn Callback, paths ...string) Entry {
	return Entry{Callback: fn, Paths: paths}
}

// Derive evaluates expression whenever one of paths changes and writes the
// result to target.
func Derive(target, expression string, paths ...string) Entry {
	return Entry{Expression: expression, Target: target, Paths: paths}
}

// Compute evaluates expression whenever one of paths changes and hands the
// result to fn.
func Compute(expression string, fn func(doc *Document, value any), paths ...string) Entry {
	return Entry{Expression: expression, Result: fn, Paths: paths}
}

// Tagged returns a copy of the entry labelled with tag.
func (e Entry) Tagged(tag string) Entry {
	e.Tag = tag
	return e
}

func firstValue(values []any) any {
	if len(values) == 0 {
		return nil
	}
	return values[0]
}

type binding struct {
	index    int
	tag      string
	callback Callback
	paths    []*Path

	expression string
	rule       CompiledRule
	target     *Path
	result     func(*Document, any)
}

func (b *binding) watcher() bool {
	return len(b.paths) == 1
}

// ChangeSet is an immutable table of watchers and mappings, built once and
// reused across commit cycles.
type ChangeSet struct {
	cfg       changeSetConfig
	evaluator Evaluator
	engine    string
	emitter   *activity.Emitter
	paths     ProgramCache

	watchers map[string][]*binding
	watched  []string
	mappings []*binding
	entries  []*binding
	tags     map[string][]*binding
	tagOrder []string
}

// BuildChangeSet validates entries and compiles them into a ChangeSet.
// Malformed entries fail here with a *RegistrationError rather than at
// dispatch time.
func BuildChangeSet(entries []Entry, opts ...Option) (*ChangeSet, error) {
	cfg := applyOptions(opts)
	set := &ChangeSet{
		cfg:      cfg,
		emitter:  cfg.emitter(),
		paths:    NewProgramCache(),
		watchers: make(map[string][]*binding),
		tags:     make(map[string][]*binding),
	}

	for i, entry := range entries {
		b, err := set.bind(i, entry)
		if err != nil {
			return nil, &RegistrationError{Index: i, Tag: entry.Tag, Err: err}
		}
		set.entries = append(set.entries, b)
		if b.tag != "" {
			if _, seen := set.tags[b.tag]; !seen {
				set.tagOrder = append(set.tagOrder, b.tag)
			}
			set.tags[b.tag] = append(set.tags[b.tag], b)
		}
		if !b.watcher() {
			set.mappings = append(set.mappings, b)
			continue
		}
		key := b.paths[0].String()
		if _, seen := set.watchers[key]; !seen {
			set.watched = append(set.watched, key)
		}
		set.watchers[key] = append(set.watchers[key], b)
	}
	return set, nil
}

func (s *ChangeSet) bind(index int, entry Entry) (*binding, error) {
	if len(entry.Paths) == 0 {
		return nil, ErrMissingPath
	}
	b := &binding{
		index:    index,
		tag:      entry.Tag,
		callback: entry.Callback,
		paths:    make([]*Path, len(entry.Paths)),
	}
	for i, raw := range entry.Paths {
		path, err := compilePath(s.paths, raw)
		if err != nil {
			return nil, err
		}
		b.paths[i] = path
	}

	if entry.Expression == "" {
		if entry.Callback == nil {
			return nil, ErrMissingCallback
		}
		return b, nil
	}
	if entry.Callback != nil {
		return nil, ErrConflictingEntry
	}
	if entry.Target == "" && entry.Result == nil {
		return nil, ErrMissingCallback
	}
	if entry.Target != "" {
		target, err := compilePath(s.paths, entry.Target)
		if err != nil {
			return nil, fmt.Errorf("target: %w", err)
		}
		b.target = target
	}
	evaluator, err := s.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	rule, err := evaluator.Compile(entry.Expression)
	if err != nil {
		return nil, evaluationError(s.engine, entry.Expression, entry.Tag, err)
	}
	b.expression = entry.Expression
	b.rule = rule
	b.result = entry.Result
	b.callback = s.expressionCallback(b)
	return b, nil
}

func (s *ChangeSet) resolveEvaluator() (Evaluator, error) {
	if s.evaluator != nil {
		return s.evaluator, nil
	}
	evaluator, err := s.cfg.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	s.evaluator = evaluator
	s.engine = evaluatorEngineName(evaluator)
	return evaluator, nil
}

// Len returns the number of registered entries.
func (s *ChangeSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// WatchedPaths returns the distinct watcher paths in registration order.
func (s *ChangeSet) WatchedPaths() []string {
	if s == nil || len(s.watched) == 0 {
		return nil
	}
	out := make([]string, len(s.watched))
	copy(out, s.watched)
	return out
}

// Tags returns the tags in order of first registration.
func (s *ChangeSet) Tags() []string {
	if s == nil || len(s.tagOrder) == 0 {
		return nil
	}
	out := make([]string, len(s.tagOrder))
	copy(out, s.tagOrder)
	return out
}

// Path returns the compiled path shared by every entry naming raw.
func (s *ChangeSet) Path(raw string) (*Path, error) {
	return compilePath(s.paths, raw)
}

// selection returns the entries to refresh for tags, in registration order,
// each at most once. Without tags every mapping is selected and watchers are
// left out.
func (s *ChangeSet) selection(tags []string) []*binding {
	if len(tags) == 0 {
		return s.mappings
	}
	picked := make(map[int]struct{})
	for _, tag := range tags {
		for _, b := range s.tags[tag] {
			picked[b.index] = struct{}{}
		}
	}
	out := make([]*binding, 0, len(picked))
	for _, b := range s.entries {
		if _, ok := picked[b.index]; ok {
			out = append(out, b)
		}
	}
	return out
}
