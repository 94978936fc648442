package datamodel

import (
	"iter"

	"github.com/goliatone/go-datamodel/layering"
	"github.com/google/uuid"
)

// Document is a change-tracking key/value structure. Reads see committed
// state unless a staged write shadows it; writes only ever land in the
// staging area until Commit reconciles them.
//
// A Document is not safe for concurrent use.
type Document struct {
	id string

	committed map[any]any
	order     keyOrder

	staged map[any]any
	dirty  []any

	ignore     bool
	opaque     bool
	committing bool

	// length is the contiguous array length known to be valid: keys 1..length
	// are all present.
	length int
}

// New returns an empty Document.
func New() *Document {
	return &Document{
		id:        uuid.NewString(),
		committed: make(map[any]any),
		staged:    make(map[any]any),
	}
}

// NewFrom returns a Document whose baseline is initial. The initial values
// are committed immediately so they are never reported as changes.
func NewFrom(initial map[string]any) *Document {
	doc := New()
	if initial == nil {
		return doc
	}
	doc.assign(initial)
	doc.Commit()
	return doc
}

// NewFromLayers merges layers ordered from strongest to weakest and uses the
// result as the baseline of a new Document.
func NewFromLayers(layers ...map[string]any) *Document {
	return NewFrom(layering.Merge(layers...))
}

// ID returns the identity of the document, stable for its lifetime.
func (d *Document) ID() string {
	return d.id
}

// Get returns the value stored under key, honouring staged writes.
func (d *Document) Get(key any) (any, bool) {
	k, err := normalizeKey(key)
	if err != nil {
		return nil, false
	}
	return d.get(k)
}

func (d *Document) get(key any) (any, bool) {
	if value, ok := d.staged[key]; ok {
		if value == Null {
			return nil, false
		}
		return value, true
	}
	value, ok := d.committed[key]
	return value, ok
}

// Value is Get without the presence flag.
func (d *Document) Value(key any) any {
	value, _ := d.Get(key)
	return value
}

// Has reports whether key currently holds a value.
func (d *Document) Has(key any) bool {
	_, ok := d.Get(key)
	return ok
}

// Set stages value under key. A nil (or Null) value deletes the key on the
// next commit. Plain maps and []any are copied and become nested documents
// on commit. Set panics when key is not a string or non-negative integer.
func (d *Document) Set(key, value any) {
	d.set(mustKey(key), value)
}

// Delete is shorthand for Set(key, nil).
func (d *Document) Delete(key any) {
	d.set(mustKey(key), nil)
}

func (d *Document) set(key, value any) {
	if value == nil || value == Null {
		if _, ok := d.committed[key]; !ok {
			// nothing to delete; drop any value staged this cycle
			d.unstage(key)
			d.shrink(key)
			return
		}
		d.stage(key, Null)
		d.shrink(key)
		return
	}
	if isStructured(value) {
		value = copyStructure(value)
	}
	d.stage(key, value)
}

func (d *Document) stage(key, value any) {
	if _, ok := d.staged[key]; !ok {
		d.dirty = append(d.dirty, key)
	}
	d.staged[key] = value
}

func (d *Document) unstage(key any) {
	if _, ok := d.staged[key]; !ok {
		return
	}
	delete(d.staged, key)
	for i, dirty := range d.dirty {
		if dirty == key {
			d.dirty = append(d.dirty[:i], d.dirty[i+1:]...)
			break
		}
	}
}

func (d *Document) shrink(key any) {
	if idx, ok := key.(int); ok && idx >= 1 && idx <= d.length {
		d.length = idx - 1
	}
}

// assign stages a wholesale replacement of the document content with the
// fields of a plain structure. Fields missing from value are deleted.
func (d *Document) assign(value any) {
	fields := structuredFields(value)
	seen := make(map[any]struct{}, len(fields))
	for _, f := range fields {
		seen[f.key] = struct{}{}
		d.set(f.key, f.value)
	}
	for _, key := range d.Keys() {
		if _, ok := seen[key]; !ok {
			d.set(key, nil)
		}
	}
}

// All yields every key with its current value: committed keys first in
// insertion order, then keys only staged so far. Deleted keys are skipped.
// Mutating the document while iterating has undefined results.
func (d *Document) All() iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		stop := false
		d.order.each(func(key any) bool {
			value, ok := d.get(key)
			if !ok {
				return true
			}
			if !yield(key, value) {
				stop = true
				return false
			}
			return true
		})
		if stop {
			return
		}
		for _, key := range d.dirty {
			if _, committed := d.committed[key]; committed {
				continue
			}
			value, ok := d.staged[key]
			if !ok || value == Null {
				continue
			}
			if !yield(key, value) {
				return
			}
		}
	}
}

// Keys returns the keys visited by All.
func (d *Document) Keys() []any {
	var keys []any
	for key := range d.All() {
		keys = append(keys, key)
	}
	return keys
}

// Len returns the array-style length: the highest n such that keys 1..n are
// all present.
func (d *Document) Len() int {
	n := d.length
	for {
		if _, ok := d.get(n + 1); !ok {
			break
		}
		n++
	}
	d.length = n
	return n
}

// Dirty reports whether writes are pending reconciliation.
func (d *Document) Dirty() bool {
	return len(d.staged) > 0
}

// SetIgnore suspends (true) or resumes (false) reconciliation. While ignored,
// Commit is a no-op and staged writes accumulate.
func (d *Document) SetIgnore(ignore bool) {
	d.ignore = ignore
}

// Ignored reports whether reconciliation is suspended.
func (d *Document) Ignored() bool {
	return d.ignore
}

// SetOpaque hides the fields of the document from a parent diff; the parent
// only sees true at this document's key when something changed.
func (d *Document) SetOpaque(opaque bool) {
	d.opaque = opaque
}

// Opaque reports whether the document is reported as a single flag.
func (d *Document) Opaque() bool {
	return d.opaque
}

// Snapshot returns a plain deep copy of the current read-through state.
// Nested documents whose keys are exactly 1..n become []any.
func (d *Document) Snapshot() map[string]any {
	out := make(map[string]any)
	for key, value := range d.All() {
		out[formatKey(key)] = plainValue(value)
	}
	return out
}

func (d *Document) plain() any {
	n := d.Len()
	keys := d.Keys()
	if n > 0 && n == len(keys) {
		list := make([]any, n)
		for i := 1; i <= n; i++ {
			value, _ := d.get(i)
			list[i-1] = plainValue(value)
		}
		return list
	}
	return d.Snapshot()
}

func plainValue(value any) any {
	switch typed := value.(type) {
	case *Document:
		return typed.plain()
	case map[string]any, map[any]any, []any:
		return layering.Clone(typed)
	default:
		if value == Null {
			return nil
		}
		return value
	}
}
