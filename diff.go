package datamodel

import "iter"

// Diff is the flat result of a commit: dotted paths mapped to their new
// values, in the order the changes were discovered. Deleted paths map to
// Null; opaque nested documents map to true.
type Diff struct {
	paths  []string
	values map[string]any
}

// NewDiff returns an empty Diff ready to be passed to CommitInto.
func NewDiff() *Diff {
	return &Diff{values: make(map[string]any)}
}

func (d *Diff) record(path string, value any) {
	if d.values == nil {
		d.values = make(map[string]any)
	}
	if _, ok := d.values[path]; !ok {
		d.paths = append(d.paths, path)
	}
	d.values[path] = value
}

// Len returns the number of changed paths.
func (d *Diff) Len() int {
	if d == nil {
		return 0
	}
	return len(d.paths)
}

// Get returns the recorded value for path.
func (d *Diff) Get(path string) (any, bool) {
	if d == nil {
		return nil, false
	}
	value, ok := d.values[path]
	return value, ok
}

// Has reports whether path changed.
func (d *Diff) Has(path string) bool {
	_, ok := d.Get(path)
	return ok
}

// Paths returns the changed paths in discovery order.
func (d *Diff) Paths() []string {
	if d == nil || len(d.paths) == 0 {
		return nil
	}
	out := make([]string, len(d.paths))
	copy(out, d.paths)
	return out
}

// All yields changed paths with their values in discovery order.
func (d *Diff) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if d == nil {
			return
		}
		for _, path := range d.paths {
			if !yield(path, d.values[path]) {
				return
			}
		}
	}
}

// Map returns a copy of the diff as a plain map.
func (d *Diff) Map() map[string]any {
	out := make(map[string]any, d.Len())
	for path, value := range d.All() {
		out[path] = value
	}
	return out
}

// Reset empties the diff so it can be reused for another commit.
func (d *Diff) Reset() {
	if d == nil {
		return
	}
	d.paths = d.paths[:0]
	clear(d.values)
}
