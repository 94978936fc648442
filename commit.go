package datamodel

// Commit reconciles staged writes into committed state, including changes
// made directly on nested documents, and reports whether anything changed.
func (d *Document) Commit() bool {
	return d.commit(nil, "")
}

// CommitInto reconciles like Commit and records every change into diff as a
// dotted path. A nil diff is allocated. The diff is returned for chaining.
func (d *Document) CommitInto(diff *Diff) *Diff {
	if diff == nil {
		diff = NewDiff()
	}
	d.commit(diff, "")
	return diff
}

func (d *Document) commit(diff *Diff, prefix string) bool {
	if d == nil || d.ignore || d.committing {
		return false
	}
	d.committing = true
	defer func() { d.committing = false }()

	changed := false
	// A key leaves the dirty list only once it is reconciled.
	for len(d.dirty) > 0 {
		key := d.dirty[0]
		if value, ok := d.staged[key]; ok {
			if d.reconcile(key, value) {
				changed = true
				if diff != nil {
					diff.record(joinPath(prefix, formatKey(key)), value)
				}
			}
			delete(d.staged, key)
		}
		d.dirty = d.dirty[1:]
	}
	d.dirty = nil

	// Nested documents may have been written to through a held reference
	// without this document's key being touched.
	d.order.each(func(key any) bool {
		child, ok := d.committed[key].(*Document)
		if !ok {
			return true
		}
		path := joinPath(prefix, formatKey(key))
		if child.opaque {
			if child.commit(nil, "") {
				changed = true
				if diff != nil {
					diff.record(path, true)
				}
			}
			return true
		}
		if child.commit(diff, path) {
			changed = true
		}
		return true
	})
	return changed
}

// reconcile applies one staged value and reports whether it is a change in
// its own right.
func (d *Document) reconcile(key, value any) bool {
	if isStructured(value) {
		child, ok := d.committed[key].(*Document)
		if !ok {
			child = New()
			d.store(key, child)
		}
		child.assign(value)
		return false
	}
	existing, exists := d.committed[key]
	if value == Null {
		if !exists {
			return false
		}
		d.remove(key)
		return true
	}
	if exists && equalValues(existing, value) {
		return false
	}
	d.store(key, value)
	return true
}

func (d *Document) store(key, value any) {
	d.committed[key] = value
	d.order.add(key)
}

func (d *Document) remove(key any) {
	delete(d.committed, key)
	d.order.remove(key)
}
