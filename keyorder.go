package datamodel

// keyOrder remembers committed keys in insertion order. Removed keys leave a
// hole that is compacted once holes outnumber live keys.
type keyOrder struct {
	keys  []any
	pos   map[any]int
	holes int
}

type hole struct{}

func (o *keyOrder) add(key any) {
	if o.pos == nil {
		o.pos = make(map[any]int)
	}
	if _, ok := o.pos[key]; ok {
		return
	}
	o.pos[key] = len(o.keys)
	o.keys = append(o.keys, key)
}

func (o *keyOrder) remove(key any) {
	idx, ok := o.pos[key]
	if !ok {
		return
	}
	delete(o.pos, key)
	o.keys[idx] = hole{}
	o.holes++
	if o.holes > len(o.pos) {
		o.compact()
	}
}

func (o *keyOrder) compact() {
	live := o.keys[:0]
	for _, key := range o.keys {
		if _, isHole := key.(hole); isHole {
			continue
		}
		o.pos[key] = len(live)
		live = append(live, key)
	}
	for i := len(live); i < len(o.keys); i++ {
		o.keys[i] = nil
	}
	o.keys = live
	o.holes = 0
}

// each visits live keys in order. fn must not add or remove keys.
func (o *keyOrder) each(fn func(key any) bool) {
	for _, key := range o.keys {
		if _, isHole := key.(hole); isHole {
			continue
		}
		if !fn(key) {
			return
		}
	}
}
