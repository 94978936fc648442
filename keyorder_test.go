package datamodel

import (
	"reflect"
	"testing"
)

func orderedKeys(o *keyOrder) []any {
	var keys []any
	o.each(func(key any) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func TestKeyOrderCompactsHoles(t *testing.T) {
	var o keyOrder
	for _, key := range []any{"a", "b", 1, "c"} {
		o.add(key)
	}
	o.add("a")
	o.remove("b")
	if o.holes != 1 || len(o.keys) != 4 {
		t.Fatalf("expected one hole before compaction, got holes=%d len=%d", o.holes, len(o.keys))
	}
	o.remove(1)
	o.remove("c")
	if o.holes != 0 || len(o.keys) != 1 {
		t.Fatalf("expected compaction once holes outnumber keys, got holes=%d len=%d", o.holes, len(o.keys))
	}
	o.add("b")
	if want := []any{"a", "b"}; !reflect.DeepEqual(want, orderedKeys(&o)) {
		t.Fatalf("expected %v, got %v", want, orderedKeys(&o))
	}
	o.remove("missing")
}
