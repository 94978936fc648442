package datamodel

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestDocumentReadThroughStagedWrites(t *testing.T) {
	doc := NewFrom(map[string]any{"a": 1})
	doc.Set("a", 2)
	doc.Set("b", "new")

	if got := doc.Value("a"); got != 2 {
		t.Fatalf("expected staged value 2, got %v", got)
	}
	if got := doc.Value("b"); got != "new" {
		t.Fatalf("expected staged value new, got %v", got)
	}
	if !doc.Dirty() {
		t.Fatalf("expected document to be dirty")
	}

	doc.Delete("a")
	if doc.Has("a") {
		t.Fatalf("expected staged delete to hide committed value")
	}
	if _, ok := doc.Get("missing"); ok {
		t.Fatalf("expected missing key to be absent")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := New()
	doc.Set("a", 5)
	if !doc.Commit() {
		t.Fatalf("expected first commit to report a change")
	}
	if got := doc.Value("a"); got != 5 {
		t.Fatalf("expected 5 after commit, got %v", got)
	}
	diff := doc.CommitInto(nil)
	if diff.Has("a") || diff.Len() != 0 {
		t.Fatalf("expected no change on second commit, got %v", diff.Map())
	}
	if doc.Dirty() {
		t.Fatalf("expected clean document after commit")
	}
}

func TestDocumentInitialValuesAreBaseline(t *testing.T) {
	doc := NewFrom(map[string]any{"a": 1, "nested": map[string]any{"b": 2}})
	if doc.Dirty() {
		t.Fatalf("expected initial values to be committed")
	}
	if diff := doc.CommitInto(nil); diff.Len() != 0 {
		t.Fatalf("expected initial values not to be reported, got %v", diff.Map())
	}
	if got, _ := Lookup(doc, "nested.b"); got != 2 {
		t.Fatalf("expected nested value 2, got %v", got)
	}
}

func TestDocumentInvalidKeysPanic(t *testing.T) {
	cases := []struct {
		name  string
		write func(doc *Document)
	}{
		{name: "float", write: func(doc *Document) { doc.Set(1.5, 1) }},
		{name: "negative", write: func(doc *Document) { doc.Set(-1, 1) }},
		{name: "bool", write: func(doc *Document) { doc.Set(true, 1) }},
		{name: "unsigned overflow", write: func(doc *Document) { doc.Set(uint64(1<<63), 1) }},
		{name: "nested map key", write: func(doc *Document) {
			doc.Set("bag", map[any]any{1: "gem", -1: "x"})
		}},
		{name: "deeply nested map key", write: func(doc *Document) {
			doc.Set("bag", []any{map[string]any{"slot": map[any]any{2.5: "x"}}})
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				recovered := recover()
				err, ok := recovered.(error)
				if !ok || !errors.Is(err, ErrInvalidKey) {
					t.Fatalf("expected ErrInvalidKey panic, got %v", recovered)
				}
			}()
			tc.write(New())
		})
	}
}

func TestDocumentInvalidNestedKeyLeavesDocumentUsable(t *testing.T) {
	doc := New()
	func() {
		defer func() { _ = recover() }()
		doc.Set("bag", map[any]any{-1: "x"})
	}()
	if doc.Has("bag") {
		t.Fatalf("rejected write should not be staged")
	}

	doc.Set("z", 2)
	doc.Set("bag", map[any]any{int8(1): "gem"})
	if !doc.Commit() {
		t.Fatalf("expected commit to report changes")
	}
	if doc.Dirty() {
		t.Fatalf("expected no pending writes after commit")
	}
	if got, _ := Lookup(doc, "z"); got != 2 {
		t.Fatalf("expected z committed, got %v", got)
	}
	if got, _ := Lookup(doc, "bag.1"); got != "gem" {
		t.Fatalf("expected normalised nested key, got %v", got)
	}
}

func TestNullSentinelIdentity(t *testing.T) {
	var deleted any = Null
	if deleted != Null || !IsNull(null{}) {
		t.Fatalf("expected every Null value to compare equal")
	}
	if fmt.Sprint(Null) != "NULL" {
		t.Fatalf("unexpected Null rendering %q", fmt.Sprint(Null))
	}
}

func TestDocumentNormalisesIntegerKeys(t *testing.T) {
	doc := New()
	doc.Set(int64(2), "b")
	doc.Set(uint8(1), "a")
	if got := doc.Value(2); got != "b" {
		t.Fatalf("expected int64 key to normalise to int, got %v", got)
	}
	if got := doc.Value(int32(1)); got != "a" {
		t.Fatalf("expected uint8 key to normalise to int, got %v", got)
	}
	if doc.Len() != 2 {
		t.Fatalf("expected length 2, got %d", doc.Len())
	}
}

func TestDocumentIterationOrder(t *testing.T) {
	doc := NewFrom(map[string]any{"b": 1, "a": 2})
	doc.Set("c", 3)
	doc.Set("a", 9)
	doc.Set("z", 1)
	doc.Delete("z")
	doc.Set("z", 2)
	doc.Delete("b")

	var keys []any
	values := map[any]any{}
	for key, value := range doc.All() {
		keys = append(keys, key)
		values[key] = value
	}

	wantKeys := []any{"a", "c", "z"}
	if !reflect.DeepEqual(wantKeys, keys) {
		t.Fatalf("expected keys %v, got %v", wantKeys, keys)
	}
	if values["a"] != 9 || values["c"] != 3 || values["z"] != 2 {
		t.Fatalf("unexpected values %v", values)
	}
}

func TestDocumentIterationStopsEarly(t *testing.T) {
	doc := NewFrom(map[string]any{"a": 1, "b": 2})
	doc.Set("c", 3)
	count := 0
	for range doc.All() {
		count++
		break
	}
	if count != 1 {
		t.Fatalf("expected iteration to stop after one key, got %d", count)
	}
}

func TestDocumentLength(t *testing.T) {
	doc := New()
	if doc.Len() != 0 {
		t.Fatalf("expected empty length 0, got %d", doc.Len())
	}
	doc.Set(1, "a")
	doc.Set(2, "b")
	doc.Set(3, "c")
	doc.Set(5, "e")
	if doc.Len() != 3 {
		t.Fatalf("expected length 3 before gap, got %d", doc.Len())
	}
	doc.Commit()

	doc.Delete(2)
	if doc.Len() != 1 {
		t.Fatalf("expected length 1 after deleting 2, got %d", doc.Len())
	}
	doc.Set(2, "B")
	if doc.Len() != 3 {
		t.Fatalf("expected length 3 after refilling gap, got %d", doc.Len())
	}
	doc.Set(4, "d")
	if doc.Len() != 5 {
		t.Fatalf("expected length 5 after closing gap, got %d", doc.Len())
	}
}

func TestDocumentSliceBecomesArrayLike(t *testing.T) {
	doc := NewFrom(map[string]any{"inventory": []any{"sword", "shield"}})
	inventory, ok := doc.Value("inventory").(*Document)
	if !ok {
		t.Fatalf("expected nested document, got %T", doc.Value("inventory"))
	}
	if inventory.Len() != 2 || inventory.Value(1) != "sword" {
		t.Fatalf("expected 1-based keys, got len=%d first=%v", inventory.Len(), inventory.Value(1))
	}
	inventory.Set(3, "potion")

	snapshot := doc.Snapshot()
	want := map[string]any{"inventory": []any{"sword", "shield", "potion"}}
	if !reflect.DeepEqual(want, snapshot) {
		t.Fatalf("snapshot mismatch:\nwant: %#v\n got: %#v", want, snapshot)
	}
}

func TestDocumentStructuredWritesAreCopied(t *testing.T) {
	doc := New()
	player := map[string]any{"hp": 1}
	doc.Set("player", player)
	player["hp"] = 2
	doc.Commit()

	if got, _ := Lookup(doc, "player.hp"); got != 1 {
		t.Fatalf("expected caller mutation not to leak, got %v", got)
	}
}

func TestDocumentNestedIdentityPreserved(t *testing.T) {
	doc := NewFrom(map[string]any{"player": map[string]any{"hp": 1, "mp": 2}})
	child := doc.Value("player").(*Document)

	doc.Set("player", map[string]any{"hp": 5})
	doc.Commit()

	if doc.Value("player") != child {
		t.Fatalf("expected nested document to be updated in place")
	}
	if child.Value("hp") != 5 {
		t.Fatalf("expected hp updated, got %v", child.Value("hp"))
	}
	if child.Has("mp") {
		t.Fatalf("expected mp removed by wholesale assignment")
	}
}

func TestDocumentIgnoreSuspendsCommit(t *testing.T) {
	doc := New()
	doc.SetIgnore(true)
	doc.Set("a", 1)
	if doc.Commit() {
		t.Fatalf("expected ignored document not to commit")
	}
	if !doc.Ignored() || !doc.Dirty() {
		t.Fatalf("expected staged writes kept while ignored")
	}
	if doc.Value("a") != 1 {
		t.Fatalf("expected read-through while ignored")
	}
	doc.SetIgnore(false)
	diff := doc.CommitInto(nil)
	if got, _ := diff.Get("a"); got != 1 {
		t.Fatalf("expected change after resuming, got %v", diff.Map())
	}
}

func TestDocumentIdentity(t *testing.T) {
	a, b := New(), New()
	if a.ID() == "" || a.ID() == b.ID() {
		t.Fatalf("expected distinct identities, got %q and %q", a.ID(), b.ID())
	}
}

func TestNewFromLayers(t *testing.T) {
	doc := NewFromLayers(
		map[string]any{"player": map[string]any{"hp": 50}, "debug": nil},
		map[string]any{"player": map[string]any{"hp": 100, "mp": 10}, "debug": true},
	)
	if got, _ := Lookup(doc, "player.hp"); got != 50 {
		t.Fatalf("expected strongest layer to win, got %v", got)
	}
	if got, _ := Lookup(doc, "player.mp"); got != 10 {
		t.Fatalf("expected weaker layer to fill, got %v", got)
	}
	if doc.Has("debug") {
		t.Fatalf("expected nil in strong layer to remove key")
	}
}

func TestNullSentinel(t *testing.T) {
	if !IsNull(Null) || IsNull(nil) {
		t.Fatalf("expected Null to be distinct from nil")
	}
	doc := NewFrom(map[string]any{"a": 1})
	doc.Set("a", Null)
	diff := doc.CommitInto(nil)
	if got, _ := diff.Get("a"); !IsNull(got) {
		t.Fatalf("expected writing Null to delete, got %v", got)
	}
}
