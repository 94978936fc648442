package datamodel

import (
	"encoding/json"
	"reflect"
	"testing"
)

func sampleDiff(t *testing.T) *Diff {
	t.Helper()
	doc := NewFrom(map[string]any{
		"player": map[string]any{"hp": 10, "buff": "haste"},
		"level":  1,
	})
	player := doc.Value("player").(*Document)
	player.Set("hp", 7)
	player.Delete("buff")
	doc.Set("boss", New())
	doc.Set("level", 2)
	return doc.CommitInto(nil)
}

func TestDiffEntries(t *testing.T) {
	entries := sampleDiff(t).Entries()
	want := []DiffEntry{
		{Path: "boss", Value: map[string]any{}},
		{Path: "level", Value: 2},
		{Path: "player.hp", Value: 7},
		{Path: "player.buff", Deleted: true},
	}
	if !reflect.DeepEqual(want, entries) {
		t.Fatalf("entries mismatch:\nwant: %#v\n got: %#v", want, entries)
	}
}

func TestDiffEncodeJSON(t *testing.T) {
	payload, err := sampleDiff(t).Encode(EncodingJSON)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(raw) != 4 || raw[3]["path"] != "player.buff" || raw[3]["deleted"] != true {
		t.Fatalf("unexpected json payload: %s", payload)
	}

	decoded, err := DecodeDiff(EncodingJSON, payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if want := []string{"boss", "level", "player.hp", "player.buff"}; !reflect.DeepEqual(want, decoded.Paths()) {
		t.Fatalf("expected order preserved %v, got %v", want, decoded.Paths())
	}
	if got, _ := decoded.Get("player.buff"); !IsNull(got) {
		t.Fatalf("expected deletion restored as Null, got %v", got)
	}
	if got, _ := decoded.Get("level"); got != 2.0 {
		t.Fatalf("expected level 2, got %#v", got)
	}
}

func TestDiffEncodeMsgPack(t *testing.T) {
	original := sampleDiff(t)
	payload, err := original.Encode(EncodingMsgPack)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeDiff(EncodingMsgPack, payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Len() != original.Len() {
		t.Fatalf("expected %d entries, got %d", original.Len(), decoded.Len())
	}
	if got, _ := decoded.Get("player.hp"); !numberEquals(got, 7) {
		t.Fatalf("expected player.hp 7, got %#v", got)
	}
	if got, _ := decoded.Get("player.buff"); !IsNull(got) {
		t.Fatalf("expected deletion restored as Null, got %v", got)
	}
}

func TestDiffEncodeUnsupported(t *testing.T) {
	if _, err := NewDiff().Encode(Encoding(9)); err == nil {
		t.Fatalf("expected unsupported encoding error")
	}
	if _, err := DecodeDiff(Encoding(9), nil); err == nil {
		t.Fatalf("expected unsupported decoding error")
	}
	if Encoding(9).String() != "unknown" || EncodingMsgPack.String() != "msgpack" {
		t.Fatalf("unexpected encoding names")
	}
}

func numberEquals(value any, want float64) bool {
	switch v := value.(type) {
	case int8:
		return float64(v) == want
	case int16:
		return float64(v) == want
	case uint8:
		return float64(v) == want
	case uint16:
		return float64(v) == want
	default:
		got, ok := toFloat(value)
		return ok && got == want
	}
}
