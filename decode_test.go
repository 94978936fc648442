package datamodel

import (
	"errors"
	"reflect"
	"testing"
)

type playerView struct {
	Name      string   `json:"name"`
	HP        int      `json:"hp"`
	Inventory []string `json:"inventory"`
}

type gameView struct {
	Level  int        `json:"level"`
	Player playerView `json:"player"`
}

func TestDecode(t *testing.T) {
	doc := NewFrom(map[string]any{
		"level": 3,
		"player": map[string]any{
			"name":      "hero",
			"hp":        10,
			"inventory": []any{"sword", "shield"},
		},
	})
	doc.Value("player").(*Document).Set("hp", 8)

	got, err := Decode[gameView](doc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := gameView{Level: 3, Player: playerView{Name: "hero", HP: 8, Inventory: []string{"sword", "shield"}}}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("decode mismatch:\nwant: %#v\n got: %#v", want, got)
	}
}

func TestDecodePath(t *testing.T) {
	doc := NewFrom(map[string]any{"player": map[string]any{"name": "hero", "hp": 10}})

	got, err := DecodePath[playerView](doc, "player")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != "hero" || got.HP != 10 {
		t.Fatalf("unexpected view %+v", got)
	}

	if _, err := DecodePath[playerView](doc, "missing"); !errors.Is(err, ErrPathNotFound) {
		t.Fatalf("expected ErrPathNotFound, got %v", err)
	}
	if _, err := DecodePath[playerView](doc, "player.name"); err == nil {
		t.Fatalf("expected error decoding a scalar")
	}
	if _, err := DecodePath[playerView](doc, "a..b"); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath, got %v", err)
	}
	if _, err := Decode[playerView](nil); err == nil {
		t.Fatalf("expected error for nil document")
	}
}

func TestDecodeStrict(t *testing.T) {
	doc := NewFrom(map[string]any{"name": "hero", "mana": 4})

	if _, err := Decode[playerView](doc); err != nil {
		t.Fatalf("lenient decode: %v", err)
	}
	if _, err := Decode[playerView](doc, DecodeStrict()); err == nil {
		t.Fatalf("expected strict decode to reject unknown field")
	}
}
