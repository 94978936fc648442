// Package hydrate decodes document snapshots into typed values through
// their json tags.
package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Source names the snapshot being decoded in errors and hooks.
type Source struct {
	DocumentID string
	Path       string
}

func (s Source) String() string {
	if s.Path == "" {
		return s.DocumentID
	}
	return s.DocumentID + "#" + s.Path
}

// Decoder turns snapshot maps into T. The zero value decodes leniently.
type Decoder[T any] struct {
	// Strict rejects payload keys with no matching field.
	Strict bool
	// UseNumber keeps numbers as json.Number in interface fields.
	UseNumber bool
	// Before runs on a private copy of the payload and may rewrite it.
	Before []func(Source, map[string]any) error
	// After runs on the decoded value.
	After []func(Source, *T) error
}

// Decode converts payload into T. payload itself is never modified.
func (d Decoder[T]) Decode(src Source, payload map[string]any) (T, error) {
	var out T
	if payload == nil {
		return out, fmt.Errorf("hydrate: payload is nil for %q", src)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return out, fmt.Errorf("hydrate: encode %q: %w", src, err)
	}
	if len(d.Before) > 0 {
		if raw, err = d.rewrite(src, raw); err != nil {
			return out, err
		}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if d.Strict {
		dec.DisallowUnknownFields()
	}
	if d.UseNumber {
		dec.UseNumber()
	}
	if err := dec.Decode(&out); err != nil {
		return out, fmt.Errorf("hydrate: decode %q: %w", src, err)
	}

	for _, hook := range d.After {
		if err := hook(src, &out); err != nil {
			return out, fmt.Errorf("hydrate: %q: %w", src, err)
		}
	}
	return out, nil
}

// rewrite feeds a fresh copy of the payload through the Before hooks and
// re-encodes the result.
func (d Decoder[T]) rewrite(src Source, raw []byte) ([]byte, error) {
	var working map[string]any
	if err := json.Unmarshal(raw, &working); err != nil {
		return nil, fmt.Errorf("hydrate: copy %q: %w", src, err)
	}
	for _, hook := range d.Before {
		if err := hook(src, working); err != nil {
			return nil, fmt.Errorf("hydrate: %q: %w", src, err)
		}
	}
	out, err := json.Marshal(working)
	if err != nil {
		return nil, fmt.Errorf("hydrate: encode %q: %w", src, err)
	}
	return out, nil
}
