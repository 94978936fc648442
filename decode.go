package datamodel

import (
	"fmt"

	"github.com/goliatone/go-datamodel/internal/hydrate"
)

// DecodeOption tunes Decode and DecodePath.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	strict    bool
	useNumber bool
}

// DecodeStrict rejects document keys with no matching field in T.
func DecodeStrict() DecodeOption {
	return func(cfg *decodeConfig) { cfg.strict = true }
}

// DecodeUseNumber keeps numbers bound to interface fields as json.Number.
func DecodeUseNumber() DecodeOption {
	return func(cfg *decodeConfig) { cfg.useNumber = true }
}

func decoderFor[T any](opts []DecodeOption) hydrate.Decoder[T] {
	var cfg decodeConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return hydrate.Decoder[T]{Strict: cfg.strict, UseNumber: cfg.useNumber}
}

// Decode hydrates T from the current read-through state of doc. Field names
// follow the json tags of T.
func Decode[T any](doc *Document, opts ...DecodeOption) (T, error) {
	var zero T
	if doc == nil {
		return zero, fmt.Errorf("datamodel: decode: document is nil")
	}
	src := hydrate.Source{DocumentID: doc.ID()}
	return decoderFor[T](opts).Decode(src, doc.Snapshot())
}

// DecodePath hydrates T from the nested document at path.
func DecodePath[T any](doc *Document, path string, opts ...DecodeOption) (T, error) {
	var zero T
	if doc == nil {
		return zero, fmt.Errorf("datamodel: decode: document is nil")
	}
	p, err := ParsePath(path)
	if err != nil {
		return zero, err
	}
	value, ok := p.Get(doc)
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrPathNotFound, p.String())
	}
	var payload map[string]any
	switch typed := value.(type) {
	case *Document:
		payload = typed.Snapshot()
	case map[string]any:
		payload = typed
	default:
		return zero, fmt.Errorf("datamodel: decode %q: %T is not a document", p.String(), value)
	}
	src := hydrate.Source{DocumentID: doc.ID(), Path: p.String()}
	return decoderFor[T](opts).Decode(src, payload)
}
