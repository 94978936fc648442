package datamodel

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Encoding selects the wire representation used by Diff.Encode.
type Encoding int

const (
	EncodingJSON Encoding = iota
	EncodingMsgPack
)

func (e Encoding) String() string {
	switch e {
	case EncodingJSON:
		return "json"
	case EncodingMsgPack:
		return "msgpack"
	default:
		return "unknown"
	}
}

// DiffEntry is the serialised form of one diff path.
type DiffEntry struct {
	Path    string `json:"path" msgpack:"p"`
	Value   any    `json:"value,omitempty" msgpack:"v,omitempty"`
	Deleted bool   `json:"deleted,omitempty" msgpack:"d,omitempty"`
}

// Entries returns the diff as serialisable entries. Nested documents are
// replaced by their snapshots and deletions are flagged.
func (d *Diff) Entries() []DiffEntry {
	entries := make([]DiffEntry, 0, d.Len())
	for path, value := range d.All() {
		if value == Null {
			entries = append(entries, DiffEntry{Path: path, Deleted: true})
			continue
		}
		entries = append(entries, DiffEntry{Path: path, Value: plainValue(value)})
	}
	return entries
}

// Encode serialises the diff. Diffs are in-memory objects; this exists for
// consumers that ship them elsewhere.
func (d *Diff) Encode(enc Encoding) ([]byte, error) {
	entries := d.Entries()
	switch enc {
	case EncodingJSON:
		return json.Marshal(entries)
	case EncodingMsgPack:
		var buf bytes.Buffer
		encoder := msgpack.GetEncoder()
		defer msgpack.PutEncoder(encoder)
		encoder.Reset(&buf)
		encoder.SetSortMapKeys(true)
		if err := encoder.Encode(entries); err != nil {
			return nil, fmt.Errorf("datamodel: encode diff using msgpack: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("datamodel: unsupported diff encoding %v", enc)
	}
}

// DecodeDiff restores a diff produced by Encode. Deleted entries come back as
// Null; nested documents come back as plain maps.
func DecodeDiff(enc Encoding, payload []byte) (*Diff, error) {
	var entries []DiffEntry
	switch enc {
	case EncodingJSON:
		if err := json.Unmarshal(payload, &entries); err != nil {
			return nil, fmt.Errorf("datamodel: decode diff json: %w", err)
		}
	case EncodingMsgPack:
		decoder := msgpack.GetDecoder()
		defer msgpack.PutDecoder(decoder)
		decoder.Reset(bytes.NewReader(payload))
		if err := decoder.Decode(&entries); err != nil {
			return nil, fmt.Errorf("datamodel: decode diff msgpack: %w", err)
		}
	default:
		return nil, fmt.Errorf("datamodel: unsupported diff encoding %v", enc)
	}
	diff := NewDiff()
	for _, entry := range entries {
		if entry.Deleted {
			diff.record(entry.Path, Null)
			continue
		}
		diff.record(entry.Path, entry.Value)
	}
	return diff, nil
}
