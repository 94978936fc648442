package datamodel

import (
	"fmt"
	"sort"
	"strings"
)

// FieldDescriptor describes a leaf path and the Go type of its value.
type FieldDescriptor struct {
	Path string
	Type string
}

// Describe lists every leaf of doc as a dotted path, sorted by path. Empty
// nested documents are described as a single "document" entry.
func Describe(doc *Document) []FieldDescriptor {
	descriptors := describeDocument(doc, "")
	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].Path < descriptors[j].Path
	})
	if descriptors == nil {
		descriptors = []FieldDescriptor{}
	}
	return descriptors
}

func describeDocument(doc *Document, prefix string) []FieldDescriptor {
	if doc == nil {
		return nil
	}
	var fields []FieldDescriptor
	empty := true
	for key, value := range doc.All() {
		empty = false
		path := joinPath(prefix, formatKey(key))
		if child, ok := value.(*Document); ok {
			fields = append(fields, describeDocument(child, path)...)
			continue
		}
		fields = append(fields, FieldDescriptor{Path: path, Type: typeName(value)})
	}
	if empty && prefix != "" {
		return []FieldDescriptor{{Path: prefix, Type: "document"}}
	}
	return fields
}

// Flatten returns the leaves of doc keyed by dotted path, the same shape a
// diff takes when every field changes at once.
func Flatten(doc *Document) map[string]any {
	out := make(map[string]any)
	flatten(doc, "", out)
	return out
}

func flatten(doc *Document, prefix string, out map[string]any) {
	if doc == nil {
		return
	}
	for key, value := range doc.All() {
		path := joinPath(prefix, formatKey(key))
		if child, ok := value.(*Document); ok {
			flatten(child, path, out)
			continue
		}
		out[path] = value
	}
}

func typeName(value any) string {
	if value == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", value)
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}
