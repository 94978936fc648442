package datamodel

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidPath indicates a path string that cannot be parsed.
	ErrInvalidPath = errors.New("datamodel: invalid path")
	// ErrPathNotFound indicates a write through a path whose parent is not a
	// document.
	ErrPathNotFound = errors.New("datamodel: path parent not found")
)

// Path is a compiled key path such as "a.b.3" or "a.b[3]". Segments made of
// digits only address integer keys.
type Path struct {
	raw       string
	canonical string
	segments  []any
}

// ParsePath compiles raw into a Path.
func ParsePath(raw string) (*Path, error) {
	p := pathParser{input: raw}
	segments, err := p.parse()
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(segments))
	for i, segment := range segments {
		parts[i] = formatKey(segment)
	}
	return &Path{
		raw:       raw,
		canonical: strings.Join(parts, "."),
		segments:  segments,
	}, nil
}

// MustParsePath is ParsePath that panics on malformed input.
func MustParsePath(raw string) *Path {
	p, err := ParsePath(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the canonical dotted form, the form used as diff keys.
func (p *Path) String() string {
	return p.canonical
}

// Raw returns the string the path was compiled from.
func (p *Path) Raw() string {
	return p.raw
}

// Segments returns a copy of the path keys.
func (p *Path) Segments() []any {
	out := make([]any, len(p.segments))
	copy(out, p.segments)
	return out
}

// Get walks doc along the path. Missing intermediate structure yields
// absence rather than an error.
func (p *Path) Get(doc *Document) (any, bool) {
	var current any = doc
	for _, segment := range p.segments {
		next, ok := lookupSegment(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Set stages value at the path. Every segment but the last must resolve to a
// Document.
func (p *Path) Set(doc *Document, value any) error {
	parent := doc
	last := len(p.segments) - 1
	for i, segment := range p.segments[:last] {
		next, ok := lookupSegment(parent, segment)
		child, isDoc := next.(*Document)
		if !ok || !isDoc {
			return fmt.Errorf("%w: %q at %q", ErrPathNotFound, p.canonical, joinSegments(p.segments[:i+1]))
		}
		parent = child
	}
	key := p.segments[last]
	if idx, ok := key.(int); ok && !parent.Has(idx) && parent.Has(strconv.Itoa(idx)) {
		key = strconv.Itoa(idx)
	}
	parent.Set(key, value)
	return nil
}

// Lookup parses raw and reads it from doc. Malformed paths read as absent.
func Lookup(doc *Document, raw string) (any, bool) {
	p, err := ParsePath(raw)
	if err != nil {
		return nil, false
	}
	return p.Get(doc)
}

func lookupSegment(current, segment any) (any, bool) {
	switch node := current.(type) {
	case *Document:
		if node == nil {
			return nil, false
		}
		if value, ok := node.get(segment); ok {
			return value, true
		}
		if idx, ok := segment.(int); ok {
			return node.get(strconv.Itoa(idx))
		}
		return nil, false
	case map[string]any:
		value, ok := node[formatKey(segment)]
		return value, ok && value != nil
	case map[any]any:
		if value, ok := node[segment]; ok && value != nil {
			return value, true
		}
		value, ok := node[formatKey(segment)]
		return value, ok && value != nil
	case []any:
		idx, ok := segment.(int)
		if !ok || idx < 1 || idx > len(node) || node[idx-1] == nil {
			return nil, false
		}
		return node[idx-1], true
	default:
		return nil, false
	}
}

func joinSegments(segments []any) string {
	parts := make([]string, len(segments))
	for i, segment := range segments {
		parts[i] = formatKey(segment)
	}
	return strings.Join(parts, ".")
}

// pathParser is a recursive-descent parser for
//
//	path    = segment { "." segment | "[" digits "]" }
//	segment = 1*( any char except "." "[" "]" )
type pathParser struct {
	input string
	pos   int
}

func (p *pathParser) parse() ([]any, error) {
	if p.input == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	first, err := p.segment()
	if err != nil {
		return nil, err
	}
	segments := []any{first}
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case '.':
			p.pos++
			next, err := p.segment()
			if err != nil {
				return nil, err
			}
			segments = append(segments, next)
		case '[':
			p.pos++
			idx, err := p.index()
			if err != nil {
				return nil, err
			}
			segments = append(segments, idx)
		default:
			return nil, p.errorf("unexpected %q", p.input[p.pos])
		}
	}
	return segments, nil
}

func (p *pathParser) segment() (any, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '.' || c == '[' || c == ']' {
			break
		}
		p.pos++
	}
	text := p.input[start:p.pos]
	if text == "" {
		return nil, p.errorf("empty segment")
	}
	if isDigits(text) {
		n, err := strconv.Atoi(text)
		if err != nil {
			return nil, p.errorf("index %q out of range", text)
		}
		return n, nil
	}
	return text, nil
}

func (p *pathParser) index() (any, error) {
	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] != ']' {
		p.pos++
	}
	if p.pos >= len(p.input) {
		return nil, p.errorf("unterminated index")
	}
	text := p.input[start:p.pos]
	p.pos++
	if !isDigits(text) {
		return nil, p.errorf("index %q is not a non-negative integer", text)
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return nil, p.errorf("index %q out of range", text)
	}
	return n, nil
}

func (p *pathParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w %q at offset %d: %s", ErrInvalidPath, p.input, p.pos, fmt.Sprintf(format, args...))
}

func isDigits(text string) bool {
	if text == "" {
		return false
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return false
		}
	}
	return true
}
