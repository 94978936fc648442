package datamodel

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
)

// ErrInvalidKey indicates a key that is neither a string nor a non-negative
// integer. Writes with such keys panic since they are programmer errors.
var ErrInvalidKey = errors.New("datamodel: key must be a string or a non-negative integer")

type null struct{}

func (null) String() string { return "NULL" }

// Null marks a key that was explicitly deleted. It is reported in diffs so
// consumers can tell "deleted" apart from "never set". Writing Null behaves
// exactly like writing nil. Its type is unexported, so the variable cannot
// be rebound to any other value.
var Null = null{}

// IsNull reports whether value is the delete sentinel.
func IsNull(value any) bool {
	return value == Null
}

func normalizeKey(key any) (any, error) {
	switch k := key.(type) {
	case string:
		return k, nil
	case int:
		if k < 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidKey, k)
		}
		return k, nil
	case int8, int16, int32, int64:
		n := reflect.ValueOf(k).Int()
		if n < 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidKey, n)
		}
		return int(n), nil
	case uint, uint8, uint16, uint32, uint64:
		n := reflect.ValueOf(k).Uint()
		if n > math.MaxInt {
			return nil, fmt.Errorf("%w: %d", ErrInvalidKey, n)
		}
		return int(n), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidKey, key)
	}
}

func mustKey(key any) any {
	k, err := normalizeKey(key)
	if err != nil {
		panic(err)
	}
	return k
}

func formatKey(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case int:
		return strconv.Itoa(k)
	default:
		return fmt.Sprint(k)
	}
}

// copyStructure deep copies a plain structure and normalises the keys of
// every map[any]any in it. It panics with ErrInvalidKey on the first key
// that is neither a string nor a non-negative integer.
func copyStructure(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = copyStructure(item)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(typed))
		for key, item := range typed {
			out[mustKey(key)] = copyStructure(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = copyStructure(item)
		}
		return out
	default:
		return value
	}
}

// isStructured reports whether value is a plain structure that gets promoted
// to a nested Document on commit.
func isStructured(value any) bool {
	switch value.(type) {
	case map[string]any, map[any]any, []any:
		return true
	default:
		return false
	}
}

type field struct {
	key   any
	value any
}

// structuredFields lists the fields of a plain structure in a stable order:
// sorted for maps, 1-based for slices.
func structuredFields(value any) []field {
	switch typed := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		fields := make([]field, len(keys))
		for i, key := range keys {
			fields[i] = field{key: key, value: typed[key]}
		}
		return fields
	case map[any]any:
		fields := make([]field, 0, len(typed))
		for key, val := range typed {
			fields = append(fields, field{key: mustKey(key), value: val})
		}
		sort.Slice(fields, func(i, j int) bool {
			return lessKey(fields[i].key, fields[j].key)
		})
		return fields
	case []any:
		fields := make([]field, len(typed))
		for i, val := range typed {
			fields[i] = field{key: i + 1, value: val}
		}
		return fields
	default:
		return nil
	}
}

// lessKey orders integer keys before string keys.
func lessKey(a, b any) bool {
	ai, aInt := a.(int)
	bi, bInt := b.(int)
	switch {
	case aInt && bInt:
		return ai < bi
	case aInt != bInt:
		return aInt
	default:
		return formatKey(a) < formatKey(b)
	}
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() && ta.Kind() != reflect.Struct && ta.Kind() != reflect.Array && ta.Kind() != reflect.Interface {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
