// Package layering merges and copies the plain structures documents are
// built from.
package layering

// Merge composes layers ordered from strongest to weakest. Nested maps are
// merged key by key; any other value in a stronger layer replaces the weaker
// one outright. A nil value in a stronger layer removes the key. The result
// shares nothing with the inputs.
func Merge(layers ...map[string]any) map[string]any {
	merged := make(map[string]any)
	for i := len(layers) - 1; i >= 0; i-- {
		mergeInto(merged, layers[i])
	}
	return merged
}

func mergeInto(dst, src map[string]any) {
	for key, value := range src {
		if value == nil {
			delete(dst, key)
			continue
		}
		strong, ok := value.(map[string]any)
		if !ok {
			dst[key] = Clone(value)
			continue
		}
		weak, ok := dst[key].(map[string]any)
		if !ok {
			dst[key] = Clone(strong)
			continue
		}
		mergeInto(weak, strong)
	}
}

// Clone deep copies map[string]any, map[any]any and []any values. Anything
// else is returned as is.
func Clone[T any](value T) T {
	cloned, ok := cloneAny(value).(T)
	if !ok {
		return value
	}
	return cloned
}

func cloneAny(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		if typed == nil {
			return typed
		}
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = cloneAny(item)
		}
		return out
	case map[any]any:
		if typed == nil {
			return typed
		}
		out := make(map[any]any, len(typed))
		for key, item := range typed {
			out[key] = cloneAny(item)
		}
		return out
	case []any:
		if typed == nil {
			return typed
		}
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneAny(item)
		}
		return out
	default:
		return value
	}
}
