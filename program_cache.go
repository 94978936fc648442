package datamodel

// ProgramCache stores compiled programs keyed by their source string. Each
// ChangeSet keeps its compiled key paths in one; expression evaluators use
// the one supplied with WithProgramCache.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// NewProgramCache returns a map-backed ProgramCache. Like the rest of the
// package it is meant for single-threaded use.
func NewProgramCache() ProgramCache {
	return mapCache{}
}

type mapCache map[string]any

func (c mapCache) Get(key string) (any, bool) {
	value, ok := c[key]
	return value, ok
}

func (c mapCache) Set(key string, value any) {
	c[key] = value
}

// WithProgramCache registers a program cache on the default expression
// evaluator.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *changeSetConfig) {
		cfg.programCache = cache
	}
}

// cacheLoad returns the entry stored under key when it has type T.
func cacheLoad[T any](cache ProgramCache, key string) (T, bool) {
	var zero T
	if cache == nil {
		return zero, false
	}
	value, ok := cache.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := value.(T)
	return typed, ok
}

func cacheStore(cache ProgramCache, key string, value any) {
	if cache != nil {
		cache.Set(key, value)
	}
}

// compilePath returns the compiled path for raw, reusing cached entries so
// identical strings share one *Path.
func compilePath(cache ProgramCache, raw string) (*Path, error) {
	if path, ok := cacheLoad[*Path](cache, raw); ok {
		return path, nil
	}
	path, err := ParsePath(raw)
	if err != nil {
		return nil, err
	}
	cacheStore(cache, raw, path)
	return path, nil
}
