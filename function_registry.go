package datamodel

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Function is a custom helper callable from mapping expressions.
type Function func(args ...any) (any, error)

// FunctionRegistry holds custom functions. Names are case-insensitive and
// stored lower-cased.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry returns an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{functions: make(map[string]Function)}
}

// Register adds fn under name. Names must be unique.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	key := strings.ToLower(strings.TrimSpace(name))
	switch {
	case key == "":
		return fmt.Errorf("datamodel: function name must not be empty")
	case fn == nil:
		return fmt.Errorf("datamodel: function %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	if _, taken := r.functions[key]; taken {
		return fmt.Errorf("datamodel: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// Clone copies the registry so later registrations do not leak between
// change sets.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &FunctionRegistry{functions: maps.Clone(r.functions)}
}

// Call runs the function registered as name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("datamodel: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("datamodel: function %q not registered", name)
	}
	return fn(args...)
}

// Names lists the registered names in sorted order.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.functions))
}

// caller returns a closure invoking name, the shape engines bind functions as.
func (r *FunctionRegistry) caller(name string) func(...any) (any, error) {
	return func(args ...any) (any, error) {
		return r.Call(name, args...)
	}
}

// bind exposes every function by name plus call(name, args...) in vars.
func (r *FunctionRegistry) bind(vars map[string]any) {
	if r == nil {
		return
	}
	vars["call"] = func(name string, args ...any) (any, error) {
		return r.Call(name, args...)
	}
	for _, name := range r.Names() {
		vars[name] = r.caller(name)
	}
}

// WithFunctionRegistry exposes the functions of registry to mapping
// expressions compiled by the default evaluator.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *changeSetConfig) {
		if registry != nil {
			cfg.functions = registry.Clone()
		}
	}
}

// WithCustomFunction registers fn under name for mapping expressions.
// Invalid or duplicate registrations are ignored.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *changeSetConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}
