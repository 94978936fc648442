package datamodel

const engineJS = "js"

// JSEvaluatorOption configures the goja-backed evaluator. The options exist
// in every build so callers compile without the js_eval tag.
type JSEvaluatorOption func(*jsOptions)

type jsOptions struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// JSWithProgramCache applies a ProgramCache to the JS evaluator.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(o *jsOptions) {
		o.cache = cache
	}
}

// JSWithFunctionRegistry exposes the functions of registry as globals.
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(o *jsOptions) {
		o.registry = registry.Clone()
	}
}

func newJSOptions(opts []JSEvaluatorOption) jsOptions {
	var o jsOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
