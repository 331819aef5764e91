package chainflow

import "sort"

// EvaluationContext is the mutable variable binding shared by every rule
// evaluated in one chain execution. Variables keep their insertion
// order; once set, a variable stays visible to all subsequently
// evaluated rules.
//
// A context belongs to exactly one chain invocation at a time. The
// engine never locks it; callers running chains concurrently must give
// each invocation its own context.
type EvaluationContext struct {
	names  []string
	values map[string]any

	// Audit trail of intermediate results recorded by executors,
	// keyed and ordered like the variables above.
	stageNames   []string
	stageResults map[string]any
	currentStage string
}

// NewEvaluationContext returns an empty context.
func NewEvaluationContext() *EvaluationContext {
	return &EvaluationContext{
		values:       map[string]any{},
		stageResults: map[string]any{},
	}
}

// NewEvaluationContextWith returns a context seeded with the given
// variables. Seed order is alphabetical so that identically seeded
// contexts are indistinguishable.
func NewEvaluationContextWith(vars map[string]any) *EvaluationContext {
	c := NewEvaluationContext()
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c.Set(k, vars[k])
	}
	return c
}

// Set binds a variable. Rebinding an existing name overwrites the value
// but keeps the name's original position.
func (c *EvaluationContext) Set(name string, value any) {
	if _, ok := c.values[name]; !ok {
		c.names = append(c.names, name)
	}
	c.values[name] = value
}

// Get returns the value bound to name.
func (c *EvaluationContext) Get(name string) (any, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Has reports whether name is bound.
func (c *EvaluationContext) Has(name string) bool {
	_, ok := c.values[name]
	return ok
}

// Names returns the variable names in insertion order.
func (c *EvaluationContext) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of bound variables.
func (c *EvaluationContext) Len() int { return len(c.values) }

// Variables returns a copy of the bindings suitable for handing to an
// ExpressionEvaluator. Mutating the copy does not affect the context.
func (c *EvaluationContext) Variables() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// CurrentStage returns the marker set by the executor currently running,
// e.g. "router-evaluation". Empty outside an execution.
func (c *EvaluationContext) CurrentStage() string { return c.currentStage }

// StageNames returns the audit trail keys in the order they were first
// recorded.
func (c *EvaluationContext) StageNames() []string {
	out := make([]string, len(c.stageNames))
	copy(out, c.stageNames)
	return out
}

// StageResults returns a copy of the audit trail recorded so far.
func (c *EvaluationContext) StageResults() map[string]any {
	out := make(map[string]any, len(c.stageResults))
	for k, v := range c.stageResults {
		out[k] = v
	}
	return out
}

func (c *EvaluationContext) setStage(name string) { c.currentStage = name }

func (c *EvaluationContext) addStageResult(key string, value any) {
	if _, ok := c.stageResults[key]; !ok {
		c.stageNames = append(c.stageNames, key)
	}
	c.stageResults[key] = value
}
