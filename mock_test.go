package chainflow_test

import (
	"fmt"
)

// -------------------------------------------------- SCRIPTED EVALUATOR
// scriptedEvaluator is used for testing the pattern executors without a
// real expression language. Each expression string maps to a canned
// value, an error, or a scriptFunc computing a value from the variable
// bindings. It records every expression evaluated, in order.
type scriptedEvaluator struct {
	script map[string]any
	calls  []string
}

// scriptFunc computes a scripted result from the variables the engine
// passed in, for tests that need to observe context mutation.
type scriptFunc func(vars map[string]any) (any, error)

func newScriptedEvaluator(script map[string]any) *scriptedEvaluator {
	return &scriptedEvaluator{script: script}
}

func (m *scriptedEvaluator) Evaluate(expr string, vars map[string]any) (any, error) {
	m.calls = append(m.calls, expr)
	v, ok := m.script[expr]
	if !ok {
		return nil, fmt.Errorf("no scripted result for %q", expr)
	}
	switch t := v.(type) {
	case scriptFunc:
		return t(vars)
	case error:
		return nil, t
	default:
		return t, nil
	}
}

// evaluated reports whether the expression was evaluated at least once.
func (m *scriptedEvaluator) evaluated(expr string) bool {
	for _, c := range m.calls {
		if c == expr {
			return true
		}
	}
	return false
}

// number reads a numeric variable out of the bindings, tolerating the
// int/float variety the engine may have stored.
func number(vars map[string]any, name string) float64 {
	switch n := vars[name].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
