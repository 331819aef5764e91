// Package cel provides an implementation of the chainflow
// ExpressionEvaluator interface backed by Google's cel-go.
// See https://github.com/google/cel-go and https://opensource.google/projects/cel
// for more information about CEL. Rule conditions must conform to the
// CEL spec: https://github.com/google/cel-spec.
package cel

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"
)

// Evaluator compiles and evaluates CEL expressions against dynamically
// typed variable bindings. Compiled programs are cached per expression
// and variable set, so repeated chain executions reuse compilation work.
//
// The cache is the only shared mutable state; an Evaluator is safe for
// concurrent use.
type Evaluator struct {
	mu       sync.RWMutex
	programs map[string]cel.Program
}

// costLimit bounds evaluation cost so a pathological expression in an
// authored chain cannot run away.
const costLimit = 1_000_000

// NewEvaluator returns an evaluator with an empty program cache.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		programs: make(map[string]cel.Program),
	}
}

// Evaluate compiles the expression (or takes it from the cache) and
// runs it against the variables. Chain variables are declared to CEL as
// dyn, matching the dynamically typed evaluation context.
func (e *Evaluator) Evaluate(expr string, vars map[string]any) (any, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, errors.New("empty expression")
	}

	prg, err := e.program(expr, vars)
	if err != nil {
		return nil, err
	}

	out, _, err := prg.Eval(vars)
	if err != nil {
		return nil, errors.Wrapf(err, "evaluating %q", expr)
	}
	return out.Value(), nil
}

// program returns the compiled program for the expression and variable
// set, compiling and caching it on first use.
func (e *Evaluator) program(expr string, vars map[string]any) (cel.Program, error) {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	key := expr + "\x00" + strings.Join(names, "\x00")

	e.mu.RLock()
	prg, ok := e.programs[key]
	e.mu.RUnlock()
	if ok {
		return prg, nil
	}

	opts := make([]cel.EnvOption, 0, len(names))
	for _, name := range names {
		opts = append(opts, cel.Variable(name, cel.DynType))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating CEL environment")
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, errors.Wrapf(issues.Err(), "compiling %q", expr)
	}

	prg, err = env.Program(ast, cel.CostLimit(costLimit))
	if err != nil {
		return nil, errors.Wrapf(err, "building program for %q", expr)
	}

	e.mu.Lock()
	e.programs[key] = prg
	e.mu.Unlock()
	return prg, nil
}
