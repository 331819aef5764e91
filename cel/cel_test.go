package cel_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/matryer/is"

	"github.com/evanfair/chainflow/cel"
)

func TestBooleanExpression(t *testing.T) {
	is := is.New(t)
	e := cel.NewEvaluator()

	v, err := e.Evaluate("amount > 100000", map[string]any{"amount": 150000})
	is.NoErr(err)
	is.Equal(v, true)

	v, err = e.Evaluate("amount > 100000", map[string]any{"amount": 5000})
	is.NoErr(err)
	is.Equal(v, false)
}

func TestArithmetic(t *testing.T) {
	is := is.New(t)
	e := cel.NewEvaluator()

	v, err := e.Evaluate("base * 2.0", map[string]any{"base": 0.1})
	is.NoErr(err)
	is.Equal(v, 0.2)

	v, err = e.Evaluate("accumulator + ruleResult * weight", map[string]any{
		"accumulator": 25.0,
		"ruleResult":  20.0,
		"weight":      2.0,
	})
	is.NoErr(err)
	is.Equal(v, 65.0)
}

func TestTernary(t *testing.T) {
	is := is.New(t)
	e := cel.NewEvaluator()

	v, err := e.Evaluate("totalScore >= 60.0 ? 'APPROVED' : 'DENIED'", map[string]any{"totalScore": 65.0})
	is.NoErr(err)
	is.Equal(v, "APPROVED")
}

func TestStringResult(t *testing.T) {
	is := is.New(t)
	e := cel.NewEvaluator()

	v, err := e.Evaluate("tier", map[string]any{"tier": "premium"})
	is.NoErr(err)
	is.Equal(v, "premium")
}

func TestUndeclaredVariable(t *testing.T) {
	is := is.New(t)
	e := cel.NewEvaluator()

	_, err := e.Evaluate("missing > 10", map[string]any{"present": 1})
	is.True(err != nil)
}

func TestEmptyExpression(t *testing.T) {
	is := is.New(t)
	e := cel.NewEvaluator()

	_, err := e.Evaluate("  ", map[string]any{})
	is.True(err != nil)
}

func TestSyntaxError(t *testing.T) {
	is := is.New(t)
	e := cel.NewEvaluator()

	_, err := e.Evaluate("amount >>> 10", map[string]any{"amount": 1})
	is.True(err != nil)
}

// Recompilation is keyed on the variable set: the same expression with a
// different set of names still evaluates correctly.
func TestVariableSetChanges(t *testing.T) {
	is := is.New(t)
	e := cel.NewEvaluator()

	v, err := e.Evaluate("a + b", map[string]any{"a": 1, "b": 2})
	is.NoErr(err)
	is.Equal(v, int64(3))

	v, err = e.Evaluate("a + b", map[string]any{"a": 1, "b": 2, "c": 3})
	is.NoErr(err)
	is.Equal(v, int64(3))
}

func TestConcurrentEvaluation(t *testing.T) {
	is := is.New(t)
	e := cel.NewEvaluator()

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := e.Evaluate("n * 2", map[string]any{"n": i})
			if err != nil {
				errs <- err
				return
			}
			if v != int64(i*2) {
				errs <- fmt.Errorf("n=%d: got %v", i, v)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		is.NoErr(err)
	}
}
