package chainflow

import (
	"time"
)

// A Rule is the atomic unit of evaluation: a named condition expression
// plus a message describing what a match means. Rules are immutable once
// constructed and owned by the configuration node referencing them.
type Rule struct {
	ID        string
	Condition string
	Message   string
}

// NewRule constructs a rule.
func NewRule(id, condition, message string) Rule {
	return Rule{ID: id, Condition: condition, Message: message}
}

// ResultType classifies the outcome of evaluating one rule.
type ResultType int

const (
	// ResultMatch: the condition evaluated to true, or produced a
	// non-boolean value.
	ResultMatch ResultType = iota

	// ResultNoMatch: the condition evaluated to false.
	ResultNoMatch

	// ResultError: the expression evaluator rejected the condition.
	ResultError

	// ResultSkipped marks a rule or stage that was never evaluated
	// (unsatisfied dependency, failed gate). Skips are not failures.
	ResultSkipped
)

func (t ResultType) String() string {
	switch t {
	case ResultMatch:
		return "match"
	case ResultNoMatch:
		return "no-match"
	case ResultError:
		return "error"
	case ResultSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// RuleResult is the immutable record of one rule evaluation.
type RuleResult struct {
	// RuleName is the ID of the rule that was evaluated.
	RuleName string

	// Message copied from the rule, or a skip/error explanation for
	// synthetic results.
	Message string

	// Triggered is true when the condition evaluated to boolean true,
	// or produced a non-boolean value.
	Triggered bool

	Type ResultType

	// Value is the raw evaluator output: a bool for logical
	// conditions, the computed value otherwise.
	Value any

	// Err is set when Type is ResultError.
	Err error

	Timestamp time.Time
	Duration  time.Duration
}

// RuleEvaluator evaluates single rules against an EvaluationContext
// through an ExpressionEvaluator, timing each evaluation and
// classifying its outcome.
type RuleEvaluator struct {
	eval ExpressionEvaluator
}

// NewRuleEvaluator returns a rule evaluator backed by ev.
func NewRuleEvaluator(ev ExpressionEvaluator) *RuleEvaluator {
	return &RuleEvaluator{eval: ev}
}

// Evaluate runs the rule's condition against the context variables.
// An evaluator failure yields a ResultError record; it never panics
// and never aborts the caller.
func (e *RuleEvaluator) Evaluate(r Rule, ctx *EvaluationContext) RuleResult {
	start := time.Now()
	value, err := e.eval.Evaluate(r.Condition, ctx.Variables())

	rr := RuleResult{
		RuleName:  r.ID,
		Message:   r.Message,
		Timestamp: start,
		Duration:  time.Since(start),
	}

	switch {
	case err != nil:
		rr.Type = ResultError
		rr.Err = err
	default:
		rr.Value = value
		switch v := value.(type) {
		case bool:
			rr.Triggered = v
			if v {
				rr.Type = ResultMatch
			} else {
				rr.Type = ResultNoMatch
			}
		case nil:
			rr.Type = ResultNoMatch
		default:
			// Value-producing rules (routers, score components)
			// count as matched; the owning executor interprets
			// the value.
			rr.Triggered = true
			rr.Type = ResultMatch
		}
	}
	return rr
}

// skippedResult builds the marker recorded for a rule or stage that was
// not evaluated.
func skippedResult(ruleID, reason string) RuleResult {
	return RuleResult{
		RuleName:  ruleID,
		Message:   reason,
		Type:      ResultSkipped,
		Timestamp: time.Now(),
	}
}

// errorResult builds a synthetic error record for a failure outside a
// rule evaluation proper, e.g. a gating or accumulation expression the
// evaluator rejected.
func errorResult(ruleID, reason string, err error) RuleResult {
	return RuleResult{
		RuleName:  ruleID,
		Message:   reason,
		Type:      ResultError,
		Err:       err,
		Timestamp: time.Now(),
	}
}
