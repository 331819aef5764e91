package chainflow

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// ChainResult is the aggregated outcome of one chain invocation.
// It is produced exactly once per Execute call and not modified after.
type ChainResult struct {
	ChainID   string
	ChainName string

	// Pattern is always the pattern the dispatcher resolved, regardless
	// of what the executor configuration claims.
	Pattern Pattern

	// ExecutionID uniquely identifies this invocation.
	ExecutionID string

	// Successful is false when the configuration failed to decode or
	// any rule evaluation produced an evaluator error. Skipped rules
	// and unmatched routes do not clear it.
	Successful bool

	// Skipped is true when the chain definition was disabled.
	Skipped bool

	// FinalOutcome is pattern-dependent: a ConditionalOutcome, the last
	// bound stage value, a RouteOutcome, an AccumulativeOutcome or a
	// TreeOutcome.
	FinalOutcome any

	// RuleResults holds one record per rule considered, in evaluation
	// order, including skipped-stage markers.
	RuleResults []RuleResult

	// StageResults is the audit trail of intermediate values recorded
	// by the executor (bound output variables, route keys, accumulator
	// snapshots).
	StageResults map[string]any

	// ErrorMessage describes why the chain failed when the failure was
	// not tied to a single rule (bad configuration, unknown pattern).
	ErrorMessage string

	StartedAt time.Time
	Duration  time.Duration
}

// ConditionalOutcome is the final outcome of a conditional-chaining
// execution: whether the trigger fired, and the last rule evaluated on
// the path taken.
type ConditionalOutcome struct {
	Triggered  bool
	LastRuleID string
}

// RouteOutcome is the final outcome of a result-based-routing execution.
// Routed is false when the router's key matched no route; that is a
// successful outcome callers can detect deliberately.
type RouteOutcome struct {
	Key    string
	Routed bool
}

// AccumulativeOutcome is the final outcome of an accumulative-chaining
// execution: the exact final accumulator value, never clamped or
// rounded, plus the final decision rule's value when one is configured.
type AccumulativeOutcome struct {
	Value    float64
	Decision string
}

// TreeOutcome is the final outcome of a fluent-builder execution: the
// terminal node reached. The path to it is the RuleResults list, in
// traversal order.
type TreeOutcome struct {
	RuleID  string
	Message string
}

// record appends a rule result and folds its classification into the
// aggregate: an Error-typed result makes the whole chain unsuccessful.
func (r *ChainResult) record(rr RuleResult) RuleResult {
	r.RuleResults = append(r.RuleResults, rr)
	if rr.Type == ResultError {
		r.Successful = false
	}
	return rr
}

func (r *ChainResult) addStageResult(key string, value any) {
	if r.StageResults == nil {
		r.StageResults = map[string]any{}
	}
	r.StageResults[key] = value
}

// String renders the result as a table: one row per rule evaluated, in
// evaluation order, followed by the final outcome.
func (r *ChainResult) String() string {
	tw := table.NewWriter()
	tw.SetTitle("\nCHAIN RESULT: %s (%s)\n", r.ChainID, r.Pattern)
	tw.AppendHeader(table.Row{"\nRule", "\nType", "Trig-\ngered", "\nValue", "\nDuration"})

	for _, rr := range r.RuleResults {
		tw.AppendRow(table.Row{
			rr.RuleName,
			rr.Type.String(),
			trueBlank(rr.Triggered),
			valueString(rr.Value),
			rr.Duration.Round(time.Microsecond),
		})
	}

	tw.AppendFooter(table.Row{"outcome", outcomeString(r.FinalOutcome), "", boolString(r.Successful), r.Duration.Round(time.Microsecond)})

	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	tw.SetStyle(style)
	return tw.Render()
}

func boolString(b bool) string {
	if b {
		return "OK"
	}
	return "FAILED"
}

func trueBlank(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func valueString(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case float64:
		return humanize.CommafWithDigits(n, 4)
	case float32:
		return humanize.CommafWithDigits(float64(n), 4)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func outcomeString(v any) string {
	switch o := v.(type) {
	case nil:
		return ""
	case ConditionalOutcome:
		return fmt.Sprintf("triggered=%t last=%s", o.Triggered, o.LastRuleID)
	case RouteOutcome:
		if !o.Routed {
			return "unrouted"
		}
		return "route " + o.Key
	case AccumulativeOutcome:
		s := humanize.CommafWithDigits(o.Value, 4)
		if o.Decision != "" {
			s += " -> " + o.Decision
		}
		return s
	case TreeOutcome:
		return "terminal " + o.RuleID
	default:
		return valueString(v)
	}
}
