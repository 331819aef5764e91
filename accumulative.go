package chainflow

import (
	"fmt"
	"sort"
	"strings"
)

// Reserved variable names available to accumulation expressions, bound
// by the executor for each accumulation rule.
const (
	accumulatorVar = "accumulator"
	ruleResultVar  = "ruleResult"
	weightVar      = "weight"
)

// accumulativeExecutor implements accumulative-chaining: each rule's
// numeric result is folded into a running accumulator through a
// per-rule accumulation expression, so the formula itself is part of
// the declarative configuration.
type accumulativeExecutor struct {
	executorCore
}

func (e *accumulativeExecutor) execute(pc PatternConfig, ctx *EvaluationContext, res *ChainResult) {
	cfg := pc.(*AccumulativeConfig)

	acc := cfg.InitialValue
	ctx.Set(cfg.AccumulatorVariable, acc)
	e.stageResult(ctx, res, cfg.AccumulatorVariable+"_initial", acc)

	selected := e.selectRules(cfg, ctx)
	e.stageResult(ctx, res, "total_rules_available", len(cfg.Rules))
	e.stageResult(ctx, res, "rules_selected_for_execution", len(selected))
	ctx.setStage("accumulation-rules-execution")

	for i, ar := range selected {
		rr := res.record(e.rules.Evaluate(ar.Rule, ctx))
		if rr.Type == ResultError {
			// The accumulator is left unchanged; the chain keeps going.
			continue
		}

		ruleValue, ok := toFloat(rr.Value)
		if !ok {
			e.log.Warn("accumulation rule produced a non-numeric result, using 0",
				"chain", res.ChainID, "rule", ar.Rule.ID, "value", rr.Value)
			ruleValue = 0
		}

		next, err := e.accumulate(ar, acc, ruleValue, ctx)
		if err != nil {
			res.record(errorResult(ar.Rule.ID, "accumulation expression failed", err))
			continue
		}

		acc = next
		ctx.Set(cfg.AccumulatorVariable, acc)
		e.stageResult(ctx, res, fmt.Sprintf("component_%d_%s", i+1, ar.Rule.ID), ruleValue)
	}

	e.stageResult(ctx, res, cfg.AccumulatorVariable+"_final", acc)

	decision := ""
	if cfg.FinalDecisionRule != nil {
		ctx.setStage("final-decision-execution")
		rr := res.record(e.rules.Evaluate(*cfg.FinalDecisionRule, ctx))
		if rr.Type != ResultError && rr.Value != nil {
			decision = fmt.Sprintf("%v", rr.Value)
			e.stageResult(ctx, res, "finalDecision", decision)
		}
	}

	res.FinalOutcome = AccumulativeOutcome{Value: acc, Decision: decision}
}

// selectRules applies the configured selection strategy to the
// accumulation rules. No selection, or an unrecognized strategy,
// executes all rules.
func (e *accumulativeExecutor) selectRules(cfg *AccumulativeConfig, ctx *EvaluationContext) []AccumulationRule {
	sel := cfg.Selection
	if sel == nil {
		return cfg.Rules
	}

	switch sel.Strategy {
	case SelectWeightThreshold:
		return rulesAboveWeight(cfg.Rules, sel.WeightThreshold)

	case SelectTopWeighted:
		n := sel.MaxRules
		if n <= 0 || n > len(cfg.Rules) {
			n = len(cfg.Rules)
		}
		sorted := make([]AccumulationRule, len(cfg.Rules))
		copy(sorted, cfg.Rules)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Weight > sorted[j].Weight })
		return sorted[:n]

	case SelectPriorityBased:
		floor := priorityRank(sel.MinPriority)
		var selected []AccumulationRule
		for _, ar := range cfg.Rules {
			if priorityRank(ar.Priority) >= floor {
				selected = append(selected, ar)
			}
		}
		sort.SliceStable(selected, func(i, j int) bool {
			pi, pj := priorityRank(selected[i].Priority), priorityRank(selected[j].Priority)
			if pi != pj {
				return pi > pj
			}
			return selected[i].Weight > selected[j].Weight
		})
		return selected

	case SelectDynamicThreshold:
		expr := sel.ThresholdExpression
		if expr == "" {
			expr = "0.5"
		}
		v, err := e.eval.Evaluate(expr, ctx.Variables())
		if err != nil {
			e.log.Warn("dynamic threshold expression failed, executing all rules",
				"expression", expr, "error", err)
			return cfg.Rules
		}
		threshold, ok := toFloat(v)
		if !ok {
			e.log.Warn("dynamic threshold expression produced a non-numeric value, executing all rules",
				"expression", expr, "value", v)
			return cfg.Rules
		}
		return rulesAboveWeight(cfg.Rules, threshold)

	default:
		return cfg.Rules
	}
}

func rulesAboveWeight(rules []AccumulationRule, threshold float64) []AccumulationRule {
	var selected []AccumulationRule
	for _, ar := range rules {
		if ar.Weight >= threshold {
			selected = append(selected, ar)
		}
	}
	return selected
}

// priorityRank orders HIGH over MEDIUM over LOW, case-insensitively;
// anything else ranks as LOW.
func priorityRank(p string) int {
	switch strings.ToUpper(p) {
	case "HIGH":
		return 3
	case "MEDIUM":
		return 2
	default:
		return 1
	}
}

// accumulate computes the next accumulator value. The configured
// expression sees the current accumulator, the rule's numeric result
// and its weight under reserved names, next to every context variable.
// Without an expression the conventional weighted sum applies.
func (e *accumulativeExecutor) accumulate(ar AccumulationRule, acc, ruleValue float64, ctx *EvaluationContext) (float64, error) {
	if ar.AccumulationExpression == "" {
		return acc + ruleValue*ar.Weight, nil
	}

	vars := ctx.Variables()
	vars[accumulatorVar] = acc
	vars[ruleResultVar] = ruleValue
	vars[weightVar] = ar.Weight

	v, err := e.eval.Evaluate(ar.AccumulationExpression, vars)
	if err != nil {
		return 0, err
	}
	next, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("accumulation expression %q: expected a number, got %T", ar.AccumulationExpression, v)
	}
	return next, nil
}
