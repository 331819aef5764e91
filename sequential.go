package chainflow

import (
	"sort"
	"strings"
)

// sequentialExecutor implements sequential-dependency: stages run in
// order, each gated on the context variables earlier stages bound.
type sequentialExecutor struct {
	executorCore
}

func (e *sequentialExecutor) execute(pc PatternConfig, ctx *EvaluationContext, res *ChainResult) {
	cfg := pc.(*SequentialDependencyConfig)

	// Stable: stages with equal order keep declaration order.
	stages := make([]Stage, len(cfg.Stages))
	copy(stages, cfg.Stages)
	sort.SliceStable(stages, func(i, j int) bool { return stages[i].Order < stages[j].Order })

	var lastBound any
	for _, st := range stages {
		ctx.setStage("stage-" + st.Rule.ID)

		if missing := missingVariables(ctx, st.DependsOn); len(missing) > 0 {
			res.record(skippedResult(st.Rule.ID, "dependency not satisfied: "+strings.Join(missing, ", ")))
			e.log.Debug("stage skipped, missing dependencies",
				"chain", res.ChainID, "stage", st.Rule.ID, "missing", missing)
			continue
		}

		if st.DependencyCondition != "" {
			ok, err := e.evalBool(st.DependencyCondition, ctx)
			if err != nil {
				res.record(errorResult(st.Rule.ID, "dependency condition failed", err))
				continue
			}
			if !ok {
				res.record(skippedResult(st.Rule.ID, "dependency condition not met"))
				continue
			}
		}

		rr := res.record(e.rules.Evaluate(st.Rule, ctx))
		if rr.Type == ResultError {
			continue
		}

		// Binding is the executor's decision, not the rule's: the
		// stage's output variable receives the rule's value only on
		// a successful evaluation. The chain's final outcome is the
		// value bound by the last stage that bound one.
		if st.OutputVariable != "" && rr.Triggered {
			ctx.Set(st.OutputVariable, rr.Value)
			e.stageResult(ctx, res, st.OutputVariable, rr.Value)
			lastBound = rr.Value
		}
	}

	res.FinalOutcome = lastBound
}

func missingVariables(ctx *EvaluationContext, names []string) []string {
	var missing []string
	for _, n := range names {
		if !ctx.Has(n) {
			missing = append(missing, n)
		}
	}
	return missing
}
