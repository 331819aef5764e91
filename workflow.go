package chainflow

import (
	"sort"
	"strings"
)

// workflowExecutor implements complex-workflow: ordered stages with
// expression gating and dependencies on earlier stages having executed
// successfully. Skipped stages leave explicit markers in the result so
// operators can see why a stage never ran.
type workflowExecutor struct {
	executorCore
}

func (e *workflowExecutor) execute(pc PatternConfig, ctx *EvaluationContext, res *ChainResult) {
	cfg := pc.(*ComplexWorkflowConfig)

	stages := make([]WorkflowStage, len(cfg.Stages))
	copy(stages, cfg.Stages)
	sort.SliceStable(stages, func(i, j int) bool { return stages[i].Order < stages[j].Order })

	// Stage IDs that executed without an evaluator error. A skipped or
	// errored stage does not satisfy dependencies on it.
	executed := map[string]bool{}

	var lastBound any
	for _, st := range stages {
		ctx.setStage(st.ID)

		// Expression gating, distinct from sequential-dependency's
		// variable-presence gating: "run only when risk is HIGH".
		if st.Condition != "" {
			ok, err := e.evalBool(st.Condition, ctx)
			if err != nil {
				res.record(errorResult(st.ID, "stage condition failed", err))
				continue
			}
			if !ok {
				res.record(skippedResult(st.ID, "stage condition not met"))
				e.log.Debug("workflow stage gated off", "chain", res.ChainID, "stage", st.ID)
				continue
			}
		}

		if missing := missingStages(executed, st.DependsOn); len(missing) > 0 {
			res.record(skippedResult(st.ID, "depends on unexecuted stages: "+strings.Join(missing, ", ")))
			continue
		}

		rr := res.record(e.rules.Evaluate(st.Rule, ctx))
		if rr.Type == ResultError {
			continue
		}
		executed[st.ID] = true
		e.stageResult(ctx, res, "stage_"+st.ID+"_result", rr.Type.String())

		if st.OutputVariable != "" {
			ctx.Set(st.OutputVariable, rr.Value)
			e.stageResult(ctx, res, st.OutputVariable, rr.Value)
			lastBound = rr.Value
		}
	}

	res.FinalOutcome = lastBound
}

func missingStages(executed map[string]bool, deps []string) []string {
	var missing []string
	for _, d := range deps {
		if !executed[d] {
			missing = append(missing, d)
		}
	}
	return missing
}
