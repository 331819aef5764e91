package chainflow

// conditionalExecutor implements conditional-chaining: a trigger rule
// selects between the on-trigger and on-no-trigger rule lists.
type conditionalExecutor struct {
	executorCore
}

func (e *conditionalExecutor) execute(pc PatternConfig, ctx *EvaluationContext, res *ChainResult) {
	cfg := pc.(*ConditionalChainingConfig)

	triggered := false
	last := ""

	ctx.setStage("trigger-evaluation")
	if cfg.TriggerRule != nil {
		rr := res.record(e.rules.Evaluate(*cfg.TriggerRule, ctx))
		triggered = rr.Triggered
		last = rr.RuleName
	} else {
		// A chain without a trigger rule never triggers; it still
		// runs its no-trigger path so minimal configurations work.
		e.log.Debug("no trigger rule configured, taking no-trigger path", "chain", res.ChainID)
	}
	e.stageResult(ctx, res, "triggered", triggered)

	path := cfg.OnNoTrigger
	stage := "on-no-trigger-execution"
	if triggered {
		path = cfg.OnTrigger
		stage = "on-trigger-execution"
	}
	ctx.setStage(stage)

	for _, r := range path {
		rr := res.record(e.rules.Evaluate(r, ctx))
		last = rr.RuleName
	}

	res.FinalOutcome = ConditionalOutcome{Triggered: triggered, LastRuleID: last}
}
