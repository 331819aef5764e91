package chainflow

// fluentExecutor implements fluent-builder: a binary decision tree
// walked by rule outcomes. Each node's rule decides whether to descend
// into OnSuccess or OnFailure; a missing child for the outcome taken
// makes the node terminal, which is not an error.
type fluentExecutor struct {
	executorCore
}

func (e *fluentExecutor) execute(pc PatternConfig, ctx *EvaluationContext, res *ChainResult) {
	cfg := pc.(*FluentBuilderConfig)

	if cfg.Root == nil {
		e.log.Debug("no root rule configured", "chain", res.ChainID)
		return
	}

	ctx.setStage("decision-tree-traversal")
	terminal := e.descend(cfg.Root, ctx, res)

	// The path to the terminal is the rule result list, in traversal
	// order; that is how callers reconstruct why this terminal was
	// reached.
	path := make([]string, 0, len(res.RuleResults))
	for _, rr := range res.RuleResults {
		path = append(path, rr.RuleName)
	}
	e.stageResult(ctx, res, "treePath", path)

	res.FinalOutcome = TreeOutcome{RuleID: terminal.Rule.ID, Message: terminal.Rule.Message}
}

// descend evaluates the node's rule and recurses into the child matching
// the outcome. An evaluator error makes the node terminal: the branch to
// take is unknowable.
func (e *fluentExecutor) descend(node *TreeNode, ctx *EvaluationContext, res *ChainResult) *TreeNode {
	rr := res.record(e.rules.Evaluate(node.Rule, ctx))
	if rr.Type == ResultError {
		return node
	}

	next := node.OnFailure
	if rr.Triggered {
		next = node.OnSuccess
	}
	if next == nil {
		return node
	}
	return e.descend(next, ctx, res)
}
