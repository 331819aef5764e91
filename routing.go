package chainflow

import "fmt"

// routingExecutor implements result-based-routing: the router rule's
// value selects one rule list by exact string match. There is no
// default route; an unmatched key is a successful "unrouted" outcome.
type routingExecutor struct {
	executorCore
}

func (e *routingExecutor) execute(pc PatternConfig, ctx *EvaluationContext, res *ChainResult) {
	cfg := pc.(*ResultRoutingConfig)

	ctx.setStage("router-evaluation")
	rr := res.record(e.rules.Evaluate(cfg.RouterRule, ctx))
	if rr.Type == ResultError || rr.Value == nil {
		res.FinalOutcome = RouteOutcome{}
		return
	}

	key := routeKey(rr.Value)
	e.stageResult(ctx, res, "routeKey", key)
	if cfg.OutputVariable != "" {
		ctx.Set(cfg.OutputVariable, key)
		e.stageResult(ctx, res, cfg.OutputVariable, key)
	}

	// Exact match only; no prefix or pattern matching on route keys.
	rules, ok := cfg.Routes[key]
	if !ok {
		e.log.Debug("no route for key", "chain", res.ChainID, "key", key)
		res.FinalOutcome = RouteOutcome{Key: key, Routed: false}
		return
	}

	ctx.setStage("route-" + key + "-execution")
	triggered := 0
	for _, r := range rules {
		if res.record(e.rules.Evaluate(r, ctx)).Triggered {
			triggered++
		}
	}
	e.stageResult(ctx, res, "routeExecutedRules", len(rules))
	e.stageResult(ctx, res, "routeTriggeredRules", triggered)

	res.FinalOutcome = RouteOutcome{Key: key, Routed: true}
}

// routeKey renders the router rule's value as a route key. Router rules
// normally produce strings; anything else is matched on its natural
// string form.
func routeKey(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
