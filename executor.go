package chainflow

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ChainExecutor resolves a chain definition's pattern to the matching
// pattern executor and wraps the outcome in a uniform ChainResult.
//
// A ChainExecutor is immutable after construction and safe for
// concurrent use, provided each Execute call gets its own
// EvaluationContext.
type ChainExecutor struct {
	rules *RuleEvaluator
	log   *slog.Logger
	table map[Pattern]patternExecutor
}

// Option configures a ChainExecutor.
type Option func(x *ChainExecutor)

// WithLogger directs executor logging (stage skips, route selection,
// degraded configuration) to the given logger. The default discards.
func WithLogger(log *slog.Logger) Option {
	return func(x *ChainExecutor) {
		x.log = log
	}
}

// NewChainExecutor returns an executor evaluating rule conditions with ev.
func NewChainExecutor(ev ExpressionEvaluator, opts ...Option) *ChainExecutor {
	x := &ChainExecutor{
		rules: NewRuleEvaluator(ev),
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(x)
	}

	core := executorCore{eval: ev, rules: x.rules, log: x.log}
	x.table = map[Pattern]patternExecutor{
		ConditionalChaining:  &conditionalExecutor{core},
		SequentialDependency: &sequentialExecutor{core},
		ResultBasedRouting:   &routingExecutor{core},
		AccumulativeChaining: &accumulativeExecutor{core},
		ComplexWorkflow:      &workflowExecutor{core},
		FluentBuilder:        &fluentExecutor{core},
	}
	return x
}

// SupportedPatterns returns the six pattern names in the dispatch table.
func (x *ChainExecutor) SupportedPatterns() []Pattern {
	return SupportedPatterns()
}

// Execute runs the chain against the context and returns its aggregated
// result.
//
// A nil chain or nil context is a programming fault and returns an
// error. Everything else, including an unrecognized pattern or a
// configuration that fails to decode, returns a ChainResult with
// Successful set to false.
func (x *ChainExecutor) Execute(chain *ChainDefinition, ctx *EvaluationContext) (*ChainResult, error) {
	if chain == nil {
		return nil, errors.New("chainflow: nil chain definition")
	}
	if ctx == nil {
		return nil, errors.New("chainflow: nil evaluation context")
	}

	start := time.Now()
	res := &ChainResult{
		ChainID:      chain.ID,
		ChainName:    chain.Name,
		Pattern:      chain.Pattern,
		ExecutionID:  uuid.NewString(),
		Successful:   true,
		StageResults: map[string]any{},
		StartedAt:    start,
	}

	if !chain.Enabled {
		res.Skipped = true
		res.Duration = time.Since(start)
		x.log.Debug("chain disabled, skipping", "chain", chain.ID)
		return res, nil
	}

	cfg := chain.Config
	if cfg == nil {
		decoded, err := DecodeConfig(chain.Pattern, chain.RawConfig)
		if err != nil {
			res.Successful = false
			res.ErrorMessage = fmt.Sprintf("invalid %s configuration: %v", chain.Pattern, err)
			res.Duration = time.Since(start)
			x.log.Warn("chain configuration rejected", "chain", chain.ID, "error", err)
			return res, nil
		}
		cfg = decoded
	}

	exec, ok := x.table[chain.Pattern]
	if !ok {
		res.Successful = false
		res.ErrorMessage = fmt.Sprintf("unsupported pattern %q", chain.Pattern)
		res.Duration = time.Since(start)
		return res, nil
	}
	if cfg.Pattern() != chain.Pattern {
		res.Successful = false
		res.ErrorMessage = fmt.Sprintf("configuration is for pattern %q, chain declares %q", cfg.Pattern(), chain.Pattern)
		res.Duration = time.Since(start)
		return res, nil
	}

	x.log.Debug("executing chain", "chain", chain.ID, "pattern", chain.Pattern)
	exec.execute(cfg, ctx, res)
	ctx.setStage("")
	res.Duration = time.Since(start)
	return res, nil
}

// patternExecutor is implemented by the six pattern executors. The
// result arrives prepopulated with identity fields and Successful set
// to true; the executor records rule results and the final outcome.
type patternExecutor interface {
	execute(cfg PatternConfig, ctx *EvaluationContext, res *ChainResult)
}

// executorCore is the state shared by all pattern executors: the rule
// evaluator for whole rules, the raw expression evaluator for gating
// and accumulation expressions, and the logger.
type executorCore struct {
	eval  ExpressionEvaluator
	rules *RuleEvaluator
	log   *slog.Logger
}

// evalBool evaluates a bare boolean expression, e.g. a stage gate.
func (c executorCore) evalBool(expr string, ctx *EvaluationContext) (bool, error) {
	v, err := c.eval.Evaluate(expr, ctx.Variables())
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, errors.Errorf("expression %q: expected a boolean, got %T", expr, v)
	}
	return b, nil
}

// stageResult records an intermediate value in both the context's audit
// trail and the chain result.
func (c executorCore) stageResult(ctx *EvaluationContext, res *ChainResult, key string, value any) {
	ctx.addStageResult(key, value)
	res.addStageResult(key, value)
}
