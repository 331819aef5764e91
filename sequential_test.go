package chainflow_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evanfair/chainflow"
)

func discountStages() []chainflow.Stage {
	return []chainflow.Stage{
		{
			Order:          1,
			Rule:           chainflow.NewRule("base-discount", "baseDiscountCalc", "base discount computed"),
			OutputVariable: "baseDiscount",
		},
		{
			Order:          2,
			Rule:           chainflow.NewRule("final-discount", "finalDiscountCalc", "final discount computed"),
			DependsOn:      []string{"baseDiscount"},
			OutputVariable: "finalDiscount",
		},
	}
}

func TestSequentialBindingAndOrdering(t *testing.T) {
	ev := newScriptedEvaluator(map[string]any{
		"baseDiscountCalc": 0.1,
		"finalDiscountCalc": scriptFunc(func(vars map[string]any) (any, error) {
			return number(vars, "baseDiscount") * 2, nil
		}),
	})
	x := chainflow.NewChainExecutor(ev)

	ctx := chainflow.NewEvaluationContext()
	res, err := x.Execute(chainflow.NewSequentialChain("discounts", discountStages()...), ctx)
	require.NoError(t, err)

	assert.True(t, res.Successful)
	assert.Equal(t, []string{"baseDiscountCalc", "finalDiscountCalc"}, ev.calls)

	base, _ := ctx.Get("baseDiscount")
	assert.Equal(t, 0.1, base)
	final, _ := ctx.Get("finalDiscount")
	assert.Equal(t, 0.2, final)
	assert.Equal(t, 0.2, res.FinalOutcome)
}

// A stage whose dependencies were never bound is skipped, not failed.
func TestSequentialUnsatisfiedDependencySkips(t *testing.T) {
	ev := newScriptedEvaluator(map[string]any{})
	x := chainflow.NewChainExecutor(ev)

	chain := chainflow.NewSequentialChain("orphan", discountStages()[1])
	res, err := x.Execute(chain, chainflow.NewEvaluationContext())
	require.NoError(t, err)

	assert.True(t, res.Successful, "a skip is not a failure")
	assert.Empty(t, ev.calls)
	require.Len(t, res.RuleResults, 1)
	assert.Equal(t, chainflow.ResultSkipped, res.RuleResults[0].Type)
	assert.Nil(t, res.FinalOutcome)
}

// Stages with equal order keep their declaration order.
func TestSequentialStableSort(t *testing.T) {
	ev := newScriptedEvaluator(map[string]any{"first": true, "second": true, "third": true})
	x := chainflow.NewChainExecutor(ev)

	chain := &chainflow.ChainDefinition{
		ID: "ties", Pattern: chainflow.SequentialDependency, Enabled: true,
		Config: &chainflow.SequentialDependencyConfig{Stages: []chainflow.Stage{
			{Order: 5, Rule: chainflow.NewRule("a", "first", "")},
			{Order: 5, Rule: chainflow.NewRule("b", "second", "")},
			{Order: 1, Rule: chainflow.NewRule("c", "third", "")},
		}},
	}
	_, err := x.Execute(chain, chainflow.NewEvaluationContext())
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "first", "second"}, ev.calls)
}

func TestSequentialDependencyCondition(t *testing.T) {
	ev := newScriptedEvaluator(map[string]any{
		"tierCheck": false,
		"vipBonus":  5.0,
	})
	x := chainflow.NewChainExecutor(ev)

	chain := chainflow.NewSequentialChain("gated", chainflow.Stage{
		Order:               1,
		Rule:                chainflow.NewRule("vip-bonus", "vipBonus", ""),
		DependencyCondition: "tierCheck",
		OutputVariable:      "bonus",
	})
	ctx := chainflow.NewEvaluationContext()
	res, err := x.Execute(chain, ctx)
	require.NoError(t, err)

	assert.True(t, res.Successful)
	assert.False(t, ev.evaluated("vipBonus"))
	assert.False(t, ctx.Has("bonus"))
	require.Len(t, res.RuleResults, 1)
	assert.Equal(t, chainflow.ResultSkipped, res.RuleResults[0].Type)
}

// The final outcome is the value bound by the last stage that bound
// one, not the last stage that merely executed.
func TestSequentialFinalOutcomeIsLastBound(t *testing.T) {
	ev := newScriptedEvaluator(map[string]any{
		"computeDiscount": 0.15,
		"auditLog":        true,
	})
	x := chainflow.NewChainExecutor(ev)

	chain := chainflow.NewSequentialChain("trailing",
		chainflow.Stage{Order: 1, Rule: chainflow.NewRule("compute", "computeDiscount", ""), OutputVariable: "discount"},
		chainflow.Stage{Order: 2, Rule: chainflow.NewRule("audit", "auditLog", "")},
	)
	res, err := x.Execute(chain, chainflow.NewEvaluationContext())
	require.NoError(t, err)

	assert.True(t, ev.evaluated("auditLog"))
	assert.Equal(t, 0.15, res.FinalOutcome)
}

// An erroring stage marks the chain unsuccessful; later independent
// stages still run.
func TestSequentialStageErrorContinues(t *testing.T) {
	ev := newScriptedEvaluator(map[string]any{
		"broken": errors.New("boom"),
		"intact": 7,
	})
	x := chainflow.NewChainExecutor(ev)

	chain := chainflow.NewSequentialChain("partial",
		chainflow.Stage{Order: 1, Rule: chainflow.NewRule("s1", "broken", "")},
		chainflow.Stage{Order: 2, Rule: chainflow.NewRule("s2", "intact", ""), OutputVariable: "out"},
	)
	ctx := chainflow.NewEvaluationContext()
	res, err := x.Execute(chain, ctx)
	require.NoError(t, err)

	assert.False(t, res.Successful)
	assert.True(t, ev.evaluated("intact"))
	out, ok := ctx.Get("out")
	require.True(t, ok)
	assert.Equal(t, 7, out)
}
