package chainflow_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evanfair/chainflow"
)

func approvalChain() *chainflow.ChainDefinition {
	return chainflow.NewConditionalChain("loan-approval",
		chainflow.NewRule("high-value", "amount > 100000", "high value transaction"),
		[]chainflow.Rule{
			chainflow.NewRule("manual-review", "manualReview", "manual review required"),
			chainflow.NewRule("notify-manager", "notifyManager", "manager notified"),
		},
		[]chainflow.Rule{
			chainflow.NewRule("auto-approve", "autoApprove", "auto approved"),
		},
	)
}

func approvalScript() map[string]any {
	return map[string]any{
		"amount > 100000": scriptFunc(func(vars map[string]any) (any, error) {
			return number(vars, "amount") > 100000, nil
		}),
		"manualReview":  true,
		"notifyManager": true,
		"autoApprove":   true,
	}
}

func TestConditionalTriggerPath(t *testing.T) {
	ev := newScriptedEvaluator(approvalScript())
	x := chainflow.NewChainExecutor(ev)

	ctx := chainflow.NewEvaluationContextWith(map[string]any{"amount": 150000})
	res, err := x.Execute(approvalChain(), ctx)
	require.NoError(t, err)

	assert.True(t, res.Successful)
	assert.True(t, ev.evaluated("manualReview"))
	assert.True(t, ev.evaluated("notifyManager"))
	assert.False(t, ev.evaluated("autoApprove"), "no-trigger path must stay unexecuted")
	assert.Equal(t, chainflow.ConditionalOutcome{Triggered: true, LastRuleID: "notify-manager"}, res.FinalOutcome)
	require.Len(t, res.RuleResults, 3)
}

func TestConditionalNoTriggerPath(t *testing.T) {
	ev := newScriptedEvaluator(approvalScript())
	x := chainflow.NewChainExecutor(ev)

	ctx := chainflow.NewEvaluationContextWith(map[string]any{"amount": 5000})
	res, err := x.Execute(approvalChain(), ctx)
	require.NoError(t, err)

	assert.True(t, res.Successful)
	assert.True(t, ev.evaluated("autoApprove"))
	assert.False(t, ev.evaluated("manualReview"))
	assert.Equal(t, chainflow.ConditionalOutcome{Triggered: false, LastRuleID: "auto-approve"}, res.FinalOutcome)
}

// A configuration without a trigger rule never triggers; it runs the
// no-trigger path instead of failing.
func TestConditionalMissingTriggerRule(t *testing.T) {
	ev := newScriptedEvaluator(map[string]any{"autoApprove": true})
	x := chainflow.NewChainExecutor(ev)

	chain := &chainflow.ChainDefinition{
		ID: "no-trigger", Pattern: chainflow.ConditionalChaining, Enabled: true,
		Config: &chainflow.ConditionalChainingConfig{
			OnNoTrigger: []chainflow.Rule{chainflow.NewRule("auto-approve", "autoApprove", "")},
		},
	}
	res, err := x.Execute(chain, chainflow.NewEvaluationContext())
	require.NoError(t, err)

	assert.True(t, res.Successful)
	outcome := res.FinalOutcome.(chainflow.ConditionalOutcome)
	assert.False(t, outcome.Triggered)
	assert.Equal(t, "auto-approve", outcome.LastRuleID)
}

// An evaluator failure on one rule marks the chain unsuccessful but
// does not stop the remaining rules on the path.
func TestConditionalRuleErrorContinues(t *testing.T) {
	script := approvalScript()
	script["manualReview"] = errors.New("unknown variable")
	ev := newScriptedEvaluator(script)
	x := chainflow.NewChainExecutor(ev)

	ctx := chainflow.NewEvaluationContextWith(map[string]any{"amount": 150000})
	res, err := x.Execute(approvalChain(), ctx)
	require.NoError(t, err)

	assert.False(t, res.Successful)
	assert.True(t, ev.evaluated("notifyManager"), "execution continues past the failed rule")

	var errored *chainflow.RuleResult
	for i := range res.RuleResults {
		if res.RuleResults[i].Type == chainflow.ResultError {
			errored = &res.RuleResults[i]
		}
	}
	require.NotNil(t, errored)
	assert.Equal(t, "manual-review", errored.RuleName)
	assert.Error(t, errored.Err)
}
