package chainflow_test

import (
	"fmt"

	"github.com/evanfair/chainflow"
	"github.com/evanfair/chainflow/cel"
)

// Score a loan application by folding weighted components into a single
// accumulator, then derive the decision from the total.
func Example() {
	chain := chainflow.NewAccumulativeChain("loan-scoring", "totalScore", 0,
		chainflow.AccumulationRule{
			Rule:   chainflow.NewRule("credit", "creditScore >= 700.0 ? 25.0 : 10.0", "credit component"),
			Weight: 1,
		},
		chainflow.AccumulationRule{
			Rule:   chainflow.NewRule("income", "income / 10000.0", "income component"),
			Weight: 2,
		},
	)

	executor := chainflow.NewChainExecutor(cel.NewEvaluator())
	ctx := chainflow.NewEvaluationContextWith(map[string]any{
		"creditScore": 720.0,
		"income":      200000.0,
	})

	res, err := executor.Execute(chain, ctx)
	if err != nil {
		fmt.Println(err)
		return
	}
	outcome := res.FinalOutcome.(chainflow.AccumulativeOutcome)
	fmt.Println(outcome.Value)
	// Output: 65
}

// Walk a decision tree built with the fluent tree builder.
func Example_decisionTree() {
	tree := chainflow.NewTree(chainflow.NewRule("high-value", "amount > 100000.0", "high value transaction")).
		OnSuccess(chainflow.NewTree(chainflow.NewRule("manager-approval", "hasApproval", "manager approval required"))).
		OnFailure(chainflow.NewTree(chainflow.NewRule("auto-approval", "true", "approved automatically"))).
		Build()

	fmt.Print(tree.Tree())

	executor := chainflow.NewChainExecutor(cel.NewEvaluator())
	ctx := chainflow.NewEvaluationContextWith(map[string]any{
		"amount":      50000.0,
		"hasApproval": false,
	})
	res, _ := executor.Execute(chainflow.NewFluentChain("approval", tree), ctx)
	fmt.Println(res.FinalOutcome.(chainflow.TreeOutcome).RuleID)
	// Output:
	// high-value
	// ├── yes: manager-approval
	// └── no: auto-approval
	// auto-approval
}
