package chainflow

import "strings"

// TreeBuilder constructs fluent-builder decision trees, the API the
// pattern is named after:
//
//	root := chainflow.NewTree(highValue).
//		OnSuccess(chainflow.NewTree(managerApproval)).
//		OnFailure(chainflow.NewTree(autoApproval)).
//		Build()
type TreeBuilder struct {
	node *TreeNode
}

// NewTree starts a tree rooted at rule.
func NewTree(rule Rule) *TreeBuilder {
	return &TreeBuilder{node: &TreeNode{Rule: rule}}
}

// OnSuccess sets the child taken when the node's rule triggers.
func (b *TreeBuilder) OnSuccess(child *TreeBuilder) *TreeBuilder {
	b.node.OnSuccess = child.Build()
	return b
}

// OnFailure sets the child taken when the node's rule does not trigger.
func (b *TreeBuilder) OnFailure(child *TreeBuilder) *TreeBuilder {
	b.node.OnFailure = child.Build()
	return b
}

// Build returns the constructed node.
func (b *TreeBuilder) Build() *TreeNode {
	return b.node
}

// Tree returns a box-drawing representation of the decision tree,
// labeling each branch with the outcome that takes it.
//
// Example output:
//
//	high-value
//	├── yes: manager-approval
//	│   └── no: escalate
//	└── no: auto-approval
func (n *TreeNode) Tree() string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(n.Rule.ID)
	sb.WriteString("\n")
	n.buildTree(&sb, "", 0)
	return sb.String()
}

func (n *TreeNode) buildTree(sb *strings.Builder, prefix string, depth int) {
	if depth >= 20 {
		return
	}
	type branch struct {
		label string
		node  *TreeNode
	}
	var children []branch
	if n.OnSuccess != nil {
		children = append(children, branch{"yes", n.OnSuccess})
	}
	if n.OnFailure != nil {
		children = append(children, branch{"no", n.OnFailure})
	}
	for i, c := range children {
		connector, childPrefix := "├── ", "│   "
		if i == len(children)-1 {
			connector, childPrefix = "└── ", "    "
		}
		sb.WriteString(prefix)
		sb.WriteString(connector)
		sb.WriteString(c.label)
		sb.WriteString(": ")
		sb.WriteString(c.node.Rule.ID)
		sb.WriteString("\n")
		c.node.buildTree(sb, prefix+childPrefix, depth+1)
	}
}

// Chain constructors for each pattern. They exist for programmatic chain
// authoring and shared test support; chains parsed from YAML documents
// take the ParseChains path instead.

func newChain(id string, cfg PatternConfig) *ChainDefinition {
	return &ChainDefinition{
		ID:      id,
		Name:    id,
		Pattern: cfg.Pattern(),
		Enabled: true,
		Config:  cfg,
	}
}

// NewConditionalChain builds a conditional-chaining definition.
func NewConditionalChain(id string, trigger Rule, onTrigger, onNoTrigger []Rule) *ChainDefinition {
	return newChain(id, &ConditionalChainingConfig{
		TriggerRule: &trigger,
		OnTrigger:   onTrigger,
		OnNoTrigger: onNoTrigger,
	})
}

// NewSequentialChain builds a sequential-dependency definition; stages
// run in the order given unless their Order fields say otherwise.
func NewSequentialChain(id string, stages ...Stage) *ChainDefinition {
	for i := range stages {
		if stages[i].Order == 0 {
			stages[i].Order = i
		}
	}
	return newChain(id, &SequentialDependencyConfig{Stages: stages})
}

// NewRoutingChain builds a result-based-routing definition.
func NewRoutingChain(id string, router Rule, routes map[string][]Rule) *ChainDefinition {
	return newChain(id, &ResultRoutingConfig{RouterRule: router, Routes: routes})
}

// NewAccumulativeChain builds an accumulative-chaining definition.
func NewAccumulativeChain(id, accumulatorVariable string, initial float64, rules ...AccumulationRule) *ChainDefinition {
	if accumulatorVariable == "" {
		accumulatorVariable = "totalScore"
	}
	return newChain(id, &AccumulativeConfig{
		AccumulatorVariable: accumulatorVariable,
		InitialValue:        initial,
		Rules:               rules,
	})
}

// NewWorkflowChain builds a complex-workflow definition; stages run in
// the order given unless their Order fields say otherwise.
func NewWorkflowChain(id string, stages ...WorkflowStage) *ChainDefinition {
	for i := range stages {
		if stages[i].Order == 0 {
			stages[i].Order = i
		}
		if stages[i].ID == "" {
			stages[i].ID = stages[i].Rule.ID
		}
	}
	return newChain(id, &ComplexWorkflowConfig{Stages: stages})
}

// NewFluentChain builds a fluent-builder definition from a decision
// tree, typically constructed with NewTree.
func NewFluentChain(id string, root *TreeNode) *ChainDefinition {
	return newChain(id, &FluentBuilderConfig{Root: root})
}
