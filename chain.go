package chainflow

// Pattern identifies one of the six supported control-flow disciplines.
type Pattern string

const (
	ConditionalChaining  Pattern = "conditional-chaining"
	SequentialDependency Pattern = "sequential-dependency"
	ResultBasedRouting   Pattern = "result-based-routing"
	AccumulativeChaining Pattern = "accumulative-chaining"
	ComplexWorkflow      Pattern = "complex-workflow"
	FluentBuilder        Pattern = "fluent-builder"
)

// SupportedPatterns returns the fixed list of pattern names the engine
// dispatches on, in documentation order.
func SupportedPatterns() []Pattern {
	return []Pattern{
		ConditionalChaining,
		SequentialDependency,
		ResultBasedRouting,
		AccumulativeChaining,
		ComplexWorkflow,
		FluentBuilder,
	}
}

// ChainDefinition is the declarative input to the engine: a pattern tag
// plus its configuration. Definitions are read-only to the engine.
//
// Config holds the typed configuration when it has already been decoded
// (by ParseChains or one of the builders). When Config is nil, the
// dispatcher decodes RawConfig at execution time; a payload that fails
// to decode produces an unsuccessful ChainResult, not an error.
type ChainDefinition struct {
	ID        string
	Name      string
	Pattern   Pattern
	Enabled   bool
	Config    PatternConfig
	RawConfig map[string]any
}

// PatternConfig is the closed union of the six pattern configurations.
// It is implemented only by the config types in this package.
type PatternConfig interface {
	Pattern() Pattern
	sealedConfig()
}

// ConditionalChainingConfig configures the simple-branch pattern: a
// trigger rule selects between the OnTrigger and OnNoTrigger lists.
// A nil TriggerRule never triggers, so a minimal configuration still runs.
type ConditionalChainingConfig struct {
	TriggerRule *Rule
	OnTrigger   []Rule
	OnNoTrigger []Rule
}

// Stage is one step of a sequential-dependency chain. DependsOn names
// context variables that must exist before the stage runs; a stage whose
// dependencies are missing is skipped, not failed. DependencyCondition,
// when set, is an extra boolean expression gating the stage.
type Stage struct {
	Order               int
	Rule                Rule
	DependsOn           []string
	DependencyCondition string
	OutputVariable      string
}

// SequentialDependencyConfig configures the pipeline pattern.
type SequentialDependencyConfig struct {
	Stages []Stage
}

// ResultRoutingConfig configures dynamic routing: the router rule's
// value is the route key, matched exactly against the Routes map.
// There is no default route; an unmatched key is a deliberate,
// successful "unrouted" outcome. OutputVariable, when set, receives the
// route key in the context.
type ResultRoutingConfig struct {
	RouterRule     Rule
	OutputVariable string
	Routes         map[string][]Rule
}

// AccumulationRule contributes one weighted component to the running
// accumulator. AccumulationExpression may reference the reserved
// variables accumulator, ruleResult and weight; when empty, the engine
// applies accumulator + (ruleResult * weight). Priority is only
// consulted by the priority-based selection strategy; an empty or
// unrecognized priority ranks as LOW.
type AccumulationRule struct {
	Rule                   Rule
	Weight                 float64
	Priority               string
	AccumulationExpression string
}

// Selection strategies for RuleSelection.Strategy.
const (
	SelectAll              = "all"
	SelectWeightThreshold  = "weight-threshold"
	SelectTopWeighted      = "top-weighted"
	SelectPriorityBased    = "priority-based"
	SelectDynamicThreshold = "dynamic-threshold"
)

// RuleSelection narrows the accumulation rules an accumulative chain
// executes. The zero strategy (or "all") executes every rule.
//
//   - weight-threshold: rules with Weight >= WeightThreshold
//   - top-weighted: the MaxRules heaviest rules, by descending weight
//   - priority-based: rules with Priority >= MinPriority (HIGH over
//     MEDIUM over LOW), ordered by priority then weight
//   - dynamic-threshold: like weight-threshold, but the threshold is
//     ThresholdExpression evaluated against the current context; an
//     expression failure falls back to executing all rules
type RuleSelection struct {
	Strategy            string
	WeightThreshold     float64
	MaxRules            int
	MinPriority         string
	ThresholdExpression string
}

// AccumulativeConfig configures weighted accumulation. The accumulator
// is seeded with InitialValue under AccumulatorVariable and rewritten
// after every rule. Selection, when present, narrows which rules run.
// FinalDecisionRule, when present, is evaluated once against the
// finished accumulator and its value reported alongside it.
type AccumulativeConfig struct {
	AccumulatorVariable string
	InitialValue        float64
	Rules               []AccumulationRule
	Selection           *RuleSelection
	FinalDecisionRule   *Rule
}

// WorkflowStage is one step of a complex workflow. Condition gates the
// stage on the current context (distinct from Stage's variable-presence
// gating); DependsOn names stage IDs that must have executed
// successfully first.
type WorkflowStage struct {
	ID             string
	Order          int
	Rule           Rule
	Condition      string
	DependsOn      []string
	OutputVariable string
}

// ComplexWorkflowConfig configures the conditional multi-stage pattern.
type ComplexWorkflowConfig struct {
	Stages []WorkflowStage
}

// TreeNode is a node in a fluent-builder decision tree. Children are
// explicit and optional: a nil child for the outcome taken makes the
// node terminal.
type TreeNode struct {
	Rule      Rule
	OnSuccess *TreeNode
	OnFailure *TreeNode
}

// FluentBuilderConfig configures the binary decision tree pattern.
type FluentBuilderConfig struct {
	Root *TreeNode
}

func (c *ConditionalChainingConfig) Pattern() Pattern  { return ConditionalChaining }
func (c *SequentialDependencyConfig) Pattern() Pattern { return SequentialDependency }
func (c *ResultRoutingConfig) Pattern() Pattern        { return ResultBasedRouting }
func (c *AccumulativeConfig) Pattern() Pattern         { return AccumulativeChaining }
func (c *ComplexWorkflowConfig) Pattern() Pattern      { return ComplexWorkflow }
func (c *FluentBuilderConfig) Pattern() Pattern        { return FluentBuilder }

func (c *ConditionalChainingConfig) sealedConfig()  {}
func (c *SequentialDependencyConfig) sealedConfig() {}
func (c *ResultRoutingConfig) sealedConfig()        {}
func (c *AccumulativeConfig) sealedConfig()         {}
func (c *ComplexWorkflowConfig) sealedConfig()      {}
func (c *FluentBuilderConfig) sealedConfig()        {}
