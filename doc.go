// Package chainflow executes declarative rule chains against a shared,
// mutable fact context.
//
// A chain definition names one of six execution patterns and carries a
// pattern-specific configuration. The patterns are:
//
//	conditional-chaining    evaluate a trigger, then one of two rule lists
//	sequential-dependency   ordered stages gated on variables bound by earlier stages
//	result-based-routing    a router rule selects one of several rule lists by key
//	accumulative-chaining   weighted rules fold into a running numeric accumulator
//	complex-workflow        multi-stage workflow with conditions and stage dependencies
//	fluent-builder          binary decision tree walked by rule outcomes
//
// chainflow does not specify a language for rule conditions. Conditions
// are opaque strings handed to an ExpressionEvaluator implementation;
// the cel subpackage provides one backed by Google's CEL.
//
// Typical use is as follows:
//
//  1. Build or parse a ChainDefinition (see ParseChains for YAML documents)
//  2. Create a ChainExecutor with an ExpressionEvaluator
//  3. Create an EvaluationContext and seed it with input variables
//  4. Execute the chain
//  5. Inspect the ChainResult: the final outcome, and one RuleResult per
//     rule evaluated, in evaluation order
//
// # Error handling
//
// Two failure classes are kept apart. Programming faults (a nil chain or
// a nil context) are returned as errors from Execute. Authored-data
// problems never abort execution: missing optional sections, unmatched
// route keys and unsatisfied dependencies degrade to skips, and an
// expression the evaluator rejects is recorded as a single Error-typed
// RuleResult while the rest of the chain keeps running. Chains are data,
// not code; a partial result is worth more to an operator than a crash.
//
// # Concurrency
//
// One chain invocation is strictly sequential on the calling goroutine.
// A ChainExecutor is immutable after construction and may be shared;
// an EvaluationContext may not be shared between concurrent invocations.
package chainflow
