package chainflow

// ExpressionEvaluator is the interface implemented by types that can
// evaluate the condition expressions used in rules.
//
// chainflow itself does not specify an expression language; the cel
// subpackage provides an implementation backed by Google's CEL.
//
// Evaluate must be synchronous and free of side effects visible to the
// engine: the vars map is a snapshot of the evaluation context, and any
// mutation of it is discarded. All context mutation is performed
// explicitly by the pattern executors.
type ExpressionEvaluator interface {
	// Evaluate tests the expression against the variable bindings,
	// returning the resulting value. Boolean conditions return a bool;
	// computations return whatever the underlying language produces.
	Evaluate(expr string, vars map[string]any) (any, error)
}
