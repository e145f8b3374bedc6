package ic

import "context"

// Interrogator is the view of a scope handed to a Condition.
type Interrogator interface {
	// ID returns the identifier of the scope being interrogated.
	ID() string

	// HasSelector reports whether the scope itself holds an applicable
	// injectable for the selector. Outer scopes are not consulted.
	HasSelector(selector Selector) bool
}

// Creator is the requesting side of a resolution. Injectables receive it in
// Get so that their own dependencies resolve from the scope that asked for
// them rather than the scope they were registered in.
type Creator interface {
	Interrogator
	Create(ctx context.Context, selector Selector) (any, error)
}

// Injectable provides a value for a selector.
type Injectable interface {
	// Evaluate reports whether the injectable applies to the interrogating
	// scope. It may be called more than once per resolution.
	Evaluate(in Interrogator) bool

	// Get produces the value. Callers must only call Get after Evaluate
	// returned true for the current scope.
	Get(ctx context.Context, creator Creator) (any, error)
}

// Registrable accepts selector bindings. Scopes implement it; a Registrator
// replays its bindings into one.
type Registrable interface {
	Register(selector Selector, value any) error
}

// Resolver is satisfied by both the ambient Container and a direct Scope.
type Resolver interface {
	Create(ctx context.Context, selector Selector) (any, error)
	Wire(ctx context.Context, t Type) (any, error)
}

// Condition decides whether a conditional binding applies to the
// interrogating scope. Conditions should be free of side effects.
type Condition func(in Interrogator) bool

// ScopeHandler runs with ctx carrying the new scope as the innermost scope.
type ScopeHandler func(ctx context.Context, scope *Scope) error
