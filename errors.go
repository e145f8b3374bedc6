package ic

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrNoMatchingInjectable is returned by a composite injectable when none of
// its members applies. Scopes treat it like an unknown selector and keep
// walking outward.
var ErrNoMatchingInjectable = errors.New("no matching injectable found")

// DependencyNotFoundError represents a selector that no scope in the chain
// can satisfy.
type DependencyNotFoundError struct {
	Selector string
}

func (e *DependencyNotFoundError) Error() string {
	return fmt.Sprintf("no dependency found for selector %s", e.Selector)
}

// NilValueError represents an attempt to register a nil value.
type NilValueError struct {
	Selector string
}

func (e *NilValueError) Error() string {
	return fmt.Sprintf("registered nil for selector %s", e.Selector)
}

// InvalidSelectorError represents a selector that cannot be used as a
// registry key.
type InvalidSelectorError struct {
	Selector string
	Reason   string
}

func (e *InvalidSelectorError) Error() string {
	return fmt.Sprintf("invalid selector %s: %s", e.Selector, e.Reason)
}

// CircularDependencyError represents a selector requested again while it is
// still being resolved on the same resolution path.
type CircularDependencyError struct {
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(e.Chain, " -> "))
}

// TypeMismatchError represents a resolved value that does not fit the
// parameter or type it was requested for.
type TypeMismatchError struct {
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected, e.Got)
}

// UndeclaredTypeError represents a Wire or Proxy of a type that has no
// declared constructor.
type UndeclaredTypeError struct {
	Type string
}

func (e *UndeclaredTypeError) Error() string {
	return fmt.Sprintf("no constructor declared for type %s", e.Type)
}

// UnknownConfigError represents a configuration type with no declared
// bindings.
type UnknownConfigError struct {
	Type string
}

func (e *UnknownConfigError) Error() string {
	return fmt.Sprintf("no bindings declared for configuration type %s", e.Type)
}

// ParameterError represents a failure to resolve one declared parameter.
type ParameterError struct {
	Type     string
	Member   string
	Index    int
	Selector string
	Err      error
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("resolving parameter %d (%s) of %s: %v", e.Index, e.Selector, e.target(), e.Err)
}

func (e *ParameterError) Unwrap() error {
	return e.Err
}

func (e *ParameterError) target() string {
	if e.Member == "" {
		return e.Type
	}
	return e.Type + "." + e.Member
}

// ConstructionError represents a constructor, factory or method that
// returned an error or panicked.
type ConstructionError struct {
	Type string
	Err  error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("construction failed for %s: %v", e.Type, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// UnknownMethodError represents a proxy call to a method the instance does
// not have.
type UnknownMethodError struct {
	Type   string
	Method string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("type %s has no method %s", e.Type, e.Method)
}

// ArgumentError represents caller-supplied arguments that do not fit a
// pass-through method.
type ArgumentError struct {
	Method string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Method, e.Reason)
}
