package ic

import (
	"context"
	"reflect"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Scope owns one registry of selector bindings. A scope is reachable by
// ambient lookups only while it is attached to a context; otherwise it is
// used through its own methods.
type Scope struct {
	id       string
	c        *Container
	mu       sync.RWMutex
	registry map[Selector]Injectable
}

func newScope(c *Container, id string) *Scope {
	return &Scope{
		id:       id,
		c:        c,
		registry: make(map[Selector]Injectable),
	}
}

// ID returns the scope identifier.
func (s *Scope) ID() string { return s.id }

func (s *Scope) String() string { return s.id }

// Container returns the container the scope belongs to.
func (s *Scope) Container() *Container { return s.c }

// Register binds value to selector in this scope.
//
// A *Future is wrapped as a promise-backed injectable and any value that is
// not an Injectable as a static one. A RichSelector adds a condition and/or
// singleton caching. If the selector is already bound here, the new binding
// is composed in front of the old one, which stays reachable as a fallback.
//
// Returns NilValueError if value is nil.
func (s *Scope) Register(selector Selector, value any) error {
	rich := richSelectorOf(selector)
	if isNil(value) {
		return &NilValueError{Selector: describeSelector(rich.Selector)}
	}
	key, err := selectorKey(rich)
	if err != nil {
		return err
	}

	var injectable Injectable
	switch v := value.(type) {
	case *Future:
		injectable = FromFuture(v)
	case Injectable:
		injectable = v
	default:
		injectable = Static(v)
	}
	if rich.Condition != nil {
		injectable = Conditional(injectable, rich.Condition)
	}
	if rich.Singleton {
		cached := Cached(injectable)
		cached.label = describeSelector(key)
		injectable = cached
	}

	s.mu.Lock()
	composed := false
	if current, ok := s.registry[key]; ok {
		injectable = Composite(injectable, current)
		composed = true
	}
	s.registry[key] = injectable
	s.mu.Unlock()

	s.c.count(metricRegister)
	s.c.log.WithFields(log.Fields{
		"scope":     s.id,
		"selector":  describeSelector(key),
		"composed":  composed,
		"singleton": rich.Singleton,
	}).Debug("registered binding")
	return nil
}

// Injectable returns the injectable bound to selector in this scope,
// whether or not it currently applies.
func (s *Scope) Injectable(selector Selector) (Injectable, bool) {
	key := richSelectorOf(selector).Selector
	if key == nil || !reflect.TypeOf(key).Comparable() {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	inj, ok := s.registry[key]
	return inj, ok
}

// HasSelector reports whether this scope holds a binding for selector that
// currently applies to it. Outer scopes are not consulted.
func (s *Scope) HasSelector(selector Selector) bool {
	_, ok := s.applicable(selector)
	return ok
}

func (s *Scope) applicable(selector Selector) (Injectable, bool) {
	inj, ok := s.Injectable(selector)
	if !ok || !inj.Evaluate(s) {
		return nil, false
	}
	return inj, true
}

// Create resolves selector from this scope, falling back to the scopes
// attached to ctx and then the container's base and root scopes. This scope
// is the creator for whatever provider serves the value.
func (s *Scope) Create(ctx context.Context, selector Selector) (any, error) {
	return s.c.create(ctx, selector, s)
}

// Wire constructs the declared type t with this scope as the creator.
func (s *Scope) Wire(ctx context.Context, t Type) (any, error) {
	return s.c.wire(ctx, t, s)
}

// Proxy constructs t and wraps it so that its declared methods resolve
// their own bindings through this scope on every call.
func (s *Scope) Proxy(ctx context.Context, t Type) (*Proxy, error) {
	return s.c.proxy(ctx, t, s)
}

// WithConfig installs the declared bindings of each configuration type into
// this scope.
//
// Returns UnknownConfigError for a type with no declared bindings.
func (s *Scope) WithConfig(types ...Type) error {
	for _, t := range types {
		reg, ok := LookupConfig(t)
		if !ok {
			return &UnknownConfigError{Type: t.String()}
		}
		if err := reg.Register(s); err != nil {
			return err
		}
	}
	return nil
}

// Selectors returns the selectors bound in this scope.
func (s *Scope) Selectors() []Selector {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Selector, 0, len(s.registry))
	for k := range s.registry {
		out = append(out, k)
	}
	return out
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
