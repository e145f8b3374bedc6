package ic

import (
	"context"
	"reflect"
	"sync"

	"github.com/pkg/errors"
)

type registration struct {
	selector Selector
	value    any
}

// Registrator holds the bindings declared for one configuration type, in
// declaration order, and replays them into any scope.
type Registrator struct {
	typ     Type
	mu      sync.RWMutex
	entries []registration
}

var (
	configMu sync.RWMutex
	configs  = make(map[Type]*Registrator)
)

// Configure returns the registrator of configuration type T, creating it on
// first use.
//
//	ic.Configure[AppConfig]().Provide("db", OpenDB, ic.BindingMap{0: "dsn"})
func Configure[T any]() *Registrator {
	return ConfigFor(TypeOf[T]())
}

// ConfigFor returns the registrator of configuration type t, creating it on
// first use. Repeated calls return the same registrator, so declarations made
// from different places accumulate.
func ConfigFor(t Type) *Registrator {
	configMu.Lock()
	defer configMu.Unlock()
	reg, ok := configs[t]
	if !ok {
		reg = &Registrator{typ: t}
		configs[t] = reg
	}
	return reg
}

// LookupConfig returns the registrator of t if any bindings were declared for
// it.
func LookupConfig(t Type) (*Registrator, bool) {
	configMu.RLock()
	defer configMu.RUnlock()
	reg, ok := configs[t]
	return reg, ok
}

// Include declares selector bound to value. Value is wrapped on installation
// exactly as Scope.Register wraps it, so a singleton selector gets a fresh
// cache slot per installation.
func (r *Registrator) Include(selector Selector, value any) *Registrator {
	r.mu.Lock()
	r.entries = append(r.entries, registration{selector: selector, value: value})
	r.mu.Unlock()
	return r
}

// Provide declares selector bound to the result of fn. fn must return T or
// (T, error); a *Future result is awaited. Its parameters are filled from
// params (at most one map) and resolve through the creator asking for the
// value, so the dependencies of a configuration follow the scope it was
// installed into.
//
// Provide panics on an invalid fn.
func (r *Registrator) Provide(selector Selector, fn any, params ...BindingMap) *Registrator {
	v := reflect.ValueOf(fn)
	if err := checkProvider(v); err != nil {
		panic(errors.Errorf("providing %s for %v: %v", describeSelector(selector), r.typ, err))
	}
	var bindings BindingMap
	if len(params) > 0 {
		bindings = params[0]
	}
	if err := checkBindings(bindings, v.Type().NumIn()); err != nil {
		panic(errors.Errorf("providing %s for %v: %v", describeSelector(selector), r.typ, err))
	}
	bindings = copyBindings(bindings)
	target := r.typ.String()
	member := describeSelector(richSelectorOf(selector).Selector)

	return r.Include(selector, Factory(func(ctx context.Context, creator Creator) (any, error) {
		args, err := resolveArgs(ctx, creator, v.Type(), bindings, target, member)
		if err != nil {
			return nil, err
		}
		out, err := invoke(v, args, target+"."+member)
		if err != nil {
			return nil, err
		}
		if len(out) == 2 && !out[1].IsNil() {
			return nil, &ConstructionError{Type: target + "." + member, Err: out[1].Interface().(error)}
		}
		return out[0].Interface(), nil
	}))
}

// Register installs every declared binding into target in declaration order,
// using target's normal override rule.
func (r *Registrator) Register(target Registrable) error {
	r.mu.RLock()
	entries := make([]registration, len(r.entries))
	copy(entries, r.entries)
	r.mu.RUnlock()

	for _, e := range entries {
		if err := target.Register(e.selector, e.value); err != nil {
			return errors.Wrapf(err, "installing %v", r.typ)
		}
	}
	return nil
}

// Len returns the number of declared bindings.
func (r *Registrator) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
