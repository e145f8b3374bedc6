package ic

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
	futureType = reflect.TypeOf((*Future)(nil))
)

// WireWith constructs t using the constructor and bindings declared in
// provider, resolving every bound parameter concurrently through creator.
// Arguments are placed by declared index regardless of completion order.
// The first parameter that fails to resolve fails the construction and no
// instance is returned.
func WireWith(ctx context.Context, creator Creator, provider BindingMapProvider, t Type) (any, error) {
	v, err := construct(ctx, creator, provider, t)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// ProxyWith constructs t like WireWith and wraps the instance so that each
// method with declared bindings resolves them through creator on every
// call.
func ProxyWith(ctx context.Context, creator Creator, provider BindingMapProvider, t Type) (*Proxy, error) {
	v, err := construct(ctx, creator, provider, t)
	if err != nil {
		return nil, err
	}
	p := &Proxy{
		typ:       t,
		instance:  v,
		creator:   creator,
		intercept: make(map[string]BindingMap),
	}
	for _, member := range provider.Members(t) {
		if params, ok := provider.BindingMap(t, member); ok {
			p.intercept[member] = params
		}
	}
	return p, nil
}

func construct(ctx context.Context, creator Creator, provider BindingMapProvider, t Type) (reflect.Value, error) {
	ctor, ok := provider.Constructor(t)
	if !ok {
		return reflect.Value{}, &UndeclaredTypeError{Type: t.String()}
	}
	params, _ := provider.BindingMap(t, ConstructorMember)
	args, err := resolveArgs(ctx, creator, ctor.Type(), params, t.String(), ConstructorMember)
	if err != nil {
		return reflect.Value{}, err
	}
	results, err := invoke(ctor, args, t.String())
	if err != nil {
		return reflect.Value{}, err
	}
	if len(results) == 2 && !results[1].IsNil() {
		return reflect.Value{}, &ConstructionError{Type: t.String(), Err: results[1].Interface().(error)}
	}
	return results[0], nil
}

// resolveArgs builds the argument list for fn. Bound parameters resolve in
// parallel; unbound ones are zero values.
func resolveArgs(ctx context.Context, creator Creator, fn reflect.Type, params BindingMap, target, member string) ([]reflect.Value, error) {
	args := make([]reflect.Value, fn.NumIn())
	for i := range args {
		args[i] = reflect.Zero(fn.In(i))
	}
	if len(params) == 0 {
		return args, nil
	}

	for idx, sel := range params {
		if idx < 0 || idx >= len(args) {
			return nil, &ParameterError{Type: target, Member: member, Index: idx, Selector: describeSelector(sel),
				Err: errors.Errorf("index outside %d parameters", len(args))}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for idx, sel := range params {
		idx, sel := idx, sel
		in := fn.In(idx)
		g.Go(func() error {
			v, err := creator.Create(gctx, sel)
			if err == nil {
				args[idx], err = assignable(v, in)
			}
			if err != nil {
				return &ParameterError{Type: target, Member: member, Index: idx, Selector: describeSelector(sel), Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return args, nil
}

func assignable(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, &TypeMismatchError{Expected: t.String(), Got: "nil"}
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, &TypeMismatchError{Expected: t.String(), Got: rv.Type().String()}
	}
	return rv, nil
}

// invoke calls fn, turning a panic into a ConstructionError.
func invoke(fn reflect.Value, args []reflect.Value, target string) (results []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ConstructionError{Type: target, Err: errors.Errorf("panic: %v", r)}
		}
	}()
	return fn.Call(args), nil
}

// Proxy wraps a constructed instance. Methods with declared bindings ignore
// caller arguments and resolve their bindings fresh on every call; all other
// methods pass the caller's arguments through.
type Proxy struct {
	c         *Container
	typ       Type
	instance  reflect.Value
	creator   Creator
	intercept map[string]BindingMap
}

// Instance returns the wrapped instance.
func (p *Proxy) Instance() any {
	return p.instance.Interface()
}

// Type returns the declared type the proxy was built for.
func (p *Proxy) Type() Type {
	return p.typ
}

// Intercepts reports whether method resolves its own bindings.
func (p *Proxy) Intercepts(method string) bool {
	_, ok := p.intercept[method]
	return ok
}

// Call invokes method on the instance. A trailing error result is returned
// as the call's error; *Future results are awaited. The remaining results
// are returned in order.
//
// Returns UnknownMethodError if the instance has no such method.
func (p *Proxy) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	if p.c != nil {
		defer p.c.since(metricProxyCall, time.Now())
	}
	target := p.typ.String() + "." + method
	m := p.instance.MethodByName(method)
	if !m.IsValid() {
		return nil, &UnknownMethodError{Type: p.typ.String(), Method: method}
	}

	var in []reflect.Value
	var err error
	if params, ok := p.intercept[method]; ok {
		in, err = resolveArgs(ctx, p.creator, m.Type(), params, p.typ.String(), method)
	} else {
		in, err = passArgs(m.Type(), target, args)
	}
	if err != nil {
		return nil, err
	}

	out, err := invoke(m, in, target)
	if err != nil {
		return nil, err
	}
	return collect(ctx, m.Type(), out)
}

func passArgs(fn reflect.Type, target string, args []any) ([]reflect.Value, error) {
	n := fn.NumIn()
	if fn.IsVariadic() {
		if len(args) < n-1 {
			return nil, &ArgumentError{Method: target, Reason: fmt.Sprintf("want at least %d arguments, got %d", n-1, len(args))}
		}
	} else if len(args) != n {
		return nil, &ArgumentError{Method: target, Reason: fmt.Sprintf("want %d arguments, got %d", n, len(args))}
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		t := fn.In(min(i, n-1))
		if fn.IsVariadic() && i >= n-1 {
			t = t.Elem()
		}
		v, err := assignable(a, t)
		if err != nil {
			return nil, &ArgumentError{Method: target, Reason: fmt.Sprintf("argument %d: %v", i, err)}
		}
		in[i] = v
	}
	return in, nil
}

func collect(ctx context.Context, fn reflect.Type, out []reflect.Value) ([]any, error) {
	if n := len(out); n > 0 && fn.Out(n-1) == errorType {
		if !out[n-1].IsNil() {
			return nil, out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}
	results := make([]any, 0, len(out))
	for _, v := range out {
		if v.Type() == futureType && !v.IsNil() {
			awaited, err := v.Interface().(*Future).Await(ctx)
			if err != nil {
				return nil, err
			}
			results = append(results, awaited)
			continue
		}
		results = append(results, v.Interface())
	}
	return results, nil
}

func (c *Container) wire(ctx context.Context, t Type, creator *Scope) (any, error) {
	defer c.since(metricWire, time.Now())
	v, err := WireWith(ctx, creator, c.catalog, t)
	if err != nil {
		c.log.WithFields(log.Fields{"scope": creator.id, "type": t.String()}).WithError(err).Debug("wire failed")
		return nil, err
	}
	return v, nil
}

func (c *Container) proxy(ctx context.Context, t Type, creator *Scope) (*Proxy, error) {
	defer c.since(metricWire, time.Now())
	p, err := ProxyWith(ctx, creator, c.catalog, t)
	if err != nil {
		c.log.WithFields(log.Fields{"scope": creator.id, "type": t.String()}).WithError(err).Debug("proxy failed")
		return nil, err
	}
	p.c = c
	return p, nil
}

// CreateAs resolves selector from r and asserts the value to T.
//
// Returns TypeMismatchError if the value is not a T.
func CreateAs[T any](ctx context.Context, r Resolver, selector Selector) (T, error) {
	var zero T
	v, err := r.Create(ctx, selector)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, &TypeMismatchError{Expected: TypeOf[T]().String(), Got: fmt.Sprintf("%T", v)}
	}
	return out, nil
}

// WireAs constructs the declared type T from r.
//
//	greeter, err := ic.WireAs[*Greeter](ctx, scope)
func WireAs[T any](ctx context.Context, r Resolver) (T, error) {
	var zero T
	v, err := r.Wire(ctx, TypeOf[T]())
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, &TypeMismatchError{Expected: TypeOf[T]().String(), Got: fmt.Sprintf("%T", v)}
	}
	return out, nil
}
