package ic

import (
	"reflect"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// BindingMap maps a positional parameter index to the selector that feeds
// it. Parameters absent from the map receive their zero value.
type BindingMap map[int]Selector

// ConstructorMember is the member name under which a type's constructor
// bindings are looked up.
const ConstructorMember = ""

// BindingMapProvider supplies the declared bindings that Wire and Proxy
// consume.
type BindingMapProvider interface {
	// Constructor returns the constructor function declared for t.
	Constructor(t Type) (reflect.Value, bool)

	// BindingMap returns the bindings of t's constructor (member ==
	// ConstructorMember) or of one of its methods.
	BindingMap(t Type, member string) (BindingMap, bool)

	// Members returns the names of t's methods that declare bindings.
	Members(t Type) []string
}

// Declaration records how to construct a type and which selectors feed the
// parameters of its constructor and methods.
type Declaration struct {
	catalog *Catalog
	typ     Type
	ctor    reflect.Value
	params  BindingMap
	methods map[string]BindingMap
}

// Catalog is a table of declarations keyed by type. It implements
// BindingMapProvider and is safe for concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	decls map[Type]*Declaration
}

var defaultCatalog = NewCatalog()

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{decls: make(map[Type]*Declaration)}
}

// DefaultCatalog returns the process-wide catalog that Declare fills and
// containers use unless configured otherwise.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// Declare records ctor as the constructor of T in the default catalog.
//
//	ic.Declare[*Greeter](NewGreeter, ic.BindingMap{0: "greeting", 1: ic.TypeOf[*Clock]()})
func Declare[T any](ctor any, params BindingMap) *Declaration {
	return DefaultCatalog().Declare(TypeOf[T](), ctor, params)
}

// Declare records ctor as the constructor of t. ctor must be a
// non-variadic function returning a value assignable to t, optionally
// followed by an error. Declaring t again replaces its constructor and keeps
// its method bindings.
//
// Declare panics on an invalid constructor or a binding index outside the
// constructor's parameters; both are programming errors.
func (c *Catalog) Declare(t Type, ctor any, params BindingMap) *Declaration {
	fn := reflect.ValueOf(ctor)
	if err := checkProvider(fn); err != nil {
		panic(errors.Errorf("declaring %v: %v", t, err))
	}
	if out := fn.Type().Out(0); !out.AssignableTo(t) {
		panic(errors.Errorf("declaring %v: constructor returns %v", t, out))
	}
	if err := checkBindings(params, fn.Type().NumIn()); err != nil {
		panic(errors.Errorf("declaring %v: %v", t, err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.decls[t]
	if !ok {
		d = &Declaration{catalog: c, typ: t, methods: make(map[string]BindingMap)}
		c.decls[t] = d
	}
	d.ctor = fn
	d.params = copyBindings(params)
	return d
}

// Method declares bindings for one of the type's methods. Proxies of the
// type resolve these bindings on every call instead of using the caller's
// arguments. Repeated declarations for one method merge by index.
func (d *Declaration) Method(name string, params BindingMap) *Declaration {
	m, ok := d.typ.MethodByName(name)
	if !ok {
		panic(errors.Errorf("declaring %v.%s: no such method", d.typ, name))
	}
	arity := m.Type.NumIn()
	if d.typ.Kind() != reflect.Interface {
		arity--
	}
	if m.Type.IsVariadic() {
		panic(errors.Errorf("declaring %v.%s: variadic methods cannot be bound", d.typ, name))
	}
	if err := checkBindings(params, arity); err != nil {
		panic(errors.Errorf("declaring %v.%s: %v", d.typ, name, err))
	}

	d.catalog.mu.Lock()
	defer d.catalog.mu.Unlock()
	merged := d.methods[name]
	if merged == nil {
		merged = make(BindingMap, len(params))
	}
	for i, sel := range params {
		merged[i] = sel
	}
	d.methods[name] = merged
	return d
}

// Type returns the declared type.
func (d *Declaration) Type() Type { return d.typ }

func (c *Catalog) Constructor(t Type) (reflect.Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.decls[t]
	if !ok {
		return reflect.Value{}, false
	}
	return d.ctor, true
}

func (c *Catalog) BindingMap(t Type, member string) (BindingMap, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.decls[t]
	if !ok {
		return nil, false
	}
	if member == ConstructorMember {
		return copyBindings(d.params), true
	}
	params, ok := d.methods[member]
	return copyBindings(params), ok
}

func (c *Catalog) Members(t Type) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.decls[t]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(d.methods))
	for name := range d.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// checkProvider validates a constructor or provider function: it must be a
// non-variadic func returning T or (T, error).
func checkProvider(fn reflect.Value) error {
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return errors.Errorf("provider must be a function; was %v", fn.Kind())
	}
	if fn.IsNil() {
		return errors.New("provider is a nil function")
	}
	t := fn.Type()
	if t.IsVariadic() {
		return errors.Errorf("provider must not be variadic: %v", t)
	}
	switch t.NumOut() {
	case 1:
	case 2:
		if !t.Out(1).Implements(errorType) {
			return errors.Errorf("provider returns two results so the second must implement error; was %v", t)
		}
	default:
		return errors.Errorf("provider must return T or (T, error); was %v", t)
	}
	return nil
}

func checkBindings(params BindingMap, arity int) error {
	for i, sel := range params {
		if i < 0 || i >= arity {
			return errors.Errorf("binding index %d outside %d parameters", i, arity)
		}
		if _, err := selectorKey(sel); err != nil {
			return err
		}
	}
	return nil
}

func copyBindings(params BindingMap) BindingMap {
	if params == nil {
		return nil
	}
	out := make(BindingMap, len(params))
	for i, sel := range params {
		out[i] = sel
	}
	return out
}
