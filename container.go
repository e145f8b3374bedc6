// Package ic provides a scoped dependency-resolution container.
//
// Values are bound to selectors in scopes. Scopes are chained through a
// context.Context: lookups start at the innermost attached scope and walk
// outward to the container's base scope and finally its permanent root
// scope. Bindings can be conditional, process-wide singletons, or eventual
// values, and repeated bindings of one selector in one scope compose with
// the newest taking precedence.
package ic

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	uuid "github.com/nu7hatch/gouuid"
	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"
)

// StaticScopeID is the identifier of every container's permanent root scope.
const StaticScopeID = "static"

// Container manages the root and base scopes and resolves selectors along
// the scope chain carried by a context. It is safe for concurrent use.
type Container struct {
	mu      sync.RWMutex
	static  *Scope
	base    *Scope
	log     log.FieldLogger
	metrics metrics.Registry
	catalog BindingMapProvider
}

var (
	once             sync.Once
	defaultContainer *Container
	scopeSeq         atomic.Uint64
)

// New creates a container with an empty root scope and an empty base scope.
func New(opts ...Option) *Container {
	c := &Container{
		log:     log.StandardLogger(),
		metrics: metrics.NewRegistry(),
		catalog: DefaultCatalog(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.static = newScope(c, StaticScopeID)
	c.base = newScope(c, newScopeID())
	return c
}

// Default returns the process-wide container used by the package-level
// functions. It is created on first access.
func Default() *Container {
	once.Do(func() {
		defaultContainer = New()
	})
	return defaultContainer
}

func newScopeID() string {
	u, err := uuid.NewV4()
	if err != nil {
		return "scope::" + strconv.FormatUint(scopeSeq.Add(1), 10)
	}
	return "scope::" + u.String()
}

// Static returns the permanent root scope. Its bindings survive ResetAll.
func (c *Container) Static() *Scope {
	return c.static
}

// Base returns the current base scope, the outermost scope replaced by
// ResetAll.
func (c *Container) Base() *Scope {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.base
}

// Metrics returns the registry the container reports to.
func (c *Container) Metrics() metrics.Registry {
	return c.metrics
}

// Logger returns the logger set with WithLogger.
func (c *Container) Logger() log.FieldLogger {
	return c.log
}

// Catalog returns the binding-map provider used by Wire and Proxy.
func (c *Container) Catalog() BindingMapProvider {
	return c.catalog
}

// Register binds value to selector in the innermost scope visible from ctx.
// See Scope.Register for the wrapping and composition rules.
func (c *Container) Register(ctx context.Context, selector Selector, value any) error {
	return c.Current(ctx).Register(selector, value)
}

// Create resolves selector by walking the chain visible from ctx from the
// innermost scope outward. The first scope holding an applicable binding
// serves the value.
//
// Returns DependencyNotFoundError if no scope in the chain applies.
func (c *Container) Create(ctx context.Context, selector Selector) (any, error) {
	return c.create(ctx, selector, c.Current(ctx))
}

// Wire constructs the declared type t, resolving its constructor
// parameters from the chain visible from ctx.
func (c *Container) Wire(ctx context.Context, t Type) (any, error) {
	return c.wire(ctx, t, c.Current(ctx))
}

// Proxy constructs t and wraps it so that its declared methods resolve
// their own bindings on every call.
func (c *Container) Proxy(ctx context.Context, t Type) (*Proxy, error) {
	return c.proxy(ctx, t, c.Current(ctx))
}

// WithConfig installs the declared bindings of each configuration type into
// the innermost scope visible from ctx.
func (c *Container) WithConfig(ctx context.Context, types ...Type) error {
	return c.Current(ctx).WithConfig(types...)
}

// HasSelector reports whether any scope visible from ctx holds an
// applicable binding for selector.
func (c *Container) HasSelector(ctx context.Context, selector Selector) bool {
	for _, s := range c.Chain(ctx) {
		if s.HasSelector(selector) {
			return true
		}
	}
	return false
}

// NewScope creates a detached scope. It is not part of any chain until
// attached with Attach; until then it is only reachable through its own
// methods.
func (c *Container) NewScope() *Scope {
	s := newScope(c, newScopeID())
	c.count(metricScopeCreated)
	c.log.WithField("scope", s.id).Debug("created scope")
	return s
}

// Scope creates a new scope. With a nil handler the scope is returned
// detached. Otherwise handler runs with a context in which the new scope is
// innermost; work started from that context keeps seeing the scope after
// the handler returns, and nothing outside it ever does.
func (c *Container) Scope(ctx context.Context, handler ScopeHandler) (*Scope, error) {
	s := c.NewScope()
	if handler == nil {
		return s, nil
	}
	if err := handler(c.Attach(ctx, s), s); err != nil {
		return s, errors.Wrapf(err, "scope %s", s.id)
	}
	return s, nil
}

// ScopeAsync runs Scope on its own goroutine. The returned future settles
// with the *Scope once the handler has finished, or with its error.
func (c *Container) ScopeAsync(ctx context.Context, handler ScopeHandler) *Future {
	return Async(func() (any, error) {
		return c.Scope(ctx, handler)
	})
}

// ResetAll clears the process-wide singleton cache and replaces the base
// scope with a fresh one. The root scope and its bindings are kept. Scopes
// still attached to live contexts now sit on top of the new base scope.
func (c *Container) ResetAll() {
	injectableCache.clear()
	c.mu.Lock()
	c.base = newScope(c, newScopeID())
	id := c.base.id
	c.mu.Unlock()
	c.count(metricReset)
	c.log.WithField("scope", id).Debug("reset container")
}

func (c *Container) create(ctx context.Context, selector Selector, creator *Scope) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	key, err := selectorKey(selector)
	if err != nil {
		return nil, err
	}
	c.count(metricCreate)

	serve := func(s *Scope, inj Injectable) (any, error) {
		sctx, err := enterResolution(ctx, s, key)
		if err != nil {
			return nil, err
		}
		return inj.Get(sctx, creator)
	}

	if inj, ok := creator.applicable(key); ok {
		v, err := serve(creator, inj)
		if !errors.Is(err, ErrNoMatchingInjectable) {
			return v, err
		}
	}
	for _, s := range c.Chain(ctx) {
		if s == creator {
			continue
		}
		inj, ok := s.applicable(key)
		if !ok {
			c.count(metricFallthrough)
			continue
		}
		v, err := serve(s, inj)
		if errors.Is(err, ErrNoMatchingInjectable) {
			c.count(metricFallthrough)
			continue
		}
		return v, err
	}

	c.count(metricUnresolved)
	c.log.WithFields(log.Fields{
		"scope":    creator.id,
		"selector": describeSelector(key),
	}).Debug("selector unresolved")
	return nil, &DependencyNotFoundError{Selector: describeSelector(key)}
}

// Register binds value to selector in the innermost scope of the default
// container visible from ctx.
func Register(ctx context.Context, selector Selector, value any) error {
	return Default().Register(ctx, selector, value)
}

// Create resolves selector from the default container.
func Create(ctx context.Context, selector Selector) (any, error) {
	return Default().Create(ctx, selector)
}

// Wire constructs t from the default container.
func Wire(ctx context.Context, t Type) (any, error) {
	return Default().Wire(ctx, t)
}

// NewProxy constructs and proxies t from the default container.
func NewProxy(ctx context.Context, t Type) (*Proxy, error) {
	return Default().Proxy(ctx, t)
}

// NewScope creates a detached scope of the default container.
func NewScope() *Scope {
	return Default().NewScope()
}

// WithScope creates a scope of the default container; see Container.Scope.
func WithScope(ctx context.Context, handler ScopeHandler) (*Scope, error) {
	return Default().Scope(ctx, handler)
}

// WithConfig installs configuration types into the default container.
func WithConfig(ctx context.Context, types ...Type) error {
	return Default().WithConfig(ctx, types...)
}

// HasSelector reports whether the default container can serve selector.
func HasSelector(ctx context.Context, selector Selector) bool {
	return Default().HasSelector(ctx, selector)
}

// ResetAll resets the default container. It is intended for test isolation.
func ResetAll() {
	Default().ResetAll()
}
