package ic

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// StaticInjectable always applies and returns a fixed value.
type StaticInjectable struct {
	value any
}

// Static returns an injectable for a fixed value.
func Static(value any) *StaticInjectable {
	return &StaticInjectable{value: value}
}

func (s *StaticInjectable) Evaluate(Interrogator) bool { return true }

func (s *StaticInjectable) Get(context.Context, Creator) (any, error) {
	return s.value, nil
}

// FactoryFunc computes a value on demand for the requesting creator.
type FactoryFunc func(ctx context.Context, creator Creator) (any, error)

// FactoryInjectable always applies and calls its function on every Get.
type FactoryInjectable struct {
	fn FactoryFunc
}

// Factory returns an injectable that calls fn on every Get. A *Future
// returned by fn is awaited.
func Factory(fn FactoryFunc) *FactoryInjectable {
	return &FactoryInjectable{fn: fn}
}

func (f *FactoryInjectable) Evaluate(Interrogator) bool { return true }

func (f *FactoryInjectable) Get(ctx context.Context, creator Creator) (any, error) {
	v, err := f.fn(ctx, creator)
	if err != nil {
		return nil, err
	}
	if fut, ok := v.(*Future); ok && fut != nil {
		return fut.Await(ctx)
	}
	return v, nil
}

// PromiseInjectable always applies and adopts an eventual value.
type PromiseInjectable struct {
	future *Future
}

// FromFuture returns an injectable whose Get awaits f.
func FromFuture(f *Future) *PromiseInjectable {
	return &PromiseInjectable{future: f}
}

func (p *PromiseInjectable) Evaluate(Interrogator) bool { return true }

func (p *PromiseInjectable) Get(ctx context.Context, _ Creator) (any, error) {
	return p.future.Await(ctx)
}

// ConditionalInjectable applies only while its condition holds for the
// interrogating scope.
type ConditionalInjectable struct {
	inner     Injectable
	condition Condition
}

// Conditional wraps inner so that it only applies while cond holds.
func Conditional(inner Injectable, cond Condition) *ConditionalInjectable {
	return &ConditionalInjectable{inner: inner, condition: cond}
}

func (c *ConditionalInjectable) Evaluate(in Interrogator) bool {
	return c.condition(in)
}

// Get delegates to the wrapped injectable. The condition is not checked
// again; the caller has already evaluated it.
func (c *ConditionalInjectable) Get(ctx context.Context, creator Creator) (any, error) {
	return c.inner.Get(ctx, creator)
}

// cacheKeys hands out one key per CachedInjectable for the shared cache.
var cacheKeys atomic.Uint64

// heldKey keys, in a context, the singletons whose first computation the
// current path is running.
type heldKey struct{}

type heldNode struct {
	key    uint64
	label  string
	parent *heldNode
}

// singletonCache is the process-wide store behind every CachedInjectable.
//
// flights lists the keys being computed and waits records, per computing
// key, which other flights it is blocked on. A path that would wait on a
// flight which (transitively) waits on one of the path's own flights is a
// cycle across goroutines and fails instead of blocking.
type singletonCache struct {
	mu      sync.Mutex
	gen     uint64
	values  map[uint64]any
	flights map[uint64]string
	waits   map[uint64]map[uint64]int
	group   singleflight.Group
}

var injectableCache = &singletonCache{
	values:  make(map[uint64]any),
	flights: make(map[uint64]string),
	waits:   make(map[uint64]map[uint64]int),
}

// clear drops every cached value and forgets running flights. Flights
// started before the clear still finish but their results are not stored.
func (c *singletonCache) clear() {
	c.mu.Lock()
	c.gen++
	c.values = make(map[uint64]any)
	c.flights = make(map[uint64]string)
	c.waits = make(map[uint64]map[uint64]int)
	c.mu.Unlock()
}

func (c *singletonCache) finish(key, gen uint64, v any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	if err == nil {
		c.values[key] = v
	}
	delete(c.flights, key)
	delete(c.waits, key)
}

// addWait records that the flight from waits on the flight to. Caller holds
// mu.
func (c *singletonCache) addWait(from, to uint64) {
	m := c.waits[from]
	if m == nil {
		m = make(map[uint64]int)
		c.waits[from] = m
	}
	m[to]++
}

func (c *singletonCache) doneWaiting(from, to uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.waits[from]
	if m == nil {
		return
	}
	if m[to]--; m[to] <= 0 {
		delete(m, to)
	}
	if len(m) == 0 {
		delete(c.waits, from)
	}
}

// cycle reports the chain of flights leading from the path's innermost held
// key through key back to a key the path holds, or nil. Caller holds mu.
func (c *singletonCache) cycle(held *heldNode, key uint64, label string) []string {
	if held == nil {
		return nil
	}
	mine := make(map[uint64]bool)
	for n := held; n != nil; n = n.parent {
		mine[n.key] = true
	}
	seen := make(map[uint64]bool)
	var walk func(k uint64, name string, trail []string) []string
	walk = func(k uint64, name string, trail []string) []string {
		trail = append(trail, name)
		if mine[k] {
			return trail
		}
		if seen[k] {
			return nil
		}
		seen[k] = true
		for next := range c.waits[k] {
			if found := walk(next, c.flights[next], trail); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(key, label, []string{held.label})
}

// CachedInjectable memoizes the first successful value of its inner
// injectable in the process-wide cache.
type CachedInjectable struct {
	inner Injectable
	key   uint64
	label string
}

// Cached wraps inner as a process-wide singleton. Each call creates a
// distinct cache slot, so unrelated singletons never collide.
func Cached(inner Injectable) *CachedInjectable {
	key := cacheKeys.Add(1)
	return &CachedInjectable{inner: inner, key: key, label: "singleton#" + strconv.FormatUint(key, 10)}
}

func (c *CachedInjectable) Evaluate(in Interrogator) bool {
	return c.inner.Evaluate(in)
}

// Get returns the cached value, computing it once if needed. Concurrent
// first calls share one computation; each caller stops waiting when its own
// ctx is done. Failures are not cached.
func (c *CachedInjectable) Get(ctx context.Context, creator Creator) (any, error) {
	cache := injectableCache
	held, _ := ctx.Value(heldKey{}).(*heldNode)

	cache.mu.Lock()
	if v, ok := cache.values[c.key]; ok {
		cache.mu.Unlock()
		return v, nil
	}
	if _, running := cache.flights[c.key]; running {
		if chain := cache.cycle(held, c.key, c.label); chain != nil {
			cache.mu.Unlock()
			return nil, &CircularDependencyError{Chain: chain}
		}
	} else {
		cache.flights[c.key] = c.label
	}
	if held != nil {
		cache.addWait(held.key, c.key)
		defer cache.doneWaiting(held.key, c.key)
	}
	gen := cache.gen
	flight := strconv.FormatUint(c.key, 10) + "@" + strconv.FormatUint(gen, 10)
	ch := cache.group.DoChan(flight, func() (any, error) {
		fctx := context.WithValue(context.WithoutCancel(ctx), heldKey{}, &heldNode{key: c.key, label: c.label, parent: held})
		v, err := c.inner.Get(fctx, creator)
		cache.finish(c.key, gen, v, err)
		return v, err
	})
	cache.mu.Unlock()

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CompositeInjectable holds successive bindings of one selector in one
// scope, most recent first.
type CompositeInjectable struct {
	members []Injectable
}

// Composite returns an injectable that serves the first applicable member.
func Composite(members ...Injectable) *CompositeInjectable {
	return &CompositeInjectable{members: members}
}

func (c *CompositeInjectable) Evaluate(in Interrogator) bool {
	for _, m := range c.members {
		if m.Evaluate(in) {
			return true
		}
	}
	return false
}

// Get re-evaluates the members against the creator and serves the first
// that applies. It returns ErrNoMatchingInjectable when none does.
func (c *CompositeInjectable) Get(ctx context.Context, creator Creator) (any, error) {
	for _, m := range c.members {
		if m.Evaluate(creator) {
			return m.Get(ctx, creator)
		}
	}
	return nil, ErrNoMatchingInjectable
}

// Members returns the composed injectables, most recent first.
func (c *CompositeInjectable) Members() []Injectable {
	out := make([]Injectable, len(c.members))
	copy(out, c.members)
	return out
}
