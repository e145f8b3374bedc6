package ic

import (
	"context"
)

// scopeNode is one attached scope in a context's chain. Nodes are immutable;
// attaching a scope links a new node in front of the current one, so
// concurrent handlers each see only their own chain.
type scopeNode struct {
	scope  *Scope
	parent *scopeNode
}

// chainKey keys a container's scope chain in a context. Two containers never
// see each other's attached scopes.
type chainKey struct {
	c *Container
}

// pathKey keys the in-flight resolution path in a context.
type pathKey struct{}

// pathNode is one binding currently being served on this path: the scope
// serving it and the selector it serves.
type pathNode struct {
	scope    *Scope
	selector Selector
	parent   *pathNode
}

func (c *Container) attached(ctx context.Context) *scopeNode {
	if ctx == nil {
		return nil
	}
	node, _ := ctx.Value(chainKey{c: c}).(*scopeNode)
	return node
}

// Attach returns a child of ctx in which scope is the innermost scope of
// this container's chain. Ambient lookups made with the returned context (or
// any context derived from it) see the scope's bindings.
func (c *Container) Attach(ctx context.Context, scope *Scope) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, chainKey{c: c}, &scopeNode{scope: scope, parent: c.attached(ctx)})
}

// Chain returns the scopes visible from ctx, innermost first. The base scope
// and the static root scope always close the chain.
func (c *Container) Chain(ctx context.Context) []*Scope {
	var chain []*Scope
	for n := c.attached(ctx); n != nil; n = n.parent {
		chain = append(chain, n.scope)
	}
	c.mu.RLock()
	chain = append(chain, c.base, c.static)
	c.mu.RUnlock()
	return chain
}

// Current returns the innermost scope visible from ctx.
func (c *Container) Current(ctx context.Context) *Scope {
	if n := c.attached(ctx); n != nil {
		return n.scope
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.base
}

// enterResolution records that scope serves selector on the resolution path
// carried by ctx. It fails if the same scope is already serving the same
// selector further up the path. Another scope serving that selector is not a
// cycle; an inner binding may build on an outer one.
func enterResolution(ctx context.Context, scope *Scope, selector Selector) (context.Context, error) {
	parent, _ := ctx.Value(pathKey{}).(*pathNode)
	for n := parent; n != nil; n = n.parent {
		if n.scope != scope || n.selector != selector {
			continue
		}
		chain := []string{describeSelector(selector)}
		for m := parent; m != nil; m = m.parent {
			chain = append([]string{describeSelector(m.selector)}, chain...)
			if m == n {
				break
			}
		}
		return ctx, &CircularDependencyError{Chain: chain}
	}
	return context.WithValue(ctx, pathKey{}, &pathNode{scope: scope, selector: selector, parent: parent}), nil
}
