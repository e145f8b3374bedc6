package ic_test

import (
	"context"
	"testing"

	"github.com/centraunit/ic"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// attachScopes builds a chain of depth scopes on a fresh container and
// returns the context carrying it together with the scopes, outermost first.
func attachScopes(depth int) (*ic.Container, context.Context, []*ic.Scope) {
	c := ic.New()
	ctx := context.Background()
	scopes := make([]*ic.Scope, depth)
	for i := range scopes {
		scopes[i] = c.NewScope()
		ctx = c.Attach(ctx, scopes[i])
	}
	return c, ctx, scopes
}

func Test_InnermostBindingWins(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	// Every scope at or below level binds "k"; the innermost binder serves it.
	properties.Property("innermost applicable binding serves the selector", prop.ForAll(
		func(depth, level int) bool {
			level = level % depth
			c, ctx, scopes := attachScopes(depth)
			for i := 0; i <= level; i++ {
				if err := scopes[i].Register("k", i); err != nil {
					return false
				}
			}
			v, err := c.Create(ctx, "k")
			return err == nil && v == level
		},
		gen.IntRange(1, 8),
		gen.IntRange(0, 7),
	))

	properties.TestingRun(t)
}

func Test_UnboundSelectorFails(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("selector bound nowhere in the chain is not found", prop.ForAll(
		func(depth int, selector string) bool {
			c, ctx, scopes := attachScopes(depth)
			for _, s := range scopes {
				if err := s.Register(selector+"-other", true); err != nil {
					return false
				}
			}
			_, err := c.Create(ctx, selector)
			_, notFound := err.(*ic.DependencyNotFoundError)
			return notFound && !c.HasSelector(ctx, selector)
		},
		gen.IntRange(0, 6),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func Test_LatestRegistrationWins(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("last unconditional registration in one scope wins", prop.ForAll(
		func(values []string) bool {
			if len(values) == 0 {
				return true
			}
			scope := ic.New().NewScope()
			for _, v := range values {
				if err := scope.Register("k", v); err != nil {
					return false
				}
			}
			v, err := scope.Create(context.Background(), "k")
			return err == nil && v == values[len(values)-1]
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("failing conditions fall back to older registrations", prop.ForAll(
		func(values []string, enabled []bool) bool {
			scope := ic.New().NewScope()
			want := ""
			for i, v := range values {
				on := i < len(enabled) && enabled[i]
				sel := ic.When("k", func(ic.Interrogator) bool { return on })
				if err := scope.Register(sel, v); err != nil {
					return false
				}
				if on {
					want = v
				}
			}
			v, err := scope.Create(context.Background(), "k")
			if want == "" {
				return err != nil
			}
			return err == nil && v == want
		},
		gen.SliceOf(gen.Identifier()),
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}

func Test_SingletonStable(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("singleton returns its first value until reset", prop.ForAll(
		func(reads int) bool {
			c := ic.New()
			n := 0
			factory := ic.Factory(func(context.Context, ic.Creator) (any, error) {
				n++
				return n, nil
			})
			if err := c.Static().Register(ic.AsSingleton("s"), factory); err != nil {
				return false
			}
			for i := 0; i < reads; i++ {
				v, err := c.Create(context.Background(), "s")
				if err != nil || v != 1 {
					return false
				}
			}
			c.ResetAll()
			v, err := c.Create(context.Background(), "s")
			return err == nil && v == 2 || reads == 0 && v == 1
		},
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}
