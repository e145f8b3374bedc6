package ic_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/centraunit/ic"
	"github.com/centraunit/ic/mock"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInjectableNotApplicable(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	c := ic.New()
	ctx := context.Background()
	inj := mock.NewMockInjectable(mockCtrl)
	inj.EXPECT().Evaluate(gomock.Any()).Return(false).AnyTimes()

	require.NoError(t, c.Register(ctx, "m", inj))
	require.NoError(t, c.Static().Register("m", "from root"))

	v, err := c.Create(ctx, "m")
	assert.NoError(t, err)
	assert.Equal(t, "from root", v)
}

func TestInjectableReceivesCreator(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	c := ic.New()
	ctx := context.Background()
	inj := mock.NewMockInjectable(mockCtrl)
	require.NoError(t, c.Register(ctx, "m", inj))

	inner := c.NewScope()
	inj.EXPECT().Evaluate(c.Base()).Return(true)
	inj.EXPECT().Get(gomock.Any(), inner).DoAndReturn(func(ctx context.Context, creator ic.Creator) (any, error) {
		return "for " + creator.ID(), nil
	})

	v, err := inner.Create(ctx, "m")
	assert.NoError(t, err)
	assert.Equal(t, "for "+inner.ID(), v)
}

func TestCompositeEvaluatesNewestFirst(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	c := ic.New()
	ctx := context.Background()
	older := mock.NewMockInjectable(mockCtrl)
	newer := mock.NewMockInjectable(mockCtrl)
	require.NoError(t, c.Register(ctx, "m", older))
	require.NoError(t, c.Register(ctx, "m", newer))

	newer.EXPECT().Evaluate(gomock.Any()).Return(false).MinTimes(1)
	older.EXPECT().Evaluate(gomock.Any()).Return(true).MinTimes(1)
	older.EXPECT().Get(gomock.Any(), gomock.Any()).Return("older", nil)

	v, err := c.Create(ctx, "m")
	assert.NoError(t, err)
	assert.Equal(t, "older", v)
}

func TestCompositeNoMatch(t *testing.T) {
	never := func(ic.Interrogator) bool { return false }
	comp := ic.Composite(ic.Conditional(ic.Static(1), never), ic.Conditional(ic.Static(2), never))

	scope := ic.New().NewScope()
	assert.False(t, comp.Evaluate(scope))
	_, err := comp.Get(context.Background(), scope)
	assert.ErrorIs(t, err, ic.ErrNoMatchingInjectable)
}

func TestFactoryPropagatesError(t *testing.T) {
	f := ic.Factory(func(context.Context, ic.Creator) (any, error) {
		return nil, fmt.Errorf("factory failed")
	})
	_, err := f.Get(context.Background(), ic.New().NewScope())
	assert.EqualError(t, err, "factory failed")
}

func TestFactoryAdoptsFuture(t *testing.T) {
	f := ic.Factory(func(context.Context, ic.Creator) (any, error) {
		return ic.Resolved(ic.Resolved("nested")), nil
	})
	v, err := f.Get(context.Background(), ic.New().NewScope())
	assert.NoError(t, err)
	assert.Equal(t, "nested", v)
}

func TestCachedDistinctSlots(t *testing.T) {
	a := ic.Cached(ic.Static("a"))
	b := ic.Cached(ic.Static("b"))
	scope := ic.New().NewScope()

	va, err := a.Get(context.Background(), scope)
	require.NoError(t, err)
	vb, err := b.Get(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, "a", va)
	assert.Equal(t, "b", vb)
}

func TestFutureSettlesOnce(t *testing.T) {
	f := ic.NewFuture()
	assert.False(t, f.Settled())
	assert.True(t, f.Resolve(1))
	assert.False(t, f.Resolve(2))
	assert.False(t, f.Reject(fmt.Errorf("late")))
	assert.True(t, f.Settled())

	v, err := f.Await(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestFutureAwaitCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := ic.NewFuture().Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFutureAsyncPanic(t *testing.T) {
	f := ic.Async(func() (any, error) {
		panic("kaboom")
	})
	_, err := f.Await(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestFutureSelfResolution(t *testing.T) {
	f := ic.NewFuture()
	f.Resolve(f)
	_, err := f.Await(context.Background())
	assert.Error(t, err)
}

func TestFutureRejectNil(t *testing.T) {
	_, err := ic.Rejected(nil).Await(context.Background())
	assert.Error(t, err)
}
