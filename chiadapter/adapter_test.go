package chiadapter_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/centraunit/ic"
	"github.com/centraunit/ic/chiadapter"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Handler struct {
	dep func()
}

func NewHandler(dep func()) *Handler {
	return &Handler{dep: dep}
}

func (h *Handler) SomeAction(dep2 string, out *chiadapter.Recorder) {
	h.dep()
	out.Record("setResult1", "hello")
	time.Sleep(10 * time.Millisecond)
	out.Record("setResult2", dep2)
}

func (h *Handler) Broken(out *chiadapter.Recorder) error {
	out.Record("partial")
	return context.Canceled
}

func newServer(t *testing.T, opts ...ic.Option) (*httptest.Server, *atomic.Int32) {
	catalog := ic.NewCatalog()
	catalog.Declare(ic.TypeOf[*Handler](), NewHandler, ic.BindingMap{0: "dep"}).
		Method("SomeAction", ic.BindingMap{0: "dep2", 1: chiadapter.OutputSelector}).
		Method("Broken", ic.BindingMap{0: chiadapter.OutputSelector})
	c := ic.New(append([]ic.Option{ic.WithCatalog(catalog)}, opts...)...)

	calls := &atomic.Int32{}
	ctx := context.Background()
	require.NoError(t, c.Register(ctx, "dep", func() { calls.Add(1) }))
	require.NoError(t, c.Register(ctx, "dep2", "world"))

	r := chi.NewRouter()
	chiadapter.Mount(r, c, ic.TypeOf[*Handler]())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, calls
}

func TestHandlerRecordsCalls(t *testing.T) {
	srv, calls := newServer(t)

	resp, err := http.Get(srv.URL + "/handler/someAction")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []chiadapter.Call
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, []chiadapter.Call{
		{Name: "setResult1", Args: []any{"hello"}},
		{Name: "setResult2", Args: []any{"world"}},
	}, got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHandlerScopesAreIndependent(t *testing.T) {
	srv, calls := newServer(t)

	for i := 0; i < 3; i++ {
		resp, err := http.Get(srv.URL + "/handler/someAction")
		require.NoError(t, err)
		var got []chiadapter.Call
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		resp.Body.Close()
		assert.Len(t, got, 2)
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestHandlerUnknownOperation(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/handler/nothingHere")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandlerOperationError(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/handler/broken")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestPath(t *testing.T) {
	assert.Equal(t, "/handler", chiadapter.Path(ic.TypeOf[*Handler]()))
	assert.Equal(t, "/recorder", chiadapter.Path(ic.TypeOf[chiadapter.Recorder]()))
}

func TestRecorderEmptyArgs(t *testing.T) {
	rec := &chiadapter.Recorder{}
	rec.Record("ping")
	assert.Equal(t, []chiadapter.Call{{Name: "ping", Args: []any{}}}, rec.Calls())
}

func TestHandlerLogsToContainerLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	srv, _ := newServer(t, ic.WithLogger(logger))

	resp, err := http.Get(srv.URL + "/handler/someAction")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "served operation", entry.Message)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "someAction", entry.Data["operation"])

	resp, err = http.Get(srv.URL + "/handler/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "operation failed", hook.LastEntry().Message)
	assert.Equal(t, http.StatusNotFound, hook.LastEntry().Data["status"])
}
