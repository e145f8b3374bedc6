package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/centraunit/ic"
	"github.com/centraunit/ic/chiadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("IC_ADDR", ":9999")
	t.Setenv("IC_GREETING", "")

	cfg := loadConfig("does-not-exist.env")
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "hello", cfg.Greeting)
}

func TestGreeterRoutes(t *testing.T) {
	r, err := newRouter(ic.New(), serverConfig{Greeting: "howdy"})
	require.NoError(t, err)
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/greeter/greet")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var calls []chiadapter.Call
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&calls))
	require.Len(t, calls, 1)
	assert.Equal(t, "greet", calls[0].Name)
	assert.Equal(t, []any{"howdy"}, calls[0].Args)

	resp, err = http.Get(srv.URL + "/greeter/uptime")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewRouterRepeatable(t *testing.T) {
	registrator, ok := ic.LookupConfig(ic.TypeOf[greeterConfig]())
	require.True(t, ok)
	entries := registrator.Len()

	c := ic.New()
	_, err := newRouter(c, serverConfig{Greeting: "first"})
	require.NoError(t, err)
	r, err := newRouter(c, serverConfig{Greeting: "second"})
	require.NoError(t, err)
	assert.Equal(t, entries, registrator.Len())

	srv := httptest.NewServer(r)
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/greeter/greet")
	require.NoError(t, err)
	defer resp.Body.Close()

	var calls []chiadapter.Call
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&calls))
	require.Len(t, calls, 1)
	assert.Equal(t, []any{"second"}, calls[0].Args)
}
