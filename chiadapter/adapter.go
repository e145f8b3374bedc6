// Package chiadapter serves the operations of a proxied type over HTTP.
//
// Every request gets its own scope holding a Recorder under OutputSelector.
// The operation named in the path is called on a proxy of the mounted type
// and the calls it made on the recorder are written back as JSON.
package chiadapter

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/centraunit/ic"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// OutputSelector is the selector the request's Recorder is bound to.
const OutputSelector = "output"

// Call is one recorded call.
type Call struct {
	Name string `json:"name"`
	Args []any  `json:"args"`
}

// Recorder collects the calls an operation makes on its output.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

// Record appends a call. It is safe for concurrent use.
func (r *Recorder) Record(name string, args ...any) {
	if args == nil {
		args = []any{}
	}
	r.mu.Lock()
	r.calls = append(r.calls, Call{Name: name, Args: args})
	r.mu.Unlock()
}

// Calls returns the recorded calls in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Path returns the route prefix for t: its type name in lower case, without
// pointer indirection.
func Path(t ic.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return "/" + strings.ToLower(t.Name())
}

// Mount routes /{type}/{operation} on r to Handler(c, t).
func Mount(r chi.Router, c *ic.Container, t ic.Type) {
	r.HandleFunc(Path(t)+"/{operation}", Handler(c, t))
}

// Handler returns the request handler for t. The request scope is attached
// to the request context, so anything the operation resolves ambiently sees
// the recorder too.
func Handler(c *ic.Container, t ic.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		operation := chi.URLParam(req, "operation")
		logger := c.Logger().WithFields(log.Fields{
			"type":      t.String(),
			"operation": operation,
		})

		scope := c.NewScope()
		ctx := c.Attach(req.Context(), scope)
		rec := &Recorder{}
		if err := scope.Register(OutputSelector, rec); err != nil {
			fail(w, logger, http.StatusInternalServerError, err)
			return
		}

		p, err := scope.Proxy(ctx, t)
		if err != nil {
			fail(w, logger, http.StatusInternalServerError, err)
			return
		}
		if _, err := p.Call(ctx, methodName(operation)); err != nil {
			fail(w, logger, statusOf(err), err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rec.Calls()); err != nil {
			logger.WithError(err).Error("encoding response")
			return
		}
		logger.WithField("scope", scope.ID()).Info("served operation")
	}
}

func methodName(operation string) string {
	r, size := utf8.DecodeRuneInString(operation)
	if r == utf8.RuneError {
		return operation
	}
	return string(unicode.ToUpper(r)) + operation[size:]
}

func statusOf(err error) int {
	var unknown *ic.UnknownMethodError
	var args *ic.ArgumentError
	switch {
	case errors.As(err, &unknown):
		return http.StatusNotFound
	case errors.As(err, &args):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fail(w http.ResponseWriter, logger log.FieldLogger, status int, err error) {
	logger.WithError(err).WithField("status", status).Warn("operation failed")
	http.Error(w, err.Error(), status)
}
