package mock

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/centraunit/ic"
	"github.com/pkg/errors"
)

// ConditionValue drives the conditional "d" bindings of Config.
var ConditionValue atomic.Int32

type Something struct {
	Value  string
	Value2 string
}

func NewSomething(value, value2 string) *Something {
	return &Something{Value: value, Value2: value2}
}

type Something2 struct {
	Value string
}

func NewSomething2(value string) *Something2 {
	return &Something2{Value: value}
}

// Pair records which of its dependencies it received in which position.
type Pair struct {
	First  string
	Second string
}

func NewPair(first, second string) *Pair {
	return &Pair{First: first, Second: second}
}

// Fragile fails to construct when given an empty name.
type Fragile struct {
	Name string
}

func NewFragile(name string) (*Fragile, error) {
	if name == "" {
		return nil, errors.New("fragile needs a name")
	}
	return &Fragile{Name: name}, nil
}

// Sink collects lines written by Handler.
type Sink struct {
	mu    sync.Mutex
	lines []string
}

func (s *Sink) Write(line string) {
	s.mu.Lock()
	s.lines = append(s.lines, line)
	s.mu.Unlock()
}

func (s *Sink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

type Handler struct {
	dep func()
}

func NewHandler(dep func()) *Handler {
	return &Handler{dep: dep}
}

// SomeAction writes to out in two steps, the second one after a delay.
func (h *Handler) SomeAction(greeting string, out *Sink) *ic.Future {
	h.dep()
	out.Write(greeting)
	return ic.Async(func() (any, error) {
		time.Sleep(10 * time.Millisecond)
		out.Write("world")
		return len(out.Lines()), nil
	})
}

func (h *Handler) Echo(s string) string {
	return s
}

func (h *Handler) Join(sep string, parts ...string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}

func (h *Handler) Fail(reason string) error {
	return errors.Errorf("failed: %s", reason)
}

// Config bundles the bindings "a" through "d".
type Config struct{}

func init() {
	ic.Declare[*Something](NewSomething, ic.BindingMap{0: ic.TypeOf[string](), 1: "str2"})
	ic.Declare[*Something2](NewSomething2, ic.BindingMap{0: "b"})
	ic.Declare[*Pair](NewPair, ic.BindingMap{0: "slow", 1: "fast"})
	ic.Declare[*Fragile](NewFragile, ic.BindingMap{0: "name"})
	ic.Declare[*Handler](NewHandler, ic.BindingMap{0: "dep"}).
		Method("SomeAction", ic.BindingMap{0: "greeting", 1: "output"})

	ic.Configure[Config]().
		Provide("a", func() string { return "a-value" }).
		Provide("b", func(a string) string { return a }, ic.BindingMap{0: "a"}).
		Provide("c", func(a string) *ic.Future { return ic.Resolved(a) }, ic.BindingMap{0: "a"}).
		Provide(ic.When("d", func(ic.Interrogator) bool { return ConditionValue.Load() == 0 }),
			func() string { return "d-1" }).
		Provide(ic.When("d", func(ic.Interrogator) bool { return ConditionValue.Load() == 1 }),
			func() string { return "d-2" })
}
