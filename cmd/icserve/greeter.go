package main

import (
	"context"
	"time"

	"github.com/centraunit/ic"
	"github.com/centraunit/ic/chiadapter"
)

// Greeter is the demo type served under /greeter.
type Greeter struct {
	started time.Time
}

func NewGreeter(started time.Time) *Greeter {
	return &Greeter{started: started}
}

func (g *Greeter) Greet(greeting string, out *chiadapter.Recorder) {
	out.Record("greet", greeting)
}

func (g *Greeter) Uptime(now func() time.Time, out *chiadapter.Recorder) {
	out.Record("uptime", now().Sub(g.started).String())
}

// greeterConfig holds the bindings the demo installs into the root scope.
type greeterConfig struct{}

func init() {
	ic.Declare[*Greeter](NewGreeter, ic.BindingMap{0: "started"}).
		Method("Greet", ic.BindingMap{0: "greeting", 1: chiadapter.OutputSelector}).
		Method("Uptime", ic.BindingMap{0: "clock", 1: chiadapter.OutputSelector})

	ic.Configure[greeterConfig]().
		Include(ic.AsSingleton("started"), ic.Factory(func(context.Context, ic.Creator) (any, error) {
			return time.Now(), nil
		})).
		Include("clock", time.Now)
}
