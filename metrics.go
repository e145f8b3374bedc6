package ic

import (
	"time"

	"github.com/rcrowley/go-metrics"
)

// Metric names reported to the container's registry.
const (
	metricRegister     = "ic.register"
	metricCreate       = "ic.create"
	metricFallthrough  = "ic.create.fallthrough"
	metricUnresolved   = "ic.create.unresolved"
	metricScopeCreated = "ic.scope.created"
	metricReset        = "ic.reset"
	metricWire         = "ic.wire"
	metricProxyCall    = "ic.proxy.call"
)

func (c *Container) count(name string) {
	metrics.GetOrRegisterCounter(name, c.metrics).Inc(1)
}

func (c *Container) since(name string, start time.Time) {
	metrics.GetOrRegisterTimer(name, c.metrics).UpdateSince(start)
}
