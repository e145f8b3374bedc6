package ic

import (
	"github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"
)

// Option configures a Container during New.
type Option func(*Container)

// WithLogger sets the logger the container reports to. The default is the
// logrus standard logger.
func WithLogger(l log.FieldLogger) Option {
	return func(c *Container) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics sets the metrics registry. The default is a fresh registry per
// container.
func WithMetrics(r metrics.Registry) Option {
	return func(c *Container) {
		if r != nil {
			c.metrics = r
		}
	}
}

// WithCatalog sets the binding-map provider used by Wire and Proxy. The
// default is the process-wide DefaultCatalog.
func WithCatalog(p BindingMapProvider) Option {
	return func(c *Container) {
		if p != nil {
			c.catalog = p
		}
	}
}
