package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/optimistic/store"
)

// Config configures the Prometheus observer.
type Config struct {
	// Namespace is the metrics namespace (default: "").
	Namespace string

	// Subsystem is the metrics subsystem (default: "optimistic").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus observer.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Subsystem: "optimistic",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Observer counts store transitions in Prometheus metrics.
// It implements store.Observer and is safe for concurrent use; one
// Observer may be shared by any number of stores.
type Observer struct {
	transitionsTotal *prometheus.CounterVec
	rollbacksTotal   prometheus.Counter
}

// New creates an Observer and registers its metrics.
// Registering two Observers with the same registry, namespace, and
// subsystem panics, as metric registration does in the Prometheus client;
// share one Observer instead.
func New(opts ...Option) *Observer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Observer{
		transitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "transitions_total",
			Help:        "Total number of optimistic value transitions",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		rollbacksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "rollbacks_total",
			Help:        "Total number of rollbacks to the fallback value (explicit reverts and failed outcomes)",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Transition implements store.Observer.
func (o *Observer) Transition(op store.Op, pending bool) {
	o.transitionsTotal.WithLabelValues(string(op)).Inc()
	if op == store.OpRevert || op == store.OpReject {
		o.rollbacksTotal.Inc()
	}
}
