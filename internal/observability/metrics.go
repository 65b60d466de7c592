package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// FieldCollector bundles the Prometheus metrics for registry activity. It
// satisfies core.MetricsRecorder, so a single collector can be handed to a
// whole registry chain at construction time.
type FieldCollector struct {
	gatherer prometheus.Gatherer

	FieldsRegistered   *prometheus.CounterVec
	AliasesAdded       prometheus.Counter
	FieldsPruned       *prometheus.CounterVec
	RegistryFields     *prometheus.GaugeVec
	ValidationDuration prometheus.Histogram
}

// NewFieldCollector registers the field metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewFieldCollector(reg prometheus.Registerer) (*FieldCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	registered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldkit_fields_registered_total",
		Help: "Total number of field definitions installed, labeled by sampling kind.",
	}, []string{"sampling"})
	registered, err := registerCounterVec(reg, registered, "fieldkit_fields_registered_total")
	if err != nil {
		return nil, err
	}

	aliases, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fieldkit_field_aliases_total",
		Help: "Total number of alias definitions installed.",
	}), "fieldkit_field_aliases_total")
	if err != nil {
		return nil, err
	}

	pruned := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldkit_fields_pruned_total",
		Help: "Total number of fields removed during validation, labeled by reason.",
	}, []string{"reason"})
	pruned, err = registerCounterVec(reg, pruned, "fieldkit_fields_pruned_total")
	if err != nil {
		return nil, err
	}

	registryFields := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fieldkit_registry_fields",
		Help: "Current number of locally owned field definitions per registry.",
	}, []string{"registry"})
	registryFields, err = registerGaugeVec(reg, registryFields, "fieldkit_registry_fields")
	if err != nil {
		return nil, err
	}

	validation, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fieldkit_validation_duration_seconds",
		Help:    "Dependency validation pass duration in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}), "fieldkit_validation_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &FieldCollector{
		gatherer:           gatherer,
		FieldsRegistered:   registered,
		AliasesAdded:       aliases,
		FieldsPruned:       pruned,
		RegistryFields:     registryFields,
		ValidationDuration: validation,
	}, nil
}

// FieldRegistered counts an installed definition by sampling kind.
func (c *FieldCollector) FieldRegistered(sampling string) {
	if c == nil || c.FieldsRegistered == nil {
		return
	}
	c.FieldsRegistered.WithLabelValues(sampling).Inc()
}

// AliasAdded counts an installed alias definition.
func (c *FieldCollector) AliasAdded() {
	if c == nil || c.AliasesAdded == nil {
		return
	}
	c.AliasesAdded.Inc()
}

// FieldPruned counts a validation-time removal by reason.
func (c *FieldCollector) FieldPruned(reason string) {
	if c == nil || c.FieldsPruned == nil {
		return
	}
	c.FieldsPruned.WithLabelValues(reason).Inc()
}

// ValidationObserved records one validation pass duration.
func (c *FieldCollector) ValidationObserved(seconds float64) {
	if c == nil || c.ValidationDuration == nil {
		return
	}
	c.ValidationDuration.Observe(seconds)
}

// SetRegistryFields tracks the live definition count of one registry.
func (c *FieldCollector) SetRegistryFields(registry string, count int) {
	if c == nil || c.RegistryFields == nil {
		return
	}
	if registry == "" {
		registry = "unnamed"
	}
	c.RegistryFields.WithLabelValues(registry).Set(float64(count))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *FieldCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}
