package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestFieldCollectorRecordsRegistryActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewFieldCollector(reg)
	if err != nil {
		t.Fatalf("NewFieldCollector: %v", err)
	}

	collector.FieldRegistered("cell")
	collector.FieldRegistered("cell")
	collector.FieldRegistered("particle")
	collector.AliasAdded()
	collector.FieldPruned("unavailable")
	collector.SetRegistryFields("test-registry", 12)
	collector.ValidationObserved(0.002)

	if got := testutil.ToFloat64(collector.FieldsRegistered.WithLabelValues("cell")); got != 2 {
		t.Fatalf("fieldkit_fields_registered_total{sampling=cell} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.FieldsRegistered.WithLabelValues("particle")); got != 1 {
		t.Fatalf("fieldkit_fields_registered_total{sampling=particle} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.AliasesAdded); got != 1 {
		t.Fatalf("fieldkit_field_aliases_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.FieldsPruned.WithLabelValues("unavailable")); got != 1 {
		t.Fatalf("fieldkit_fields_pruned_total{reason=unavailable} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.RegistryFields.WithLabelValues("test-registry")); got != 12 {
		t.Fatalf("fieldkit_registry_fields{registry=test-registry} = %v, want 12", got)
	}
	if count := histogramSampleCount(t, reg, "fieldkit_validation_duration_seconds", nil); count != 1 {
		t.Fatalf("fieldkit_validation_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestNewFieldCollectorToleratesDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewFieldCollector(reg)
	if err != nil {
		t.Fatalf("NewFieldCollector (first): %v", err)
	}
	second, err := NewFieldCollector(reg)
	if err != nil {
		t.Fatalf("NewFieldCollector (second): %v", err)
	}

	first.FieldPruned("error")
	second.FieldPruned("error")
	if got := testutil.ToFloat64(first.FieldsPruned.WithLabelValues("error")); got != 2 {
		t.Fatalf("duplicate collectors should share metrics, got %v, want 2", got)
	}
}

func TestMetricsHandlerExposesFieldMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewFieldCollector(reg)
	if err != nil {
		t.Fatalf("NewFieldCollector: %v", err)
	}
	collector.FieldRegistered("cell")
	collector.AliasAdded()
	collector.FieldPruned("unavailable")
	collector.SetRegistryFields("ds", 7)
	collector.ValidationObserved(0.001)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"fieldkit_fields_registered_total",
		"fieldkit_field_aliases_total",
		"fieldkit_fields_pruned_total",
		"fieldkit_registry_fields",
		"fieldkit_validation_duration_seconds",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
}

func TestSetRegistryFieldsDefaultsEmptyName(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewFieldCollector(reg)
	if err != nil {
		t.Fatalf("NewFieldCollector: %v", err)
	}
	collector.SetRegistryFields("", 3)
	if got := testutil.ToFloat64(collector.RegistryFields.WithLabelValues("unnamed")); got != 3 {
		t.Fatalf("fieldkit_registry_fields{registry=unnamed} = %v, want 3", got)
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
