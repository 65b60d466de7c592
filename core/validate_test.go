package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/simfoundry/fieldkit/model"
)

func TestValidatePublishesSatisfiableFields(t *testing.T) {
	ds := newTestDataset(gasField("density"), gasField("pressure"))
	r := newTestRegistry(ds)

	fn := func(_ *FieldDefinition, data DataSource) (Array, error) {
		rho, err := data.FieldValue(gasField("density"))
		if err != nil {
			return nil, err
		}
		p, err := data.FieldValue(gasField("pressure"))
		if err != nil {
			return nil, err
		}
		out := make(Array, len(rho))
		for i := range out {
			out[i] = p[i] / rho[i]
		}
		return out, nil
	}
	if err := r.Register(gasField("specific_energy"), fn, model.SamplingCell, FieldOptions{}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	deps, unavailable, err := r.Validate(nil, Lenient)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(unavailable) != 0 {
		t.Fatalf("unavailable = %v, want none", unavailable)
	}
	got := deps[gasField("specific_energy")]
	want := []model.FieldName{gasField("density"), gasField("pressure")}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("dependencies = %v, want %v", got, want)
	}

	if len(ds.DerivedFieldList) != 1 || ds.DerivedFieldList[0] != gasField("specific_energy") {
		t.Fatalf("DerivedFieldList = %v, want [specific_energy]", ds.DerivedFieldList)
	}
	if len(ds.FieldDependencies[gasField("specific_energy")]) != 2 {
		t.Fatalf("FieldDependencies not published: %v", ds.FieldDependencies)
	}
}

func TestValidatePrunesUnsatisfiableField(t *testing.T) {
	ds := newTestDataset(gasField("density"))
	r := newTestRegistry(ds)

	if err := r.Register(gasField("needs_pressure"), readField(gasField("pressure")), model.SamplingCell, FieldOptions{}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, unavailable, err := r.Validate(nil, Lenient)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(unavailable) != 1 || unavailable[0] != gasField("needs_pressure") {
		t.Fatalf("unavailable = %v, want [needs_pressure]", unavailable)
	}
	if r.Contains(gasField("needs_pressure")) {
		t.Fatalf("pruned field still present in registry")
	}
	if len(ds.DerivedFieldList) != 0 {
		t.Fatalf("pruned field leaked into DerivedFieldList: %v", ds.DerivedFieldList)
	}
}

func TestValidateMultiHopResolvesToLeaves(t *testing.T) {
	ds := newTestDataset(gasField("density"))
	r := newTestRegistry(ds)

	if err := r.Register(gasField("double_density"), readField(gasField("density")), model.SamplingCell, FieldOptions{}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(gasField("quadruple_density"), readField(gasField("double_density")), model.SamplingCell, FieldOptions{}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	deps, _, err := r.Validate(nil, Lenient)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	got := deps[gasField("quadruple_density")]
	if len(got) != 1 || got[0] != gasField("density") {
		t.Fatalf("multi-hop dependencies = %v, want [gas density]", got)
	}
}

func TestValidateStrictPropagatesComputeErrors(t *testing.T) {
	ds := newTestDataset(gasField("density"))
	r := newTestRegistry(ds)

	boom := errors.New("boom")
	fn := func(_ *FieldDefinition, _ DataSource) (Array, error) {
		return nil, fmt.Errorf("computing: %w", boom)
	}
	if err := r.Register(gasField("broken"), fn, model.SamplingCell, FieldOptions{}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := r.Validate(nil, Strict); !errors.Is(err, boom) {
		t.Fatalf("strict Validate error = %v, want wrapped boom", err)
	}
}

func TestValidateLenientDropsErroredFieldSilently(t *testing.T) {
	ds := newTestDataset(gasField("density"))
	r := newTestRegistry(ds)

	fn := func(_ *FieldDefinition, _ DataSource) (Array, error) {
		return nil, errors.New("boom")
	}
	if err := r.Register(gasField("broken"), fn, model.SamplingCell, FieldOptions{}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, unavailable, err := r.Validate(nil, Lenient)
	if err != nil {
		t.Fatalf("lenient Validate: %v", err)
	}
	// Errored fields are dropped but not recorded as unavailable; that list
	// is reserved for fields the dataset genuinely cannot satisfy.
	if len(unavailable) != 0 {
		t.Fatalf("unavailable = %v, want none", unavailable)
	}
	if r.Contains(gasField("broken")) {
		t.Fatalf("errored field survived lenient validation")
	}
}

func TestValidateMarkStrictOverridesLenient(t *testing.T) {
	ds := newTestDataset(gasField("density"))
	r := newTestRegistry(ds)

	boom := errors.New("boom")
	fn := func(_ *FieldDefinition, _ DataSource) (Array, error) { return nil, boom }
	if err := r.Register(gasField("broken"), fn, model.SamplingCell, FieldOptions{}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	r.MarkStrict(gasField("broken"))

	if _, _, err := r.Validate(nil, Lenient); !errors.Is(err, boom) {
		t.Fatalf("MarkStrict field error = %v, want boom even in lenient mode", err)
	}
}

func TestValidateDetectsCycles(t *testing.T) {
	ds := newTestDataset()
	r := newTestRegistry(ds)

	if err := r.Register(gasField("a"), readField(gasField("b")), model.SamplingCell, FieldOptions{}); err != nil {
		t.Fatalf("Register a: %v", err)
	}
	if err := r.Register(gasField("b"), readField(gasField("a")), model.SamplingCell, FieldOptions{}); err != nil {
		t.Fatalf("Register b: %v", err)
	}

	if _, _, err := r.Validate(nil, Strict); !errors.Is(err, ErrCircularDependency) {
		t.Fatalf("Validate error = %v, want ErrCircularDependency", err)
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	ds := newTestDataset(gasField("density"))
	r := newTestRegistry(ds)

	if err := r.Register(gasField("ok"), readField(gasField("density")), model.SamplingCell, FieldOptions{}); err != nil {
		t.Fatalf("Register ok: %v", err)
	}
	if err := r.Register(gasField("gone"), readField(gasField("pressure")), model.SamplingCell, FieldOptions{}); err != nil {
		t.Fatalf("Register gone: %v", err)
	}

	first, firstUnavailable, err := r.Validate(nil, Lenient)
	if err != nil {
		t.Fatalf("first Validate: %v", err)
	}
	second, secondUnavailable, err := r.Validate(nil, Lenient)
	if err != nil {
		t.Fatalf("second Validate: %v", err)
	}

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("deps across runs = %d then %d, want 1 and 1", len(first), len(second))
	}
	if len(firstUnavailable) != 1 || len(secondUnavailable) != 0 {
		t.Fatalf("unavailable across runs = %v then %v, want pruning only once",
			firstUnavailable, secondUnavailable)
	}
	if len(ds.DerivedFieldList) != 1 {
		t.Fatalf("DerivedFieldList grew across runs: %v", ds.DerivedFieldList)
	}
}

func TestValidateExplicitListToleratesDuplicates(t *testing.T) {
	ds := newTestDataset(gasField("density"))
	r := newTestRegistry(ds)

	if err := r.Register(gasField("gone"), readField(gasField("pressure")), model.SamplingCell, FieldOptions{}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, unavailable, err := r.Validate([]model.FieldName{
		gasField("gone"),
		gasField("gone"), // second entry sees the field already pruned
	}, Lenient)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(unavailable) != 1 {
		t.Fatalf("unavailable = %v, want single entry", unavailable)
	}
}
