package core

import (
	"testing"

	"github.com/simfoundry/fieldkit/model"
)

func testParticleCatalog() model.FieldCatalog {
	return model.FieldCatalog{
		"particle_mass": {
			Units:       "code_mass",
			Aliases:     []string{"particle_mass"},
			DisplayName: "Particle Mass",
		},
		"smoothing_length": {Units: "code_length", Aliases: []string{"smoothing_length"}},
		"density":          {Units: "g/cm**3"},
	}
}

func newParticleRegistry(ds *model.Dataset) *FieldRegistry {
	return NewFieldRegistry(ds, RegistryConfig{Name: "particle-test", ParticleCatalog: testParticleCatalog()})
}

func scalarParticleDataset() *model.Dataset {
	return newTestDataset(
		ioField("particle_position_x"),
		ioField("particle_position_y"),
		ioField("particle_position_z"),
		ioField("particle_velocity_x"),
		ioField("particle_velocity_y"),
		ioField("particle_velocity_z"),
		ioField("particle_mass"),
	)
}

func TestParticleVectorFromScalarComponents(t *testing.T) {
	ds := scalarParticleDataset()
	r := newParticleRegistry(ds)

	if err := r.SetupParticleFields("io", "gas", 64); err != nil {
		t.Fatalf("SetupParticleFields: %v", err)
	}

	for _, name := range []string{"particle_position", "particle_velocity"} {
		fd, err := r.Lookup(ioField(name))
		if err != nil {
			t.Fatalf("Lookup %s: %v", name, err)
		}
		if fd.OnDisk() {
			t.Fatalf("%s should be derived from scalar components", name)
		}
		deps, err := fd.Dependencies(r)
		if err != nil {
			t.Fatalf("Dependencies(%s): %v", name, err)
		}
		if len(deps) != 3 {
			t.Fatalf("%s dependencies = %v, want the three scalar components", name, deps)
		}
	}
}

func TestParticleScalarsFromVector(t *testing.T) {
	ds := newTestDataset(
		ioField("particle_position"),
		ioField("particle_velocity"),
		ioField("particle_mass"),
	)
	r := newParticleRegistry(ds)

	if err := r.SetupParticleFields("io", "gas", 64); err != nil {
		t.Fatalf("SetupParticleFields: %v", err)
	}

	fd, err := r.Lookup(ioField("particle_position_x"))
	if err != nil {
		t.Fatalf("Lookup particle_position_x: %v", err)
	}
	deps, err := fd.Dependencies(r)
	if err != nil {
		t.Fatalf("Dependencies: %v", err)
	}
	if len(deps) != 1 || deps[0] != ioField("particle_position") {
		t.Fatalf("scalar component dependencies = %v, want [io particle_position]", deps)
	}

	// Component extraction slices one axis out of the flat 3-vector block.
	data := &stubSource{ds: ds, values: map[model.FieldName]Array{
		ioField("particle_position"): {1, 2, 10, 20, 100, 200},
	}}
	values, err := fd.Compute(data)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(values) != 2 || values[0] != 1 || values[1] != 2 {
		t.Fatalf("x component = %v, want [1 2]", values)
	}
}

func TestParticleDepositionFields(t *testing.T) {
	ds := scalarParticleDataset()
	r := newParticleRegistry(ds)

	if err := r.SetupParticleFields("io", "gas", 64); err != nil {
		t.Fatalf("SetupParticleFields: %v", err)
	}

	for _, name := range []string{"io_count", "io_mass", "io_density"} {
		field := model.FieldName{Type: "deposit", Name: name}
		fd, err := r.Lookup(field)
		if err != nil {
			t.Fatalf("Lookup %s: %v", field, err)
		}
		if fd.Sampling != model.SamplingCell {
			t.Fatalf("%s sampling = %v, want cell", field, fd.Sampling)
		}
	}

	fd, _ := r.Lookup(model.FieldName{Type: "deposit", Name: "io_density"})
	deps, err := fd.Dependencies(r)
	if err != nil {
		t.Fatalf("Dependencies(io_density): %v", err)
	}
	// Position resolves to its scalar components, mass is a direct leaf.
	want := map[model.FieldName]struct{}{
		ioField("particle_position_x"): {},
		ioField("particle_position_y"): {},
		ioField("particle_position_z"): {},
		ioField("particle_mass"):       {},
	}
	if len(deps) != len(want) {
		t.Fatalf("io_density dependencies = %v, want %v", deps, want)
	}
	for _, dep := range deps {
		if _, ok := want[dep]; !ok {
			t.Fatalf("unexpected dependency %s", dep)
		}
	}
}

func TestStandardParticleFields(t *testing.T) {
	ds := scalarParticleDataset()
	r := newParticleRegistry(ds)

	if err := r.SetupParticleFields("io", "gas", 64); err != nil {
		t.Fatalf("SetupParticleFields: %v", err)
	}

	if !r.Contains(ioField("particle_ones")) {
		t.Fatalf("particle_ones missing")
	}

	fd, err := r.Lookup(ioField("particle_speed"))
	if err != nil {
		t.Fatalf("Lookup particle_speed: %v", err)
	}
	data := &stubSource{ds: ds, values: map[model.FieldName]Array{
		ioField("particle_velocity"): {3, 0, 4, 0, 0, 0},
	}}
	values, err := fd.Compute(data)
	if err != nil {
		t.Fatalf("Compute particle_speed: %v", err)
	}
	if len(values) != 2 || values[0] != 5 || values[1] != 0 {
		t.Fatalf("particle_speed = %v, want [5 0]", values)
	}
}

func TestLeftoverOnDiskParticleFieldsSweptIn(t *testing.T) {
	ds := scalarParticleDataset()
	ds.SetOnDiskFields(append(ds.OnDiskFields(), ioField("metallicity")))
	r := newParticleRegistry(ds)

	if err := r.SetupParticleFields("io", "gas", 64); err != nil {
		t.Fatalf("SetupParticleFields: %v", err)
	}

	fd, err := r.Lookup(ioField("metallicity"))
	if err != nil {
		t.Fatalf("uncatalogued on-disk particle field not swept in: %v", err)
	}
	if !fd.OnDisk() {
		t.Fatalf("swept-in field should be a passthrough")
	}
}

func TestSmoothedFieldsRequireSPHAndDensity(t *testing.T) {
	ds := scalarParticleDataset()
	ds.SetOnDiskFields(append(ds.OnDiskFields(), ioField("density")))
	ds.SPHParticleTypes = []string{"io"}
	r := newParticleRegistry(ds)

	if err := r.SetupParticleFields("io", "gas", 64); err != nil {
		t.Fatalf("SetupParticleFields: %v", err)
	}

	// Whitelisted species fields gain fluid-view aliases with their particle
	// prefix stripped, under both the fluid and the particle type.
	if !r.Contains(gasField("density")) {
		t.Fatalf("smoothed density alias missing under fluid type")
	}
	if !r.Contains(gasField("mass")) {
		t.Fatalf("smoothed mass alias missing under fluid type")
	}
	if !r.Contains(ioField("mass")) {
		t.Fatalf("smoothed mass alias missing under particle type")
	}
}

func TestSmoothedFieldsSkippedWithoutSPHData(t *testing.T) {
	ds := scalarParticleDataset()
	ds.SetOnDiskFields(append(ds.OnDiskFields(), ioField("density")))
	ds.SPHParticleTypes = nil
	r := newParticleRegistry(ds)

	if err := r.SetupParticleFields("io", "gas", 64); err != nil {
		t.Fatalf("SetupParticleFields: %v", err)
	}
	if r.Contains(gasField("density")) {
		t.Fatalf("smoothed aliases generated for non-SPH species")
	}
}

func TestSetupExtraUnionFields(t *testing.T) {
	ds := newTestDataset(
		ioField("particle_mass"),
		model.FieldName{Type: "star", Name: "particle_mass"},
	)
	ds.ParticleTypes = []string{"io", "star", "all"}
	ds.ParticleTypesRaw = []string{"io", "star"}
	r := newParticleRegistry(ds)

	if err := r.SetupExtraUnionFields("all", []UnionField{{Units: "g", Name: "particle_mass"}}); err != nil {
		t.Fatalf("SetupExtraUnionFields: %v", err)
	}

	fd, err := r.Lookup(model.FieldName{Type: "all", Name: "particle_mass"})
	if err != nil {
		t.Fatalf("Lookup union field: %v", err)
	}
	deps, err := fd.Dependencies(r)
	if err != nil {
		t.Fatalf("Dependencies: %v", err)
	}
	if len(deps) != 2 {
		t.Fatalf("union dependencies = %v, want both species", deps)
	}

	if err := r.SetupExtraUnionFields("io", nil); err == nil {
		t.Fatalf("expected error for union fields on a non-\"all\" type")
	}
}

func TestParticleCatalogUnitOverride(t *testing.T) {
	ds := scalarParticleDataset()
	ds.FieldUnits[ioField("particle_mass")] = "g"
	r := newParticleRegistry(ds)

	if err := r.SetupParticleFields("io", "gas", 64); err != nil {
		t.Fatalf("SetupParticleFields: %v", err)
	}

	fd, err := r.Lookup(ioField("particle_mass"))
	if err != nil {
		t.Fatalf("Lookup particle_mass: %v", err)
	}
	if fd.Units != "g" {
		t.Fatalf("per-identity unit override ignored: units = %q", fd.Units)
	}
}
