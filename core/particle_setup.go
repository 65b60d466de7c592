package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/simfoundry/fieldkit/model"
)

// axisSuffixes are the Cartesian component suffixes of particle vectors.
var axisSuffixes = [3]string{"x", "y", "z"}

// sphWhitelist names the fields eligible for smoothed fluid-view aliases on
// SPH particle types, beyond anything already prefixed "particle_".
var sphWhitelist = map[string]struct{}{
	"density":          {},
	"temperature":      {},
	"metallicity":      {},
	"thermal_energy":   {},
	"smoothing_length": {},
	"mass":             {},
	"pressure":         {},
	"entropy":          {},
	"H_fraction":       {},
	"He_fraction":      {},
}

// unionSkipOutputUnits lists units that are never rewritten into the dataset
// unit system when inferring particle output units.
var unionSkipOutputUnits = map[string]struct{}{
	"code_length": {},
}

// UnionField declares an extra union field to synthesise across all raw
// particle types (see SetupExtraUnionFields).
type UnionField struct {
	Units string
	Name  string
}

// SetupParticleFields registers species-specific fields for ptype from the
// known-particle-field catalog, derives the standard vector kinematics
// (position, velocity) from whichever representation storage provides,
// attaches deposition and standard particle fields, sweeps leftover on-disk
// particle fields into bare passthroughs, and finally generates SPH smoothed
// fluid-view aliases when the species supports them.
func (r *FieldRegistry) SetupParticleFields(ptype, ftype string, numNeighbors int) error {
	if r.ds == nil {
		return nil
	}

	for _, name := range r.particleCatalog.Names() {
		entry := r.particleCatalog[name]
		field := model.FieldName{Type: ptype, Name: name}

		fieldUnits := entry.Units
		if u, ok := r.ds.FieldUnits[field]; ok {
			fieldUnits = u
		}
		outputUnits := fieldUnits
		if r.shouldInferOutputUnits(ptype, name, entry.Aliases, fieldUnits) {
			outputUnits = r.preferredUnits(fieldUnits)
		}

		if !r.ds.HasOnDisk(field) {
			continue
		}
		if err := r.RegisterPassthrough(field, model.SamplingParticle, FieldOptions{
			Units:       fieldUnits,
			OutputUnits: outputUnits,
			DisplayName: entry.DisplayName,
		}); err != nil {
			return err
		}
		for _, alias := range entry.Aliases {
			if err := r.Alias(model.FieldName{Type: ptype, Name: alias}, field, outputUnits); err != nil {
				return err
			}
		}
	}

	// Storage gives us either combined 3-vector position/velocity fields or
	// three scalar axis fields; derive whichever form is missing.
	posVector := model.FieldName{Type: ptype, Name: "particle_position"}
	_, aliased := r.IsAlias(posVector)
	if r.ds.HasOnDisk(posVector) || aliased {
		if err := r.particleScalarFields(ptype, "particle_position", "particle_velocity"); err != nil {
			return err
		}
	} else {
		// A stale passthrough vector (e.g. injected by a known-field catalog
		// that the dataset does not actually satisfy) would shadow the
		// derived replacement; drop it first.
		if fd, ok := r.defs[posVector]; ok && fd.OnDisk() {
			r.remove(posVector)
		}
		if err := r.particleVectorFields(ptype, "particle_position", "particle_velocity"); err != nil {
			return err
		}
	}

	if err := r.particleDepositionFields(ptype, "particle_position", "particle_mass"); err != nil {
		return err
	}
	if err := r.standardParticleFields(ptype); err != nil {
		return err
	}

	// Any on-disk particle field nothing claimed so far is still registered
	// as a bare passthrough so it is not silently dropped.
	for _, field := range r.ds.OnDiskFields() {
		if r.Contains(field) {
			continue
		}
		if field.Name == "" {
			return fmt.Errorf("%w: on-disk field %s", ErrMalformedName, field)
		}
		if !r.ds.IsParticleType(field.Type) {
			continue
		}
		if err := r.RegisterPassthrough(field, model.SamplingParticle, FieldOptions{
			Units: r.ds.UnitOverride(field, ""),
		}); err != nil {
			return err
		}
	}

	return r.SetupSmoothedFields(ptype, numNeighbors, ftype)
}

// shouldInferOutputUnits decides whether a catalog field's output units are
// rewritten into the dataset unit system: either the field name doubles as
// one of its own aliases, or ptype is a union type absent from the raw
// particle list. Units on the skip list stay as declared.
func (r *FieldRegistry) shouldInferOutputUnits(ptype, name string, aliases []string, fieldUnits string) bool {
	if _, skip := unionSkipOutputUnits[fieldUnits]; skip {
		return false
	}
	raw := false
	for _, pt := range r.ds.ParticleTypesRaw {
		if pt == ptype {
			raw = true
			break
		}
	}
	if !raw {
		return true
	}
	for _, alias := range aliases {
		if alias == name {
			return true
		}
	}
	return false
}

// particleScalarFields derives per-axis scalar fields from combined 3-vector
// position and velocity fields.
func (r *FieldRegistry) particleScalarFields(ptype, posName, velName string) error {
	for _, spec := range []struct {
		vector string
		units  string
	}{
		{posName, "code_length"},
		{velName, "cm/s"},
	} {
		source := model.FieldName{Type: ptype, Name: spec.vector}
		for axis, suffix := range axisSuffixes {
			component := axis
			name := model.FieldName{Type: ptype, Name: spec.vector + "_" + suffix}
			fn := func(fd *FieldDefinition, data DataSource) (Array, error) {
				vec, err := data.FieldValue(source)
				if err != nil {
					return nil, err
				}
				return componentSlice(vec, component), nil
			}
			if err := r.Register(name, fn, model.SamplingParticle, FieldOptions{Units: spec.units}); err != nil {
				return err
			}
		}
	}
	return nil
}

// particleVectorFields synthesises combined 3-vector position and velocity
// fields from three scalar axis fields.
func (r *FieldRegistry) particleVectorFields(ptype, posName, velName string) error {
	for _, spec := range []struct {
		vector string
		units  string
	}{
		{posName, "code_length"},
		{velName, "cm/s"},
	} {
		components := make([]model.FieldName, 3)
		for axis, suffix := range axisSuffixes {
			components[axis] = model.FieldName{Type: ptype, Name: spec.vector + "_" + suffix}
		}
		comps := components
		fn := func(fd *FieldDefinition, data DataSource) (Array, error) {
			var out Array
			for _, c := range comps {
				values, err := data.FieldValue(c)
				if err != nil {
					return nil, err
				}
				out = append(out, values...)
			}
			return out, nil
		}
		name := model.FieldName{Type: ptype, Name: spec.vector}
		if err := r.Register(name, fn, model.SamplingParticle, FieldOptions{Units: spec.units}); err != nil {
			return err
		}
	}
	return nil
}

// particleDepositionFields registers the mass-deposition fields under the
// "deposit" pseudo-type: particle counts, deposited mass, and deposited
// density per cell.
func (r *FieldRegistry) particleDepositionFields(ptype, posName, massName string) error {
	position := model.FieldName{Type: ptype, Name: posName}
	mass := model.FieldName{Type: ptype, Name: massName}

	count := func(fd *FieldDefinition, data DataSource) (Array, error) {
		pos, err := data.FieldValue(position)
		if err != nil {
			return nil, err
		}
		out := make(Array, len(pos))
		for i := range out {
			out[i] = 1
		}
		return out, nil
	}
	if err := r.Register(model.FieldName{Type: "deposit", Name: ptype + "_count"}, count, model.SamplingCell, FieldOptions{
		DisplayName: ptype + " Count",
	}); err != nil {
		return err
	}

	deposited := func(fd *FieldDefinition, data DataSource) (Array, error) {
		if _, err := data.FieldValue(position); err != nil {
			return nil, err
		}
		return data.FieldValue(mass)
	}
	if err := r.Register(model.FieldName{Type: "deposit", Name: ptype + "_mass"}, deposited, model.SamplingCell, FieldOptions{
		Units:       "g",
		DisplayName: ptype + " Mass",
	}); err != nil {
		return err
	}
	return r.Register(model.FieldName{Type: "deposit", Name: ptype + "_density"}, deposited, model.SamplingCell, FieldOptions{
		Units:       "g/cm**3",
		DisplayName: ptype + " Density",
	})
}

// standardParticleFields attaches the generic per-species fields every
// particle type gets regardless of storage contents.
func (r *FieldRegistry) standardParticleFields(ptype string) error {
	ones := func(fd *FieldDefinition, data DataSource) (Array, error) {
		return onesArray(), nil
	}
	if err := r.Register(model.FieldName{Type: ptype, Name: "particle_ones"}, ones, model.SamplingParticle, FieldOptions{
		DisplayName: "Ones",
	}); err != nil {
		return err
	}

	velocity := model.FieldName{Type: ptype, Name: "particle_velocity"}
	speed := func(fd *FieldDefinition, data DataSource) (Array, error) {
		vec, err := data.FieldValue(velocity)
		if err != nil {
			return nil, err
		}
		n := len(vec) / 3
		if n == 0 {
			return Array{}, nil
		}
		out := make(Array, n)
		for i := 0; i < n; i++ {
			x, y, z := vec[i], vec[n+i], vec[2*n+i]
			out[i] = math.Sqrt(x*x + y*y + z*z)
		}
		return out, nil
	}
	return r.Register(model.FieldName{Type: ptype, Name: "particle_speed"}, speed, model.SamplingParticle, FieldOptions{
		Units:       "cm/s",
		DisplayName: "Particle Speed",
	})
}

// SetupSmoothedFields generates fluid-view aliases for an SPH particle type:
// whitelisted (or particle_-prefixed) species fields are re-exposed, with
// their particle prefixes stripped, under both the requested fluid type and
// the particle type itself. Species without a density field, or without SPH
// smoothing data, get nothing.
func (r *FieldRegistry) SetupSmoothedFields(ptype string, numNeighbors int, ftype string) error {
	if !r.Contains(model.FieldName{Type: ptype, Name: "density"}) {
		return nil
	}
	if r.ds == nil || !r.ds.IsSPHParticleType(ptype) {
		return nil
	}

	for _, field := range r.localNames() {
		if field.Type != ptype {
			continue
		}
		if _, listed := sphWhitelist[field.Name]; !listed && !strings.HasPrefix(field.Name, "particle_") {
			continue
		}

		uniName := field.Name
		if strings.Contains(uniName, "particle_position_") {
			uniName = strings.Replace(uniName, "particle_position_", "", 1)
		} else if strings.Contains(uniName, "particle_") {
			uniName = strings.Replace(uniName, "particle_", "", 1)
		}

		if err := r.Alias(model.FieldName{Type: ftype, Name: uniName}, field, ""); err != nil {
			return err
		}
		if err := r.Alias(model.FieldName{Type: ptype, Name: uniName}, field, ""); err != nil {
			return err
		}
	}
	return nil
}

// SetupExtraUnionFields synthesises union fields across every raw particle
// type. Only the "all" union supports this.
func (r *FieldRegistry) SetupExtraUnionFields(ptype string, fields []UnionField) error {
	if ptype != "all" {
		return fmt.Errorf("extra union fields are only supported for particle type \"all\", got %q", ptype)
	}
	if r.ds == nil {
		return nil
	}
	for _, uf := range fields {
		if err := r.addUnionField(ptype, uf.Name, uf.Units); err != nil {
			return err
		}
	}
	return nil
}

// addUnionField registers a derived field that concatenates the per-species
// instances of fname across all raw particle types.
func (r *FieldRegistry) addUnionField(ptype, fname, fieldUnits string) error {
	raw := make([]model.FieldName, 0, len(r.ds.ParticleTypesRaw))
	for _, pt := range r.ds.ParticleTypesRaw {
		raw = append(raw, model.FieldName{Type: pt, Name: fname})
	}
	fn := func(fd *FieldDefinition, data DataSource) (Array, error) {
		var out Array
		for _, f := range raw {
			values, err := data.FieldValue(f)
			if err != nil {
				return nil, err
			}
			out = append(out, values...)
		}
		return out, nil
	}
	return r.Register(model.FieldName{Type: ptype, Name: fname}, fn, model.SamplingParticle, FieldOptions{
		Units: fieldUnits,
	})
}

// componentSlice extracts one axis of a flat 3-vector block laid out as
// [x... y... z...]. Arrays shorter than three components pass through.
func componentSlice(vec Array, axis int) Array {
	n := len(vec) / 3
	if n == 0 {
		return vec
	}
	out := make(Array, n)
	copy(out, vec[axis*n:(axis+1)*n])
	return out
}
