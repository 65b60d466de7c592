package model

import (
	"github.com/simfoundry/fieldkit/units"
)

// Geometry names the coordinate system a dataset is discretised in.
type Geometry string

const (
	GeometryCartesian   Geometry = "cartesian"
	GeometryCylindrical Geometry = "cylindrical"
	GeometrySpherical   Geometry = "spherical"
	GeometryGeographic  Geometry = "geographic"
)

// Curvilinear reports whether vector components are expressed along curved
// coordinate axes rather than Cartesian x/y/z.
func (g Geometry) Curvilinear() bool {
	switch g {
	case GeometryCylindrical, GeometrySpherical, GeometryGeographic:
		return true
	default:
		return false
	}
}

// Dataset carries the per-dataset facts the field registry consumes: which
// fields exist on disk, how element types are organised, the coordinate
// geometry, and unit overrides. It also receives the registry's published
// outputs (DerivedFieldList, FieldDependencies) after validation.
//
// A Dataset is mutated only by its owning registry chain during setup and is
// read-mostly afterwards; there is no internal locking.
type Dataset struct {
	Name string

	Geometry  Geometry
	AxisOrder [3]string

	DefaultFluidType string
	FluidTypes       []string
	ParticleTypes    []string
	// ParticleTypesRaw is the subset of particle types actually present in
	// storage (excluding unions such as "all").
	ParticleTypesRaw []string
	// SPHParticleTypes lists particle types that carry SPH smoothing data
	// and therefore admit smoothed fluid-view aliases.
	SPHParticleTypes []string

	// FieldUnits overrides catalog units per identity; FieldUnitsByName
	// overrides per bare name. Values may be plain unit strings or bare
	// numeric multipliers (as strings).
	FieldUnits       map[FieldName]string
	FieldUnitsByName map[string]string

	UnitSystem units.System

	// Parameters holds scalar dataset parameters consulted by validators.
	Parameters map[string]float64

	// Published by the dependency validator.
	DerivedFieldList  []FieldName
	FieldDependencies map[FieldName][]FieldName

	onDiskFields []FieldName
	onDiskSet    map[FieldName]struct{}
}

// SetOnDiskFields installs the raw on-disk field list and rebuilds the
// membership index.
func (ds *Dataset) SetOnDiskFields(fields []FieldName) {
	ds.onDiskFields = make([]FieldName, len(fields))
	copy(ds.onDiskFields, fields)
	ds.onDiskSet = make(map[FieldName]struct{}, len(fields))
	for _, f := range fields {
		ds.onDiskSet[f] = struct{}{}
	}
}

// OnDiskFields returns the raw on-disk field list in sorted order.
func (ds *Dataset) OnDiskFields() []FieldName {
	out := make([]FieldName, len(ds.onDiskFields))
	copy(out, ds.onDiskFields)
	SortFieldNames(out)
	return out
}

// HasOnDisk reports whether the identity is present verbatim in storage.
func (ds *Dataset) HasOnDisk(f FieldName) bool {
	_, ok := ds.onDiskSet[f]
	return ok
}

// IsParticleType reports whether the element type names a particle species
// (or a particle union).
func (ds *Dataset) IsParticleType(ftype string) bool {
	for _, pt := range ds.ParticleTypes {
		if pt == ftype {
			return true
		}
	}
	return false
}

// IsSPHParticleType reports whether the species carries SPH smoothing data.
func (ds *Dataset) IsSPHParticleType(ptype string) bool {
	for _, pt := range ds.SPHParticleTypes {
		if pt == ptype {
			return true
		}
	}
	return false
}

// UnitOverride resolves the dataset's unit override for an on-disk field.
// Per-name overrides take precedence over per-identity ones; the fallback
// value is returned unchanged when neither is set.
func (ds *Dataset) UnitOverride(f FieldName, fallback string) string {
	if u, ok := ds.FieldUnitsByName[f.Name]; ok {
		return u
	}
	if u, ok := ds.FieldUnits[f]; ok {
		return u
	}
	return fallback
}

// MergeDerivedFields unions the given identities into DerivedFieldList,
// keeping it sorted and free of duplicates.
func (ds *Dataset) MergeDerivedFields(fields []FieldName) {
	seen := make(map[FieldName]struct{}, len(ds.DerivedFieldList)+len(fields))
	merged := make([]FieldName, 0, len(ds.DerivedFieldList)+len(fields))
	for _, f := range ds.DerivedFieldList {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		merged = append(merged, f)
	}
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		merged = append(merged, f)
	}
	SortFieldNames(merged)
	ds.DerivedFieldList = merged
}
