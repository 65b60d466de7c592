package core

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/simfoundry/fieldkit/internal/logging"
	"github.com/simfoundry/fieldkit/model"
)

// SetupFluidAliases registers every cell-sampled on-disk field as a
// passthrough with catalog metadata attached, then exposes its declared
// aliases under ftype. On curvilinear datasets, Cartesian-suffixed vector
// aliases are remapped to the dataset's axis names, but only when the full
// x/y/z triple is declared; partial triples are left untouched.
func (r *FieldRegistry) SetupFluidAliases(ftype string) error {
	if r.ds == nil {
		return nil
	}

	gallery := r.aliasGallery()

	for _, field := range r.ds.OnDiskFields() {
		if field.Name == "" {
			return fmt.Errorf("%w: on-disk field %s", ErrMalformedName, field)
		}
		if r.ds.IsParticleType(field.Type) {
			continue
		}

		entry := r.fluidCatalog.Lookup(field.Name)
		resolved := r.resolveFluidUnits(field, entry.Units)

		if err := r.RegisterPassthrough(field, model.SamplingCell, FieldOptions{
			Units:       resolved,
			DisplayName: entry.DisplayName,
		}); err != nil {
			return err
		}

		for _, alias := range entry.Aliases {
			alias = r.remapVectorAlias(alias, gallery)
			if err := r.Alias(model.FieldName{Type: ftype, Name: alias}, field, ""); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetupFluidIndexFields aliases every field registered under the "index"
// pseudo-type into each other fluid type, so geometric quantities (cell
// volume, coordinates) are reachable under any fluid type name without
// duplicating their computation.
func (r *FieldRegistry) SetupFluidIndexFields() error {
	if r.ds == nil {
		return nil
	}

	indexNames := make(map[string]struct{})
	for _, f := range r.Names() {
		if f.Type == "index" {
			indexNames[f.Name] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(indexNames))
	for name := range indexNames {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	for _, ftype := range r.ds.FluidTypes {
		if ftype == "index" || ftype == "deposit" {
			continue
		}
		for _, name := range sorted {
			target := model.FieldName{Type: ftype, Name: name}
			if r.Contains(target) {
				continue
			}
			if err := r.Alias(target, model.FieldName{Type: "index", Name: name}, ""); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveFluidUnits applies the three-tier unit override for an on-disk
// field: dataset per-name override, then dataset per-identity override, then
// the catalog default. Bare numeric multipliers combine with a non-empty
// catalog unit as "((unit)*k)"; with an empty catalog unit they cannot be
// interpreted and collapse to dimensionless with a warning.
func (r *FieldRegistry) resolveFluidUnits(field model.FieldName, catalogUnits string) string {
	override := r.ds.UnitOverride(field, catalogUnits)
	if override == catalogUnits {
		return catalogUnits
	}

	mult, err := strconv.ParseFloat(strings.TrimSpace(override), 64)
	if err != nil {
		return override
	}
	if mult == 1.0 {
		return ""
	}
	if catalogUnits != "" {
		return fmt.Sprintf("((%s)*%s)", catalogUnits, strings.TrimSpace(override))
	}
	r.log.Warn(context.Background(), "cannot interpret numeric unit override, setting to dimensionless",
		logging.String("field", field.String()),
		logging.String("override", override),
	)
	return ""
}

// aliasGallery pre-collects every alias name declared for the dataset's
// cell-sampled on-disk fields. Only curvilinear geometries need it: the
// gallery gates vector-suffix remapping on complete triples.
func (r *FieldRegistry) aliasGallery() map[string]struct{} {
	gallery := make(map[string]struct{})
	if r.ds == nil || !r.ds.Geometry.Curvilinear() {
		return gallery
	}
	for _, field := range r.ds.OnDiskFields() {
		if r.ds.IsParticleType(field.Type) {
			continue
		}
		for _, alias := range r.fluidCatalog.Lookup(field.Name).Aliases {
			gallery[alias] = struct{}{}
		}
	}
	return gallery
}

// remapVectorAlias rewrites a Cartesian-suffixed alias (_x/_y/_z) to the
// dataset's axis-name suffixes on curvilinear geometries. The remap requires
// all three Cartesian siblings to be present in the gallery; partial vector
// triples must not be silently mis-relabeled.
func (r *FieldRegistry) remapVectorAlias(alias string, gallery map[string]struct{}) string {
	if r.ds == nil || !r.ds.Geometry.Curvilinear() || len(alias) < 2 {
		return alias
	}

	var axis int
	switch alias[len(alias)-2:] {
	case "_x":
		axis = 0
	case "_y":
		axis = 1
	case "_z":
		axis = 2
	default:
		return alias
	}

	base := alias[:len(alias)-2]
	for _, suffix := range []string{"_x", "_y", "_z"} {
		if _, ok := gallery[base+suffix]; !ok {
			return alias
		}
	}
	return base + "_" + r.ds.AxisOrder[axis]
}
