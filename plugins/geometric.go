package plugins

import (
	"github.com/simfoundry/fieldkit/core"
	"github.com/simfoundry/fieldkit/model"
	"github.com/simfoundry/fieldkit/units"
)

func init() {
	core.RegisterPlugin("geometric_fields", setupGeometricFields)
}

// setupGeometricFields registers the "index" pseudo-type fields. They read no
// field data, so their dependency sets are empty and they survive validation
// on every dataset. Results are length-1 arrays, broadcast by consumers.
func setupGeometricFields(reg *core.FieldRegistry, _ string, _ *core.SliceInfo) error {
	ones := func(_ *core.FieldDefinition, _ core.DataSource) (core.Array, error) {
		return core.Array{1}, nil
	}
	if err := reg.Register(model.FieldName{Type: "index", Name: "ones"},
		ones, model.SamplingCell, core.FieldOptions{DisplayName: "Ones"}); err != nil {
		return err
	}

	zeros := func(_ *core.FieldDefinition, _ core.DataSource) (core.Array, error) {
		return core.Array{0}, nil
	}
	if err := reg.Register(model.FieldName{Type: "index", Name: "zeros"},
		zeros, model.SamplingCell, core.FieldOptions{DisplayName: "Zeros"}); err != nil {
		return err
	}

	// Uniform-grid cell volume from the dataset's spacing parameters; missing
	// spacings default to unit code length.
	cellVolume := func(_ *core.FieldDefinition, data core.DataSource) (core.Array, error) {
		volume := 1.0
		if ds := data.Dataset(); ds != nil {
			for _, p := range []string{"dx", "dy", "dz"} {
				if d, ok := ds.Parameters[p]; ok {
					volume *= d
				}
			}
		}
		return core.Array{volume}, nil
	}
	return reg.Register(model.FieldName{Type: "index", Name: "cell_volume"},
		cellVolume, model.SamplingCell, core.FieldOptions{
			Units:       preferred(reg, units.Volume, "cm**3"),
			DisplayName: "Cell Volume",
		})
}
