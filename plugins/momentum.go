package plugins

import (
	"github.com/simfoundry/fieldkit/core"
	"github.com/simfoundry/fieldkit/model"
	"github.com/simfoundry/fieldkit/units"
)

func init() {
	core.RegisterPlugin("momentum_fields", setupMomentumFields)
}

// setupMomentumFields registers the momentum-density components and their
// magnitude. The magnitude reads the derived components, so its dependency
// set collapses to density plus the velocity triple.
func setupMomentumFields(reg *core.FieldRegistry, ftype string, _ *core.SliceInfo) error {
	momentumUnits := preferred(reg, units.MomentumDensity, "g/(cm**2*s)")

	for _, ax := range axes {
		ax := ax
		component := func(fd *core.FieldDefinition, data core.DataSource) (core.Array, error) {
			rho, err := data.FieldValue(model.FieldName{Type: fd.Name.Type, Name: "density"})
			if err != nil {
				return nil, err
			}
			v, err := data.FieldValue(model.FieldName{Type: fd.Name.Type, Name: "velocity_" + ax})
			if err != nil {
				return nil, err
			}
			out := make(core.Array, len(rho))
			for i := range out {
				out[i] = rho[i] * at(v, i)
			}
			return out, nil
		}
		if err := reg.Register(model.FieldName{Type: ftype, Name: "momentum_density_" + ax},
			component, model.SamplingCell, core.FieldOptions{
				Units: momentumUnits,
			}); err != nil {
			return err
		}
	}

	momentumMagnitude := func(fd *core.FieldDefinition, data core.DataSource) (core.Array, error) {
		vec, err := fieldVec(data, fd.Name.Type, "momentum_density")
		if err != nil {
			return nil, err
		}
		return magnitude(vec), nil
	}
	return reg.Register(model.FieldName{Type: ftype, Name: "momentum_density_magnitude"},
		momentumMagnitude, model.SamplingCell, core.FieldOptions{
			Units:       momentumUnits,
			DisplayName: "Momentum Density Magnitude",
		})
}
