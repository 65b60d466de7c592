package plugins

import (
	"math"

	"github.com/simfoundry/fieldkit/core"
	"github.com/simfoundry/fieldkit/model"
	"github.com/simfoundry/fieldkit/units"
)

func init() {
	core.RegisterPlugin("magnetic_fields", setupMagneticFields)
}

// setupMagneticFields registers MHD derived fields. On datasets without
// on-disk magnetic field components both fields are pruned by validation;
// that is the expected outcome for pure-hydro data, not an error.
func setupMagneticFields(reg *core.FieldRegistry, ftype string, _ *core.SliceInfo) error {
	fieldMagnitude := func(fd *core.FieldDefinition, data core.DataSource) (core.Array, error) {
		vec, err := fieldVec(data, fd.Name.Type, "magnetic_field")
		if err != nil {
			return nil, err
		}
		return magnitude(vec), nil
	}
	if err := reg.Register(model.FieldName{Type: ftype, Name: "magnetic_field_magnitude"},
		fieldMagnitude, model.SamplingCell, core.FieldOptions{
			Units:       preferred(reg, units.MagneticField, "gauss"),
			DisplayName: "Magnetic Field Magnitude",
		}); err != nil {
		return err
	}

	// B**2 / 8pi, in Gaussian convention.
	magneticEnergy := func(fd *core.FieldDefinition, data core.DataSource) (core.Array, error) {
		vec, err := fieldVec(data, fd.Name.Type, "magnetic_field")
		if err != nil {
			return nil, err
		}
		out := make(core.Array, len(vec[0]))
		for i := range out {
			x, y, z := at(vec[0], i), at(vec[1], i), at(vec[2], i)
			out[i] = (x*x + y*y + z*z) / (8 * math.Pi)
		}
		return out, nil
	}
	return reg.Register(model.FieldName{Type: ftype, Name: "magnetic_energy_density"},
		magneticEnergy, model.SamplingCell, core.FieldOptions{
			Units:       preferred(reg, units.EnergyDensity, "erg/cm**3"),
			DisplayName: "Magnetic Energy Density",
		})
}
