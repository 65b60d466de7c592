package plugins

import (
	"math"

	"github.com/simfoundry/fieldkit/core"
	"github.com/simfoundry/fieldkit/model"
	"github.com/simfoundry/fieldkit/units"
)

func init() {
	core.RegisterPlugin("fluid_fields", setupFluidFields)
}

// setupFluidFields registers the basic hydrodynamic derived fields: velocity
// magnitude, kinetic energy density, cell mass, and the adiabatic sound
// speed. The sound speed additionally needs the dataset's "gamma" parameter.
func setupFluidFields(reg *core.FieldRegistry, ftype string, _ *core.SliceInfo) error {
	velocityMagnitude := func(fd *core.FieldDefinition, data core.DataSource) (core.Array, error) {
		vec, err := fieldVec(data, fd.Name.Type, "velocity")
		if err != nil {
			return nil, err
		}
		return magnitude(vec), nil
	}
	if err := reg.Register(model.FieldName{Type: ftype, Name: "velocity_magnitude"},
		velocityMagnitude, model.SamplingCell, core.FieldOptions{
			Units:       preferred(reg, units.Velocity, "cm/s"),
			DisplayName: "Velocity Magnitude",
		}); err != nil {
		return err
	}

	kineticEnergy := func(fd *core.FieldDefinition, data core.DataSource) (core.Array, error) {
		rho, err := data.FieldValue(model.FieldName{Type: fd.Name.Type, Name: "density"})
		if err != nil {
			return nil, err
		}
		vec, err := fieldVec(data, fd.Name.Type, "velocity")
		if err != nil {
			return nil, err
		}
		out := make(core.Array, len(rho))
		for i := range out {
			x, y, z := at(vec[0], i), at(vec[1], i), at(vec[2], i)
			out[i] = 0.5 * rho[i] * (x*x + y*y + z*z)
		}
		return out, nil
	}
	if err := reg.Register(model.FieldName{Type: ftype, Name: "kinetic_energy_density"},
		kineticEnergy, model.SamplingCell, core.FieldOptions{
			Units:       preferred(reg, units.EnergyDensity, "erg/cm**3"),
			DisplayName: "Kinetic Energy Density",
		}); err != nil {
		return err
	}

	cellMass := func(fd *core.FieldDefinition, data core.DataSource) (core.Array, error) {
		rho, err := data.FieldValue(model.FieldName{Type: fd.Name.Type, Name: "density"})
		if err != nil {
			return nil, err
		}
		vol, err := data.FieldValue(model.FieldName{Type: "index", Name: "cell_volume"})
		if err != nil {
			return nil, err
		}
		out := make(core.Array, len(rho))
		for i := range out {
			out[i] = rho[i] * at(vol, i)
		}
		return out, nil
	}
	if err := reg.Register(model.FieldName{Type: ftype, Name: "cell_mass"},
		cellMass, model.SamplingCell, core.FieldOptions{
			Units:       preferred(reg, units.Mass, "g"),
			DisplayName: "Cell Mass",
		}); err != nil {
		return err
	}

	soundSpeed := func(fd *core.FieldDefinition, data core.DataSource) (core.Array, error) {
		gamma := data.Dataset().Parameters["gamma"]
		p, err := data.FieldValue(model.FieldName{Type: fd.Name.Type, Name: "pressure"})
		if err != nil {
			return nil, err
		}
		rho, err := data.FieldValue(model.FieldName{Type: fd.Name.Type, Name: "density"})
		if err != nil {
			return nil, err
		}
		out := make(core.Array, len(p))
		for i := range out {
			out[i] = math.Sqrt(gamma * p[i] / at(rho, i))
		}
		return out, nil
	}
	return reg.Register(model.FieldName{Type: ftype, Name: "sound_speed"},
		soundSpeed, model.SamplingCell, core.FieldOptions{
			Units:       preferred(reg, units.Velocity, "cm/s"),
			DisplayName: "Sound Speed",
			Validators:  []core.Validator{core.RequireParameter("gamma")},
		})
}
