package core

import (
	"github.com/simfoundry/fieldkit/model"
	"github.com/simfoundry/fieldkit/units"
)

func gasField(name string) model.FieldName {
	return model.FieldName{Type: "gas", Name: name}
}

func ioField(name string) model.FieldName {
	return model.FieldName{Type: "io", Name: name}
}

func newTestDataset(onDisk ...model.FieldName) *model.Dataset {
	ds := &model.Dataset{
		Name:             "test-ds",
		Geometry:         model.GeometryCartesian,
		AxisOrder:        [3]string{"x", "y", "z"},
		DefaultFluidType: "gas",
		FluidTypes:       []string{"gas", "index"},
		ParticleTypes:    []string{"io", "all"},
		ParticleTypesRaw: []string{"io"},
		FieldUnits:       make(map[model.FieldName]string),
		FieldUnitsByName: make(map[string]string),
		UnitSystem:       units.CGS(),
		Parameters:       make(map[string]float64),
	}
	ds.SetOnDiskFields(onDisk)
	return ds
}

func newTestRegistry(ds *model.Dataset) *FieldRegistry {
	return NewFieldRegistry(ds, RegistryConfig{Name: "test"})
}

// stubSource is a DataSource with canned values, for exercising compute
// functions outside of dependency discovery.
type stubSource struct {
	ds     *model.Dataset
	values map[model.FieldName]Array
}

func (s *stubSource) Dataset() *model.Dataset { return s.ds }

func (s *stubSource) FieldValue(name model.FieldName) (Array, error) {
	if v, ok := s.values[name]; ok {
		return v, nil
	}
	return nil, ErrFieldNotFound
}

// constantField builds a compute function that reads nothing and returns a
// constant block, so its dependency set is empty.
func constantField(value float64) ComputeFunc {
	return func(_ *FieldDefinition, _ DataSource) (Array, error) {
		return Array{value}, nil
	}
}

// readField builds a compute function that reads exactly one other field.
func readField(source model.FieldName) ComputeFunc {
	return func(_ *FieldDefinition, data DataSource) (Array, error) {
		return data.FieldValue(source)
	}
}
