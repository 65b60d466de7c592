package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/simfoundry/fieldkit/model"
	"github.com/simfoundry/fieldkit/units"
)

// internal JSON shapes – kept unexported so the descriptor format can evolve
// without touching the model types.
type datasetDescriptorJSON struct {
	Name             string             `json:"name"`
	Geometry         string             `json:"geometry"`           // "cartesian" | "cylindrical" | "spherical" | "geographic"
	AxisOrder        []string           `json:"axis_order"`         // optional; defaults per geometry
	UnitSystem       string             `json:"unit_system"`        // "cgs" | "mks"
	DefaultFluidType string             `json:"default_fluid_type"` // defaults to "gas"
	FluidTypes       []string           `json:"fluid_types"`
	ParticleTypes    []string           `json:"particle_types"`
	ParticleTypesRaw []string           `json:"particle_types_raw"`
	SPHParticleTypes []string           `json:"sph_particle_types"`
	OnDiskFields     []fieldNameJSON    `json:"on_disk_fields"`
	FieldUnits       []fieldUnitJSON    `json:"field_units"`
	FieldUnitsByName map[string]string  `json:"field_units_by_name"`
	Parameters       map[string]float64 `json:"parameters"`
}

type fieldNameJSON struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type fieldUnitJSON struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Units string `json:"units"`
}

// LoadDatasetDescriptor reads a JSON dataset descriptor from r and builds
// the Dataset the registry chain is constructed against.
//
// It deliberately fails only on JSON / structural errors (unknown geometry,
// unknown unit system, empty field names). Content-level oddities are left
// for the registry's own invariants to handle.
func LoadDatasetDescriptor(r io.Reader) (*model.Dataset, error) {
	var payload datasetDescriptorJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadDatasetDescriptor: decode failed: %w", err)
	}

	geometry, err := geometryFromString(payload.Geometry)
	if err != nil {
		return nil, fmt.Errorf("LoadDatasetDescriptor: %w", err)
	}

	system, err := units.BySystemName(payload.UnitSystem)
	if err != nil {
		return nil, fmt.Errorf("LoadDatasetDescriptor: %w", err)
	}

	ds := &model.Dataset{
		Name:             payload.Name,
		Geometry:         geometry,
		AxisOrder:        axisOrderFor(geometry, payload.AxisOrder),
		DefaultFluidType: payload.DefaultFluidType,
		FluidTypes:       payload.FluidTypes,
		ParticleTypes:    payload.ParticleTypes,
		ParticleTypesRaw: payload.ParticleTypesRaw,
		SPHParticleTypes: payload.SPHParticleTypes,
		FieldUnits:       make(map[model.FieldName]string, len(payload.FieldUnits)),
		FieldUnitsByName: payload.FieldUnitsByName,
		UnitSystem:       system,
		Parameters:       payload.Parameters,
	}
	if ds.DefaultFluidType == "" {
		ds.DefaultFluidType = "gas"
	}
	if len(ds.FluidTypes) == 0 {
		ds.FluidTypes = []string{ds.DefaultFluidType, "index"}
	}

	onDisk := make([]model.FieldName, 0, len(payload.OnDiskFields))
	for _, f := range payload.OnDiskFields {
		if f.Name == "" {
			return nil, fmt.Errorf("LoadDatasetDescriptor: on-disk field with empty name")
		}
		ftype := f.Type
		if ftype == "" {
			ftype = ds.DefaultFluidType
		}
		onDisk = append(onDisk, model.FieldName{Type: ftype, Name: f.Name})
	}
	ds.SetOnDiskFields(onDisk)

	for _, fu := range payload.FieldUnits {
		if fu.Name == "" {
			return nil, fmt.Errorf("LoadDatasetDescriptor: field unit override with empty name")
		}
		ds.FieldUnits[model.FieldName{Type: fu.Type, Name: fu.Name}] = fu.Units
	}

	return ds, nil
}

// LoadDatasetDescriptorFile is LoadDatasetDescriptor over a file path.
func LoadDatasetDescriptorFile(path string) (*model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadDatasetDescriptorFile: %w", err)
	}
	defer f.Close()
	return LoadDatasetDescriptor(f)
}

// geometryFromString maps the JSON "geometry" string to Geometry constants.
// Empty means Cartesian; anything unknown is a structural error rather than
// a silent default, since the curvilinear alias policy depends on it.
func geometryFromString(s string) (model.Geometry, error) {
	switch model.Geometry(s) {
	case "", model.GeometryCartesian:
		return model.GeometryCartesian, nil
	case model.GeometryCylindrical:
		return model.GeometryCylindrical, nil
	case model.GeometrySpherical:
		return model.GeometrySpherical, nil
	case model.GeometryGeographic:
		return model.GeometryGeographic, nil
	default:
		return model.GeometryCartesian, fmt.Errorf("unknown geometry %q", s)
	}
}

// axisOrderFor fills in the conventional axis ordering when the descriptor
// does not specify one.
func axisOrderFor(geometry model.Geometry, order []string) [3]string {
	if len(order) == 3 {
		return [3]string{order[0], order[1], order[2]}
	}
	switch geometry {
	case model.GeometryCylindrical:
		return [3]string{"r", "z", "theta"}
	case model.GeometrySpherical:
		return [3]string{"r", "theta", "phi"}
	case model.GeometryGeographic:
		return [3]string{"latitude", "longitude", "altitude"}
	default:
		return [3]string{"x", "y", "z"}
	}
}
