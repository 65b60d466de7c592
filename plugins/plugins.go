// Package plugins provides the built-in field population routines. Importing
// the package registers them with the core plugin table; applications apply
// them through FieldRegistry.LoadAllPlugins, which runs them in sorted name
// order and validates the result against the dataset's on-disk fields.
//
// Every routine registers derived fields optimistically: fields whose inputs
// a dataset cannot supply (no pressure, no magnetic field components) are
// pruned by the validator rather than guarded here.
package plugins

import (
	"math"

	"github.com/simfoundry/fieldkit/core"
	"github.com/simfoundry/fieldkit/model"
	"github.com/simfoundry/fieldkit/units"
)

var axes = [3]string{"x", "y", "z"}

// preferred resolves the registry's unit-system preferred representation of a
// dimension, falling back when the registry has no dataset or system.
func preferred(reg *core.FieldRegistry, dim units.Dimension, fallback string) string {
	ds := reg.Dataset()
	if ds == nil || ds.UnitSystem == nil {
		return fallback
	}
	unit, err := ds.UnitSystem.Preferred(dim)
	if err != nil {
		return fallback
	}
	return unit
}

// fieldVec reads the three Cartesian components of a vector field.
func fieldVec(data core.DataSource, ftype, base string) ([3]core.Array, error) {
	var vec [3]core.Array
	for i, ax := range axes {
		v, err := data.FieldValue(model.FieldName{Type: ftype, Name: base + "_" + ax})
		if err != nil {
			return vec, err
		}
		vec[i] = v
	}
	return vec, nil
}

// magnitude computes the elementwise Euclidean norm of a component triple.
func magnitude(vec [3]core.Array) core.Array {
	out := make(core.Array, len(vec[0]))
	for i := range out {
		x, y, z := at(vec[0], i), at(vec[1], i), at(vec[2], i)
		out[i] = math.Sqrt(x*x + y*y + z*z)
	}
	return out
}

// at indexes an array with scalar broadcast: length-1 arrays stand for a
// uniform value across the block.
func at(a core.Array, i int) float64 {
	if len(a) == 1 {
		return a[0]
	}
	return a[i]
}
