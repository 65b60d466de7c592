package core

import (
	"fmt"

	"github.com/simfoundry/fieldkit/model"
)

// Array is a flat block of field values. Dependency discovery runs compute
// functions over small dummy arrays; real data access is out of scope here.
type Array []float64

// DataSource is what compute functions read fields from. During dependency
// discovery the registry substitutes a recording detector; at evaluation
// time the I/O layer supplies a real implementation.
type DataSource interface {
	FieldValue(name model.FieldName) (Array, error)
	Dataset() *model.Dataset
}

// ComputeFunc computes a field's values from a data source. A nil
// ComputeFunc is the passthrough sentinel: the field is backed directly by
// storage and needs no computation.
type ComputeFunc func(fd *FieldDefinition, data DataSource) (Array, error)

// Validator is a dry-run predicate a data source must satisfy before a
// field's compute function can run. Validators participate in dependency
// discovery: any field they touch through the data source is recorded.
type Validator interface {
	Validate(data DataSource, fd *FieldDefinition) error
}

type requireFields struct {
	fields []model.FieldName
}

// RequireFields declares explicit field inputs. During discovery each field
// is touched through the data source so it lands in the requested set.
func RequireFields(fields ...model.FieldName) Validator {
	return &requireFields{fields: fields}
}

func (v *requireFields) Validate(data DataSource, fd *FieldDefinition) error {
	for _, f := range v.fields {
		if _, err := data.FieldValue(f); err != nil {
			return err
		}
	}
	return nil
}

type requireParameter struct {
	name string
}

// RequireParameter demands a scalar dataset parameter (e.g. "gamma") before
// the field can be computed.
func RequireParameter(name string) Validator {
	return &requireParameter{name: name}
}

func (v *requireParameter) Validate(data DataSource, fd *FieldDefinition) error {
	ds := data.Dataset()
	if ds == nil {
		return fmt.Errorf("dataset parameter %q: no dataset attached", v.name)
	}
	if _, ok := ds.Parameters[v.name]; !ok {
		return fmt.Errorf("dataset parameter %q not set", v.name)
	}
	return nil
}

// FieldDefinition is the immutable-after-construction metadata record for a
// registered field. The requested dependency set is computed lazily on the
// first discovery pass and cached.
type FieldDefinition struct {
	Name        model.FieldName
	Sampling    model.SamplingKind
	Units       string
	OutputUnits string
	DisplayName string
	Validators  []Validator

	fn ComputeFunc
	ds *model.Dataset

	requested      []model.FieldName
	depsDiscovered bool
}

// OnDisk reports whether the definition carries the passthrough sentinel,
// i.e. its values come straight from storage.
func (fd *FieldDefinition) OnDisk() bool { return fd.fn == nil }

// Compute runs the field's compute function. Passthrough fields read their
// own identity from the data source.
func (fd *FieldDefinition) Compute(data DataSource) (Array, error) {
	if fd.fn == nil {
		return data.FieldValue(fd.Name)
	}
	return fd.fn(fd, data)
}

// Dataset returns the dataset the definition was registered against (may be
// nil for catalog-less registries such as fallback roots).
func (fd *FieldDefinition) Dataset() *model.Dataset { return fd.ds }

// Dependencies determines the on-disk identities this field transitively
// needs by running its validators and compute function against a recording
// detector. The result is cached; repeat calls return the same set without
// recomputation.
func (fd *FieldDefinition) Dependencies(reg *FieldRegistry) ([]model.FieldName, error) {
	if fd.depsDiscovered {
		return fd.requested, nil
	}

	det := newFieldDetector(reg)
	for _, v := range fd.Validators {
		if err := v.Validate(det, fd); err != nil {
			return nil, err
		}
	}
	if fd.fn == nil {
		det.record(fd.Name)
	} else {
		if _, err := fd.fn(fd, det); err != nil {
			return nil, err
		}
	}

	fd.requested = det.requestedFields()
	fd.depsDiscovered = true
	return fd.requested, nil
}

// TranslationFunc builds the compute function for alias definitions: it
// reads the source field and converts values into the alias's units when the
// two differ. The source's units are captured at alias creation time.
func TranslationFunc(source model.FieldName, sourceUnits string) ComputeFunc {
	return func(fd *FieldDefinition, data DataSource) (Array, error) {
		values, err := data.FieldValue(source)
		if err != nil {
			return nil, err
		}
		ds := data.Dataset()
		if ds == nil || ds.UnitSystem == nil || sourceUnits == fd.Units {
			return values, nil
		}
		// Unresolvable units pass values through unchanged; the registry
		// already warned when it resolved the alias units.
		factor, convErr := ds.UnitSystem.Factor(sourceUnits, fd.Units)
		if convErr != nil || factor == 1.0 {
			return values, nil
		}
		out := make(Array, len(values))
		for i, v := range values {
			out[i] = v * factor
		}
		return out, nil
	}
}
