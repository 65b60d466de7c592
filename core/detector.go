package core

import (
	"fmt"

	"github.com/simfoundry/fieldkit/model"
)

// detectorArrayLen is the size of the dummy arrays handed to compute
// functions during dependency discovery.
const detectorArrayLen = 16

// fieldDetector is the DataSource used for dry-run dependency discovery. It
// never reads real data: on-disk fields are recorded as leaves and answered
// with unit arrays, derived fields recurse through their compute functions
// so multi-hop chains resolve to their on-disk roots.
type fieldDetector struct {
	reg        *FieldRegistry
	requested  map[model.FieldName]struct{}
	inProgress map[model.FieldName]struct{}
}

func newFieldDetector(reg *FieldRegistry) *fieldDetector {
	return &fieldDetector{
		reg:        reg,
		requested:  make(map[model.FieldName]struct{}),
		inProgress: make(map[model.FieldName]struct{}),
	}
}

func (d *fieldDetector) Dataset() *model.Dataset { return d.reg.ds }

func (d *fieldDetector) record(name model.FieldName) {
	d.requested[name] = struct{}{}
}

func (d *fieldDetector) FieldValue(name model.FieldName) (Array, error) {
	name = d.reg.qualify(name)

	fi, err := d.reg.Lookup(name)
	if err != nil {
		// Fields present in storage but never registered still count as
		// satisfiable leaves.
		if d.reg.ds != nil && d.reg.ds.HasOnDisk(name) {
			d.record(name)
			return onesArray(), nil
		}
		return nil, err
	}

	if fi.OnDisk() {
		d.record(name)
		return onesArray(), nil
	}

	if _, busy := d.inProgress[name]; busy {
		return nil, fmt.Errorf("%w: %s", ErrCircularDependency, name)
	}
	d.inProgress[name] = struct{}{}
	defer delete(d.inProgress, name)

	for _, v := range fi.Validators {
		if err := v.Validate(d, fi); err != nil {
			return nil, err
		}
	}
	return fi.Compute(d)
}

// requestedFields returns the recorded leaves as a sorted slice.
func (d *fieldDetector) requestedFields() []model.FieldName {
	out := make([]model.FieldName, 0, len(d.requested))
	for f := range d.requested {
		out = append(out, f)
	}
	model.SortFieldNames(out)
	return out
}

func onesArray() Array {
	arr := make(Array, detectorArrayLen)
	for i := range arr {
		arr[i] = 1
	}
	return arr
}
