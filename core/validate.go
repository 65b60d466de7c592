package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/simfoundry/fieldkit/internal/logging"
	"github.com/simfoundry/fieldkit/model"
)

// ValidationMode selects how dependency-discovery errors are handled:
// Lenient drops the offending field and logs at debug level (production
// behaviour), Strict propagates the error to the caller (test/diagnostic
// behaviour).
type ValidationMode int

const (
	Lenient ValidationMode = iota
	Strict
)

func (m ValidationMode) String() string {
	if m == Strict {
		return "strict"
	}
	return "lenient"
}

// Validate determines, for each field, the set of on-disk identities it
// transitively requires, prunes every field whose requirements the dataset
// cannot satisfy, and publishes the survivors to the owning dataset. A nil
// fields argument checks every locally registered field.
//
// The pass is idempotent: requested sets are cached on the definitions, and
// re-running over an already-pruned registry removes nothing further.
func (r *FieldRegistry) Validate(fields []model.FieldName, mode ValidationMode) (map[model.FieldName][]model.FieldName, []model.FieldName, error) {
	if fields == nil {
		fields = r.localNames()
	}

	deps := make(map[model.FieldName][]model.FieldName)
	unavailable := make([]model.FieldName, 0)
	start := time.Now()

	for _, field := range fields {
		field = r.qualify(field)
		fi, err := r.Lookup(field)
		if err != nil {
			// Already pruned earlier in this pass (duplicate entries are
			// legal in the input).
			continue
		}

		requested, err := fi.Dependencies(r)
		if err != nil {
			if errors.Is(err, ErrFieldNotFound) {
				r.prune(field, "unavailable")
				unavailable = append(unavailable, field)
				continue
			}
			if mode == Strict || r.isStrict(field) {
				return nil, nil, fmt.Errorf("dependency check for %s: %w", field, err)
			}
			r.log.Debug(context.Background(), "dropping field after dependency discovery error",
				logging.String("field", field.String()),
				logging.Err(err),
			)
			r.prune(field, "error")
			continue
		}

		if !r.satisfiable(requested) {
			r.prune(field, "unavailable")
			unavailable = append(unavailable, field)
			continue
		}

		deps[field] = requested
		r.log.Debug(context.Background(), "field dependencies resolved",
			logging.String("field", field.String()),
			logging.Int("requested", len(requested)),
		)
	}

	if r.metrics != nil {
		r.metrics.ValidationObserved(time.Since(start).Seconds())
	}
	r.publish(deps)
	return deps, unavailable, nil
}

// FindDependencies is the plugin loader's entry point into validation: it
// checks the freshly loaded batch leniently and publishes the results.
func (r *FieldRegistry) FindDependencies(loaded []model.FieldName) (map[model.FieldName][]model.FieldName, []model.FieldName, error) {
	return r.Validate(loaded, Lenient)
}

// satisfiable reports whether every requested identity is present in the
// dataset's on-disk field list.
func (r *FieldRegistry) satisfiable(requested []model.FieldName) bool {
	if r.ds == nil {
		return len(requested) == 0
	}
	for _, f := range requested {
		if !r.ds.HasOnDisk(f) {
			return false
		}
	}
	return true
}

// prune removes a field definition and records why.
func (r *FieldRegistry) prune(field model.FieldName, reason string) {
	r.remove(field)
	if r.metrics != nil {
		r.metrics.FieldPruned(reason)
	}
}

// publish merges the validated fields into the dataset's derived-field list
// (sorted deterministically) and its dependency map.
func (r *FieldRegistry) publish(deps map[model.FieldName][]model.FieldName) {
	if r.ds == nil || len(deps) == 0 {
		return
	}
	keys := make([]model.FieldName, 0, len(deps))
	for k := range deps {
		keys = append(keys, k)
	}
	r.ds.MergeDerivedFields(keys)

	if r.ds.FieldDependencies == nil {
		r.ds.FieldDependencies = make(map[model.FieldName][]model.FieldName, len(deps))
	}
	for k, v := range deps {
		r.ds.FieldDependencies[k] = v
	}
}
