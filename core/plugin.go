package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/simfoundry/fieldkit/internal/logging"
	"github.com/simfoundry/fieldkit/model"
)

// SliceInfo is the optional stencil/geometry context handed to plugins that
// build finite-difference fields. Offsets are in ghost zones relative to the
// active region.
type SliceInfo struct {
	LeftOffset  int
	RightOffset int
	Divisor     int
}

// Plugin is a field population routine: it registers zero or more fields
// against the registry for the given default fluid type.
type Plugin func(reg *FieldRegistry, ftype string, slice *SliceInfo) error

var plugins = make(map[string]Plugin)

// RegisterPlugin adds a population routine under a stable name. Plugins are
// applied in lexicographic name order, never registration order, so two runs
// over the same dataset produce identical registries. Duplicate names panic:
// they indicate conflicting plugin packages linked into one binary.
func RegisterPlugin(name string, p Plugin) {
	if name == "" || p == nil {
		panic("core: RegisterPlugin with empty name or nil plugin")
	}
	if _, dup := plugins[name]; dup {
		panic(fmt.Sprintf("core: %v: %q", ErrDuplicatePlugin, name))
	}
	plugins[name] = p
}

// PluginNames returns the registered plugin names in sorted order.
func PluginNames() []string {
	names := make([]string, 0, len(plugins))
	for name := range plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadAllPlugins applies every registered plugin in sorted name order,
// accumulating the identities each one newly introduced, and hands the whole
// batch to the dependency validator. It returns the accumulated list.
func (r *FieldRegistry) LoadAllPlugins(ftype string) ([]model.FieldName, error) {
	var loaded []model.FieldName
	for _, name := range PluginNames() {
		added, err := r.LoadPlugin(name, ftype)
		if err != nil {
			return loaded, err
		}
		loaded = append(loaded, added...)
		r.log.Debug(context.Background(), "loaded field plugin",
			logging.String("plugin", name),
			logging.Int("new_fields", len(added)),
		)
	}
	if _, _, err := r.FindDependencies(loaded); err != nil {
		return loaded, err
	}
	return loaded, nil
}

// LoadPlugin applies a single registered plugin by name and returns the
// identities it newly introduced.
func (r *FieldRegistry) LoadPlugin(name, ftype string) ([]model.FieldName, error) {
	p, ok := plugins[name]
	if !ok {
		return nil, fmt.Errorf("unknown field plugin %q", name)
	}
	return r.LoadPluginFunc(p, ftype)
}

// LoadPluginFunc applies an arbitrary population routine, diffing the local
// identity set around the call to report what it introduced.
func (r *FieldRegistry) LoadPluginFunc(p Plugin, ftype string) ([]model.FieldName, error) {
	before := make(map[model.FieldName]struct{}, len(r.defs))
	for name := range r.defs {
		before[name] = struct{}{}
	}

	if err := p(r, ftype, r.slice); err != nil {
		return nil, err
	}

	var added []model.FieldName
	for _, name := range r.localNames() {
		if _, old := before[name]; !old {
			added = append(added, name)
		}
	}
	return added, nil
}
