package core

import (
	"context"
	"fmt"

	"github.com/simfoundry/fieldkit/internal/logging"
	"github.com/simfoundry/fieldkit/model"
	"github.com/simfoundry/fieldkit/units"
)

// MetricsRecorder receives registry activity. The observability package's
// FieldCollector satisfies it; a nil recorder is always legal.
type MetricsRecorder interface {
	FieldRegistered(sampling string)
	AliasAdded()
	FieldPruned(reason string)
	ValidationObserved(seconds float64)
	SetRegistryFields(registry string, count int)
}

// FieldOptions carries the optional metadata accepted by registration.
type FieldOptions struct {
	Units       string
	OutputUnits string
	DisplayName string
	Validators  []Validator

	// Override replaces an existing definition instead of silently keeping
	// the first one.
	Override bool

	// Deprecated: set the sampling kind argument to SamplingParticle
	// instead. Kept for older frontends; disagreeing with the sampling kind
	// is a registration-time error.
	ParticleType bool
}

// RegistryConfig bundles the construction-time collaborators of a registry.
// Catalogs are injected here rather than shared through any global state.
type RegistryConfig struct {
	Name            string
	FluidCatalog    model.FieldCatalog
	ParticleCatalog model.FieldCatalog
	Slice           *SliceInfo
	Fallback        *FieldRegistry
	Logger          logging.Logger
	Metrics         MetricsRecorder
}

// FieldRegistry maps field identities to definitions for one dataset (or one
// element-type family of it). Lookup, containment and iteration consult the
// local map first and then delegate to the optional fallback registry; local
// definitions always shadow fallback ones.
//
// Registries are single-writer by convention: the owning dataset mutates the
// chain during setup and treats it as read-mostly afterwards. There is no
// internal locking.
type FieldRegistry struct {
	name string
	ds   *model.Dataset

	defs    map[model.FieldName]*FieldDefinition
	aliases map[model.FieldName]model.FieldName
	strict  map[model.FieldName]struct{}

	fluidCatalog    model.FieldCatalog
	particleCatalog model.FieldCatalog
	slice           *SliceInfo
	fallback        *FieldRegistry

	log     logging.Logger
	metrics MetricsRecorder
}

// NewFieldRegistry creates a registry bound to a dataset. ds may be nil for
// catalog-less containers such as fallback roots.
func NewFieldRegistry(ds *model.Dataset, cfg RegistryConfig) *FieldRegistry {
	log := cfg.Logger
	if log == nil {
		log = logging.Noop()
	}
	name := cfg.Name
	if name == "" && ds != nil {
		name = ds.Name
	}
	return &FieldRegistry{
		name:            name,
		ds:              ds,
		defs:            make(map[model.FieldName]*FieldDefinition),
		aliases:         make(map[model.FieldName]model.FieldName),
		strict:          make(map[model.FieldName]struct{}),
		fluidCatalog:    cfg.FluidCatalog,
		particleCatalog: cfg.ParticleCatalog,
		slice:           cfg.Slice,
		fallback:        cfg.Fallback,
		log:             log,
		metrics:         cfg.Metrics,
	}
}

// CreateWithFallback produces an empty registry chained to fallback. The
// chain must be cycle-free; this is enforced by construction discipline, not
// runtime checks.
func CreateWithFallback(fallback *FieldRegistry, name string) *FieldRegistry {
	cfg := RegistryConfig{Name: name, Fallback: fallback}
	if fallback != nil {
		cfg.Logger = fallback.log
		cfg.Metrics = fallback.metrics
	}
	var ds *model.Dataset
	if fallback != nil {
		ds = fallback.ds
	}
	return NewFieldRegistry(ds, cfg)
}

// Name returns the registry's diagnostic name.
func (r *FieldRegistry) Name() string { return r.name }

// Dataset returns the owning dataset (may be nil).
func (r *FieldRegistry) Dataset() *model.Dataset { return r.ds }

// Fallback returns the next registry in the chain, or nil.
func (r *FieldRegistry) Fallback() *FieldRegistry { return r.fallback }

// qualify normalises an identity: an empty type becomes the bare-name
// sentinel so lookups and sort order never depend on how a key was spelled.
func (r *FieldRegistry) qualify(name model.FieldName) model.FieldName {
	if name.Type == "" {
		name.Type = model.UnqualifiedType
	}
	return name
}

// defaultFluidType resolves the category bare cell-sampled names qualify to.
func (r *FieldRegistry) defaultFluidType() string {
	if r.ds != nil && r.ds.DefaultFluidType != "" {
		return r.ds.DefaultFluidType
	}
	return "gas"
}

// Register adds a field definition. Bare names are auto-qualified
// (particle-sampled fields to "all", cell/local ones to the dataset's
// default fluid type) and additionally aliased from the bare name. If the
// identity already exists anywhere in the chain and opts.Override is unset,
// the call is a silent no-op so independently loaded plugins can re-define
// the same field without ordering bugs.
func (r *FieldRegistry) Register(name model.FieldName, fn ComputeFunc, sampling model.SamplingKind, opts FieldOptions) error {
	if name.Name == "" {
		return fmt.Errorf("%w: empty field name", ErrMalformedName)
	}
	if opts.ParticleType && sampling != model.SamplingParticle {
		return fmt.Errorf("%w: particle-type flag with %s sampling", ErrConflictingOptions, sampling)
	}
	name = r.qualify(name)

	if !opts.Override && r.Contains(name) {
		return nil
	}

	if !name.IsBare() {
		r.put(r.newDefinition(name, fn, sampling, opts))
		return nil
	}

	ftype := "all"
	if sampling != model.SamplingParticle {
		ftype = r.defaultFluidType()
	}
	qualified := model.FieldName{Type: ftype, Name: name.Name}
	if !r.Contains(qualified) {
		r.put(r.newDefinition(qualified, fn, sampling, opts))
		return r.Alias(name, qualified, opts.Units)
	}
	r.put(r.newDefinition(name, fn, sampling, opts))
	return nil
}

// DeferredRegister captures registration metadata and returns a closure that
// performs the registration once handed the compute function. This is the
// explicit form of decorator-style field declaration.
func (r *FieldRegistry) DeferredRegister(name model.FieldName, sampling model.SamplingKind, opts FieldOptions) func(ComputeFunc) error {
	return func(fn ComputeFunc) error {
		return r.Register(name, fn, sampling, opts)
	}
}

// RegisterPassthrough registers a field whose values are present verbatim in
// storage; only metadata (units, display name) is attached. Unlike Register
// it installs unconditionally, replacing any earlier definition.
func (r *FieldRegistry) RegisterPassthrough(name model.FieldName, sampling model.SamplingKind, opts FieldOptions) error {
	if name.Name == "" {
		return fmt.Errorf("%w: empty field name", ErrMalformedName)
	}
	r.put(r.newDefinition(r.qualify(name), nil, sampling, opts))
	return nil
}

// Alias re-exposes source under another identity, converting units when the
// alias's resolved units differ from the source's. A missing source (in the
// whole fallback chain) makes the call a no-op. When units is empty the
// alias adopts the dataset unit system's preferred representation of the
// source's dimension, keeping the source units for dimensionless (or
// unresolvable) quantities.
func (r *FieldRegistry) Alias(alias, source model.FieldName, aliasUnits string) error {
	alias = r.qualify(alias)
	source = r.qualify(source)

	src, err := r.Lookup(source)
	if err != nil {
		return nil
	}

	if aliasUnits == "" {
		aliasUnits = r.preferredUnits(src.Units)
	}

	r.aliases[alias] = source
	return r.Register(alias, TranslationFunc(source, src.Units), src.Sampling, FieldOptions{
		Units:       aliasUnits,
		DisplayName: src.DisplayName,
	})
}

// preferredUnits maps a unit string to the dataset unit system's preferred
// representation of its dimension, defaulting to the input for dimensionless
// or unresolvable units.
func (r *FieldRegistry) preferredUnits(unit string) string {
	if r.ds == nil || r.ds.UnitSystem == nil {
		return unit
	}
	dim, err := r.ds.UnitSystem.Dimension(unit)
	if err != nil || dim == units.Dimensionless {
		return unit
	}
	preferred, err := r.ds.UnitSystem.Preferred(dim)
	if err != nil {
		return unit
	}
	return preferred
}

// IsAlias reports whether the identity was created as a pure view of another
// field, returning its source.
func (r *FieldRegistry) IsAlias(name model.FieldName) (model.FieldName, bool) {
	source, ok := r.aliases[r.qualify(name)]
	if ok {
		return source, true
	}
	if r.fallback != nil {
		return r.fallback.IsAlias(name)
	}
	return model.FieldName{}, false
}

// Contains reports whether the identity resolves in this registry or its
// fallback chain.
func (r *FieldRegistry) Contains(name model.FieldName) bool {
	name = r.qualify(name)
	if _, ok := r.defs[name]; ok {
		return true
	}
	if r.fallback != nil {
		return r.fallback.Contains(name)
	}
	return false
}

// Lookup fetches the definition for an identity, walking the fallback chain.
// Definitions closer to the caller shadow ones further down.
func (r *FieldRegistry) Lookup(name model.FieldName) (*FieldDefinition, error) {
	name = r.qualify(name)
	if fd, ok := r.defs[name]; ok {
		return fd, nil
	}
	if r.fallback != nil {
		return r.fallback.Lookup(name)
	}
	return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, name)
}

// Names returns all identities: local ones in sorted order, then the
// fallback chain's. Duplicates across the chain are possible and tolerated.
func (r *FieldRegistry) Names() []model.FieldName {
	out := r.localNames()
	if r.fallback != nil {
		out = append(out, r.fallback.Names()...)
	}
	return out
}

// localNames returns this registry's own identities in sorted order.
func (r *FieldRegistry) localNames() []model.FieldName {
	out := make([]model.FieldName, 0, len(r.defs))
	for name := range r.defs {
		out = append(out, name)
	}
	model.SortFieldNames(out)
	return out
}

// Len counts locally owned definitions (the fallback chain is not included).
func (r *FieldRegistry) Len() int { return len(r.defs) }

// MarkStrict adds an identity to the diagnostic set: dependency-discovery
// errors for these fields always propagate instead of being dropped.
func (r *FieldRegistry) MarkStrict(names ...model.FieldName) {
	for _, name := range names {
		r.strict[r.qualify(name)] = struct{}{}
	}
}

func (r *FieldRegistry) isStrict(name model.FieldName) bool {
	_, ok := r.strict[name]
	return ok
}

// newDefinition builds a FieldDefinition bound to this registry's dataset.
func (r *FieldRegistry) newDefinition(name model.FieldName, fn ComputeFunc, sampling model.SamplingKind, opts FieldOptions) *FieldDefinition {
	return &FieldDefinition{
		Name:        name,
		Sampling:    sampling,
		Units:       opts.Units,
		OutputUnits: opts.OutputUnits,
		DisplayName: opts.DisplayName,
		Validators:  opts.Validators,
		fn:          fn,
		ds:          r.ds,
	}
}

// put installs a definition locally and updates instrumentation.
func (r *FieldRegistry) put(fd *FieldDefinition) {
	_, replacing := r.defs[fd.Name]
	r.defs[fd.Name] = fd
	if r.metrics != nil {
		if !replacing {
			r.metrics.FieldRegistered(fd.Sampling.String())
		}
		if _, isAlias := r.aliases[fd.Name]; isAlias {
			r.metrics.AliasAdded()
		}
		r.metrics.SetRegistryFields(r.name, len(r.defs))
	}
	r.log.Debug(context.Background(), "registered field",
		logging.String("field", fd.Name.String()),
		logging.String("sampling", fd.Sampling.String()),
		logging.String("units", fd.Units),
	)
}

// remove drops a local definition (and its alias record) so pruned fields
// become indistinguishable from never-registered ones.
func (r *FieldRegistry) remove(name model.FieldName) {
	name = r.qualify(name)
	if _, ok := r.defs[name]; !ok {
		return
	}
	delete(r.defs, name)
	delete(r.aliases, name)
	if r.metrics != nil {
		r.metrics.SetRegistryFields(r.name, len(r.defs))
	}
}
