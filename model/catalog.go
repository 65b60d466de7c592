package model

import "sort"

// KnownFieldEntry is the static metadata a frontend declares for an on-disk
// field: its native units, the canonical aliases it should be exposed under,
// and an optional display name for plots.
type KnownFieldEntry struct {
	Units       string
	Aliases     []string
	DisplayName string
}

// FieldCatalog maps bare on-disk field names to their declared metadata.
// Catalogs are injected at registry construction time; one instance per
// dataset/frontend.
type FieldCatalog map[string]KnownFieldEntry

// Names returns the catalog keys in sorted order so catalog-driven setup is
// reproducible run to run.
func (c FieldCatalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the entry for a bare name, or a zero entry when the field
// is unknown to the catalog (unknown fields are still registered, just
// without declared aliases).
func (c FieldCatalog) Lookup(name string) KnownFieldEntry {
	if entry, ok := c[name]; ok {
		return entry
	}
	return KnownFieldEntry{}
}
