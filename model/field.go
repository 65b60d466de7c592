package model

import (
	"fmt"
	"sort"
	"strings"
)

// UnqualifiedType is the internal sentinel category used to normalise bare
// field names into two-part identities. "?" sorts before every real field
// type, so bare names order deterministically ahead of qualified ones.
const UnqualifiedType = "?"

// FieldName identifies a field as a (type, name) pair. The type is either a
// concrete element-type tag ("gas", "io", a particle species) or a
// pseudo-type such as "all" or "index".
type FieldName struct {
	Type string
	Name string
}

// Bare builds the normalised identity for a bare field name.
func Bare(name string) FieldName {
	return FieldName{Type: UnqualifiedType, Name: name}
}

// IsBare reports whether the identity carries the bare-name sentinel type.
func (f FieldName) IsBare() bool {
	return f.Type == UnqualifiedType || f.Type == ""
}

func (f FieldName) String() string {
	return fmt.Sprintf("(%q, %q)", f.Type, f.Name)
}

// Less orders identities by type then name. Combined with the "?" sentinel
// this yields the same ordering on every platform and run.
func (f FieldName) Less(other FieldName) bool {
	if f.Type != other.Type {
		return f.Type < other.Type
	}
	return f.Name < other.Name
}

// SamplingKind describes how a field's values are attached to a dataset:
// per mesh cell, per particle, or as a single local value.
type SamplingKind int

const (
	SamplingCell SamplingKind = iota
	SamplingParticle
	SamplingLocal
)

func (s SamplingKind) String() string {
	switch s {
	case SamplingCell:
		return "cell"
	case SamplingParticle:
		return "particle"
	case SamplingLocal:
		return "local"
	default:
		return "unknown"
	}
}

// ParseSamplingKind maps the string form ("cell", "particle", "local",
// case-insensitive) back to a SamplingKind.
func ParseSamplingKind(s string) (SamplingKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cell":
		return SamplingCell, nil
	case "particle":
		return SamplingParticle, nil
	case "local":
		return SamplingLocal, nil
	default:
		return SamplingCell, fmt.Errorf("invalid sampling kind %q (want cell, particle or local)", s)
	}
}

// SortFieldNames sorts identities in place using FieldName.Less.
func SortFieldNames(names []FieldName) {
	sort.Slice(names, func(i, j int) bool { return names[i].Less(names[j]) })
}
