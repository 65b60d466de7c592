// Package units provides the unit-system collaborator consumed by the field
// registry: mapping unit strings to physical dimensions, picking the
// preferred unit string for a dimension in a given system, and converting
// between compatible units. It is deliberately table-driven; general unit
// expression parsing is out of scope.
package units

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnknownUnit      = errors.New("unknown unit")
	ErrUnknownDimension = errors.New("unknown dimension")
	ErrIncompatible     = errors.New("incompatible units")
	ErrUnknownSystem    = errors.New("unknown unit system")
)

// Dimension names a physical dimension, e.g. "(mass)/(length)**3".
// The empty dimension means dimensionless.
type Dimension string

const Dimensionless Dimension = ""

// Common dimensions used by the built-in catalogs and plugins.
const (
	Length          Dimension = "(length)"
	Time            Dimension = "(time)"
	Mass            Dimension = "(mass)"
	Temperature     Dimension = "(temperature)"
	Velocity        Dimension = "(length)/(time)"
	Density         Dimension = "(mass)/(length)**3"
	MomentumDensity Dimension = "(mass)/((length)**2*(time))"
	EnergyDensity   Dimension = "(mass)/((length)*(time)**2)"
	MagneticField   Dimension = "(magnetic_field)"
	Volume          Dimension = "(length)**3"
)

// System answers the three questions the registry asks of a unit system:
// what dimension a unit string carries, which unit string the system prefers
// for a dimension, and what factor converts between two compatible units.
type System interface {
	Name() string
	Dimension(unit string) (Dimension, error)
	Preferred(dim Dimension) (string, error)
	Factor(from, to string) (float64, error)
}

type tableEntry struct {
	dim Dimension
	// factor converts one of this unit into the dimension's reference unit.
	factor float64
}

// Table is a table-backed System. Units are registered with their dimension
// and a scale factor relative to an (arbitrary, per-dimension) reference
// unit; preferred representations are declared per dimension.
type Table struct {
	name      string
	units     map[string]tableEntry
	preferred map[Dimension]string
}

// NewTable creates an empty unit table.
func NewTable(name string) *Table {
	return &Table{
		name:      name,
		units:     make(map[string]tableEntry),
		preferred: make(map[Dimension]string),
	}
}

func (t *Table) Name() string { return t.name }

// Define registers a unit string with its dimension and reference factor.
func (t *Table) Define(unit string, dim Dimension, factor float64) *Table {
	t.units[unit] = tableEntry{dim: dim, factor: factor}
	return t
}

// SetPreferred declares the system's preferred unit for a dimension.
func (t *Table) SetPreferred(dim Dimension, unit string) *Table {
	t.preferred[dim] = unit
	return t
}

// Dimension resolves the physical dimension of a unit string. Empty strings
// and plain numeric multipliers are dimensionless. The composite
// "((unit)*k)" form produced by dataset unit overrides resolves to the
// dimension of its base unit.
func (t *Table) Dimension(unit string) (Dimension, error) {
	base, _, err := t.splitMultiplier(unit)
	if err != nil {
		return Dimensionless, err
	}
	if base == "" {
		return Dimensionless, nil
	}
	entry, ok := t.units[base]
	if !ok {
		return Dimensionless, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
	return entry.dim, nil
}

// Preferred returns the system's preferred unit string for a dimension.
func (t *Table) Preferred(dim Dimension) (string, error) {
	if dim == Dimensionless {
		return "", nil
	}
	unit, ok := t.preferred[dim]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDimension, dim)
	}
	return unit, nil
}

// Factor returns the multiplicative factor converting values in `from` into
// values in `to`. Both units must carry the same dimension.
func (t *Table) Factor(from, to string) (float64, error) {
	fromBase, fromMult, err := t.splitMultiplier(from)
	if err != nil {
		return 0, err
	}
	toBase, toMult, err := t.splitMultiplier(to)
	if err != nil {
		return 0, err
	}
	if fromBase == "" && toBase == "" {
		return fromMult / toMult, nil
	}

	fromEntry, ok := t.units[fromBase]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, from)
	}
	toEntry, ok := t.units[toBase]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, to)
	}
	if fromEntry.dim != toEntry.dim {
		return 0, fmt.Errorf("%w: %q vs %q", ErrIncompatible, from, to)
	}
	return (fromEntry.factor * fromMult) / (toEntry.factor * toMult), nil
}

// splitMultiplier decomposes the "((unit)*k)" composite form (and plain
// numeric strings) into a base unit and multiplier. Plain unit strings pass
// through with multiplier 1.
func (t *Table) splitMultiplier(unit string) (string, float64, error) {
	s := strings.TrimSpace(unit)
	if s == "" {
		return "", 1, nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return "", v, nil
	}
	if strings.HasPrefix(s, "((") && strings.HasSuffix(s, ")") {
		inner := s[1 : len(s)-1] // "(unit)*k"
		star := strings.LastIndex(inner, ")*")
		if star > 0 {
			base := inner[1:star]
			mult, err := strconv.ParseFloat(inner[star+2:], 64)
			if err != nil {
				return "", 0, fmt.Errorf("%w: bad multiplier in %q", ErrUnknownUnit, unit)
			}
			return base, mult, nil
		}
	}
	return s, 1, nil
}

// CGS builds a table for the centimetre-gram-second system covering the
// units the built-in catalogs and plugins use.
func CGS() *Table {
	t := NewTable("cgs")
	t.Define("cm", Length, 1).
		Define("m", Length, 100).
		Define("km", Length, 1e5).
		Define("code_length", Length, 1).
		Define("s", Time, 1).
		Define("g", Mass, 1).
		Define("kg", Mass, 1000).
		Define("K", Temperature, 1).
		Define("cm/s", Velocity, 1).
		Define("m/s", Velocity, 100).
		Define("km/s", Velocity, 1e5).
		Define("g/cm**3", Density, 1).
		Define("kg/m**3", Density, 1e-3).
		Define("g/(cm**2*s)", MomentumDensity, 1).
		Define("kg/(m**2*s)", MomentumDensity, 0.1).
		Define("erg/cm**3", EnergyDensity, 1).
		Define("Pa", EnergyDensity, 10).
		Define("gauss", MagneticField, 1).
		Define("T", MagneticField, 1e4).
		Define("cm**3", Volume, 1).
		Define("m**3", Volume, 1e6)
	t.SetPreferred(Length, "cm").
		SetPreferred(Time, "s").
		SetPreferred(Mass, "g").
		SetPreferred(Temperature, "K").
		SetPreferred(Velocity, "cm/s").
		SetPreferred(Density, "g/cm**3").
		SetPreferred(MomentumDensity, "g/(cm**2*s)").
		SetPreferred(EnergyDensity, "erg/cm**3").
		SetPreferred(MagneticField, "gauss").
		SetPreferred(Volume, "cm**3")
	return t
}

// MKS builds a table for the metre-kilogram-second system.
func MKS() *Table {
	t := NewTable("mks")
	t.Define("cm", Length, 0.01).
		Define("m", Length, 1).
		Define("km", Length, 1000).
		Define("code_length", Length, 1).
		Define("s", Time, 1).
		Define("g", Mass, 1e-3).
		Define("kg", Mass, 1).
		Define("K", Temperature, 1).
		Define("cm/s", Velocity, 0.01).
		Define("m/s", Velocity, 1).
		Define("km/s", Velocity, 1000).
		Define("g/cm**3", Density, 1000).
		Define("kg/m**3", Density, 1).
		Define("g/(cm**2*s)", MomentumDensity, 10).
		Define("kg/(m**2*s)", MomentumDensity, 1).
		Define("erg/cm**3", EnergyDensity, 0.1).
		Define("Pa", EnergyDensity, 1).
		Define("gauss", MagneticField, 1e-4).
		Define("T", MagneticField, 1).
		Define("cm**3", Volume, 1e-6).
		Define("m**3", Volume, 1)
	t.SetPreferred(Length, "m").
		SetPreferred(Time, "s").
		SetPreferred(Mass, "kg").
		SetPreferred(Temperature, "K").
		SetPreferred(Velocity, "m/s").
		SetPreferred(Density, "kg/m**3").
		SetPreferred(MomentumDensity, "kg/(m**2*s)").
		SetPreferred(EnergyDensity, "Pa").
		SetPreferred(MagneticField, "T").
		SetPreferred(Volume, "m**3")
	return t
}

// BySystemName maps a descriptor-level system name to a System.
func BySystemName(name string) (System, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cgs", "":
		return CGS(), nil
	case "mks", "si":
		return MKS(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSystem, name)
	}
}
