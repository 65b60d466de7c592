package core

import (
	"strings"
	"testing"
)

const sampleCatalog = `
density:
  units: "g/cm**3"
  aliases: [density, rho]
  display_name: "Density"
velocity_x:
  units: "cm/s"
  aliases: [velocity_x]
`

func TestLoadCatalog(t *testing.T) {
	catalog, err := LoadFieldCatalog(strings.NewReader(sampleCatalog))
	if err != nil {
		t.Fatalf("LoadFieldCatalog: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("catalog size = %d, want 2", len(catalog))
	}

	entry := catalog.Lookup("density")
	if entry.Units != "g/cm**3" || entry.DisplayName != "Density" {
		t.Fatalf("density entry = %+v", entry)
	}
	if len(entry.Aliases) != 2 || entry.Aliases[1] != "rho" {
		t.Fatalf("density aliases = %v", entry.Aliases)
	}

	// Unknown names produce a zero entry, not an error.
	if zero := catalog.Lookup("nonexistent"); zero.Units != "" || len(zero.Aliases) != 0 {
		t.Fatalf("unknown lookup = %+v, want zero entry", zero)
	}
}

func TestLoadCatalogRejectsUnknownKeys(t *testing.T) {
	payload := `
density:
  units: "g/cm**3"
  unexpected_key: true
`
	if _, err := LoadFieldCatalog(strings.NewReader(payload)); err == nil {
		t.Fatalf("expected error for unknown entry key")
	}
}

func TestLoadCatalogRejectsMalformedYAML(t *testing.T) {
	if _, err := LoadFieldCatalog(strings.NewReader("density: [")); err == nil {
		t.Fatalf("expected error for malformed YAML")
	}
}
