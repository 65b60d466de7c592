package core

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/simfoundry/fieldkit/model"
)

type catalogEntryYAML struct {
	Units       string   `yaml:"units"`
	Aliases     []string `yaml:"aliases"`
	DisplayName string   `yaml:"display_name"`
}

// LoadFieldCatalog reads a known-field catalog from YAML. The document is a
// mapping from on-disk field name to its entry:
//
//	density:
//	  units: "g/cm**3"
//	  aliases: [density]
//	  display_name: "Density"
func LoadFieldCatalog(r io.Reader) (model.FieldCatalog, error) {
	raw := make(map[string]catalogEntryYAML)
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("LoadFieldCatalog: decode failed: %w", err)
	}

	catalog := make(model.FieldCatalog, len(raw))
	for name, entry := range raw {
		if name == "" {
			return nil, fmt.Errorf("LoadFieldCatalog: %w: empty field name", ErrMalformedName)
		}
		catalog[name] = model.KnownFieldEntry{
			Units:       entry.Units,
			Aliases:     entry.Aliases,
			DisplayName: entry.DisplayName,
		}
	}
	return catalog, nil
}

// LoadFieldCatalogFile is LoadFieldCatalog over a file path.
func LoadFieldCatalogFile(path string) (model.FieldCatalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadFieldCatalogFile: %w", err)
	}
	defer f.Close()
	return LoadFieldCatalog(f)
}
