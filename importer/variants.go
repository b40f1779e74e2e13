package importer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// variantsFile is the on-disk shape of header overrides:
//
//	fields:
//	  amount: ["importe (eur)", "cargo"]
//	  date:   ["f. valor"]
type variantsFile struct {
	Fields map[Field][]string `yaml:"fields"`
}

// LoadVariants reads header overrides from a YAML file and merges them into
// the built-in spellings.
func LoadVariants(path string) (Variants, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read variants file: %w", err)
	}
	return ParseVariants(data)
}

// ParseVariants is LoadVariants for in-memory YAML.
func ParseVariants(data []byte) (Variants, error) {
	var file variantsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	known := DefaultVariants()
	for field := range file.Fields {
		if _, ok := known[field]; !ok {
			return nil, fmt.Errorf("unknown field %q in variants file", field)
		}
	}
	return known.Merge(Variants(file.Fields)), nil
}
