package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SourceOverride replaces the built-in location or candidate cap of a source.
// Empty fields keep the built-in value.
type SourceOverride struct {
	URL    string `yaml:"url"`
	Origin string `yaml:"origin"`
	Limit  int    `yaml:"limit"`
}

type sourcesFile struct {
	Sources map[string]SourceOverride `yaml:"sources"`
}

// LoadSourceOverrides reads a YAML file of the form
//
//	sources:
//	  futuretools:
//	    url: https://www.futuretools.io/
//	    limit: 50
//
// An empty path returns no overrides.
func LoadSourceOverrides(path string) (map[string]SourceOverride, error) {
	if path == "" {
		return map[string]SourceOverride{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sources file %s: %w", path, err)
	}
	if f.Sources == nil {
		f.Sources = map[string]SourceOverride{}
	}
	for key, o := range f.Sources {
		if o.Limit < 0 {
			return nil, fmt.Errorf("source %q: limit must not be negative", key)
		}
	}
	return f.Sources, nil
}
