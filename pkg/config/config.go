// Package config loads binding configuration files.
//
// A file maps node names to the ordered binding records of that node:
//
//	nodes:
//	  NameLabel:
//	    - receiver: OnName
//	      type: Player
//	      path: name
//	    - receiver: OnDebug
//	      type: "-"
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/pumped-fn/canopy"
	"github.com/pumped-fn/canopy/pkg/schema"
)

// File is a decoded binding configuration file.
type File struct {
	Nodes map[string]canopy.Config `yaml:"nodes" json:"nodes" mapstructure:"nodes"`
}

var recordSchema = &schema.ObjectSchema{
	Properties: map[string]schema.Schema{
		"receiver": schema.Pattern(`\S`),
		"type":     schema.String(),
		"path":     schema.String(),
	},
	Required: []string{"receiver"},
	Strict:   true,
}

var fileSchema = &schema.ObjectSchema{
	Properties: map[string]schema.Schema{
		"nodes": schema.Map(schema.Array(recordSchema)),
	},
	Required: []string{"nodes"},
	Strict:   true,
}

// Load reads a configuration file. Files ending in .json are parsed as JSON,
// everything else as YAML.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read binding config: %w", err)
	}

	var raw map[string]any
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	f, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return f, nil
}

// Parse decodes YAML (or JSON, which YAML accepts) from data.
func Parse(data []byte) (*File, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse binding config: %w", err)
	}
	return Decode(raw)
}

// Decode builds a File from a loosely typed map, such as a section of a larger
// configuration document. Structural problems wrap canopy.ErrMalformedConfig.
func Decode(raw map[string]any) (*File, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty document", canopy.ErrMalformedConfig)
	}
	if _, err := fileSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", canopy.ErrMalformedConfig, err)
	}

	var f File
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &f,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", canopy.ErrMalformedConfig, err)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks every node's records.
func (f *File) Validate() error {
	var errs []error
	for _, name := range f.Names() {
		if err := f.Nodes[name].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("node %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Names returns the configured node names, sorted.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Nodes))
	for name := range f.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// For returns the records configured for a node name, or nil.
func (f *File) For(name string) canopy.Config {
	return f.Nodes[name]
}
