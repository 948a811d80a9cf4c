package decoders

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ColumnSpec is the YAML definition of one column decoder.
type ColumnSpec struct {
	Name    string           `yaml:"name"`
	Kind    string           `yaml:"kind"`
	Aliases []string         `yaml:"aliases,omitempty"`
	Divisor float64          `yaml:"divisor,omitempty"`
	Width   int              `yaml:"width,omitempty"`
	Layout  string           `yaml:"layout,omitempty"`
	Century int              `yaml:"century,omitempty"`
	Strict  bool             `yaml:"strict,omitempty"`
	Codes   map[int64]string `yaml:"codes,omitempty"`
}

// File is the top level of a decoder definition file.
type File struct {
	Columns []ColumnSpec `yaml:"columns"`
}

//go:embed default.yaml
var defaultDefinitions []byte

// Default returns the decoders for the anthropometric survey columns.
func Default() *Registry {
	r, err := LoadYAML(bytes.NewReader(defaultDefinitions))
	if err != nil {
		panic("decoders: bad default definitions: " + err.Error())
	}
	return r
}

// LoadYAML reads decoder definitions.
//
//	columns:
//	  - name: WEIGHT
//	    kind: scale
//	    divisor: 10
//	  - name: LENGTH OF SERVICE
//	    kind: months
//	    aliases: [LENGHT OF SERVICE]
func LoadYAML(r io.Reader) (*Registry, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoders: %w", err)
	}

	reg := NewRegistry()
	if err := reg.Load(f.Columns); err != nil {
		return nil, err
	}
	return reg, nil
}

// Load registers the decoders described by specs. A later spec for the
// same column replaces an earlier one, so user definitions can be loaded
// over Default.
func (r *Registry) Load(specs []ColumnSpec) error {
	for i, spec := range specs {
		if spec.Name == "" {
			return fmt.Errorf("decoders: column %d has no name", i)
		}
		fn, err := spec.Func()
		if err != nil {
			return fmt.Errorf("decoders: column %q: %w", spec.Name, err)
		}
		r.Register(spec.Name, fn)
		for _, alias := range spec.Aliases {
			r.Alias(alias, spec.Name)
		}
	}
	return nil
}

// Func builds the decoder a spec describes.
func (s ColumnSpec) Func() (Func, error) {
	switch s.Kind {
	case "identity", "":
		return Identity(), nil
	case "scale":
		if s.Divisor == 0 {
			return nil, fmt.Errorf("scale needs a non-zero divisor")
		}
		return Scale(s.Divisor), nil
	case "months":
		return Months(), nil
	case "text":
		return Text(s.Width), nil
	case "lookup":
		if len(s.Codes) == 0 {
			return nil, fmt.Errorf("lookup needs codes")
		}
		return Lookup(s.Codes, s.Strict), nil
	case "date":
		century := s.Century
		if century == 0 {
			century = 1900
		}
		return Date(s.Layout, century)
	default:
		return nil, fmt.Errorf("unknown kind %q", s.Kind)
	}
}
