package dump

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// The parameter map is an evolving artifact: confirmed discoveries are kept
// in a declarative schema file so sessions against different firmware
// revisions can load different maps without code changes.
//
//	dump_length: 1700
//	parameters:
//	  - key: enc01.cc
//	    codec: cc
//	    offsets: [27, 28]
//	  - key: body.sum
//	    offsets: [1698]
//	    checksum:
//	      algorithm: sum7
//	      range: [1, 1698]
//	      depends_on: [enc01.cc]

type schemaFile struct {
	DumpLength int          `yaml:"dump_length"`
	Parameters []paramEntry `yaml:"parameters"`
}

type paramEntry struct {
	Key      string         `yaml:"key"`
	Codec    string         `yaml:"codec,omitempty"`
	Offsets  []int          `yaml:"offsets,flow"`
	Checksum *checksumEntry `yaml:"checksum,omitempty"`
}

type checksumEntry struct {
	Algorithm string   `yaml:"algorithm"`
	Range     []int    `yaml:"range,flow"`
	DependsOn []string `yaml:"depends_on,omitempty"`
}

// ReadSchema loads a schema file. Every entry goes through Register, so
// file contents face the same bounds, overlap and duplicate validation as
// descriptors registered from code, and entry order becomes registration
// order.
func ReadSchema(r io.Reader) (*Schema, error) {
	var f schemaFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	if f.DumpLength <= 0 {
		return nil, fmt.Errorf("read schema: dump_length %d must be positive", f.DumpLength)
	}

	s := NewSchema(f.DumpLength)
	for _, p := range f.Parameters {
		d := Descriptor{
			Key:     p.Key,
			Codec:   Codec(p.Codec),
			Offsets: p.Offsets,
		}
		if p.Checksum != nil {
			if len(p.Checksum.Range) != 2 {
				return nil, fmt.Errorf("read schema: parameter %q: checksum range wants [start, end]", p.Key)
			}
			d.Kind = Computed
			d.Codec = ""
			d.Algorithm = p.Checksum.Algorithm
			d.Start = p.Checksum.Range[0]
			d.End = p.Checksum.Range[1]
			d.DependsOn = p.Checksum.DependsOn
		}
		if err := s.Register(d); err != nil {
			return nil, fmt.Errorf("read schema: %w", err)
		}
	}
	return s, nil
}

// WriteSchema serializes s in the schema file format, descriptors in
// registration order.
func WriteSchema(w io.Writer, s *Schema) error {
	f := schemaFile{DumpLength: s.DumpLen()}
	for d := range s.All() {
		p := paramEntry{
			Key:     d.Key,
			Codec:   string(d.Codec),
			Offsets: d.Offsets,
		}
		if d.Kind == Computed {
			p.Checksum = &checksumEntry{
				Algorithm: d.Algorithm,
				Range:     []int{d.Start, d.End},
				DependsOn: d.DependsOn,
			}
		}
		f.Parameters = append(f.Parameters, p)
	}

	enc := yaml.NewEncoder(w)
	if err := enc.Encode(&f); err != nil {
		return fmt.Errorf("write schema: %w", err)
	}
	return enc.Close()
}
