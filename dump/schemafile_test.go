package dump

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestSchemaFileRoundTrip(t *testing.T) {
	orig := checksumSchema(t)
	if err := orig.Register(Descriptor{Key: "enc01.cc", Codec: CodecCC, Offsets: []int{27, 28}}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteSchema(&buf, orig); err != nil {
		t.Fatalf("WriteSchema failed: %v", err)
	}

	loaded, err := ReadSchema(&buf)
	if err != nil {
		t.Fatalf("ReadSchema failed: %v\nfile:\n%s", err, buf.String())
	}

	if loaded.DumpLen() != orig.DumpLen() {
		t.Fatalf("dump length %d, want %d", loaded.DumpLen(), orig.DumpLen())
	}
	if loaded.Len() != orig.Len() {
		t.Fatalf("descriptor count %d, want %d", loaded.Len(), orig.Len())
	}

	var origKeys, loadedKeys []string
	for d := range orig.All() {
		origKeys = append(origKeys, d.Key)
	}
	for d := range loaded.All() {
		loadedKeys = append(loadedKeys, d.Key)
	}
	if !slices.Equal(loadedKeys, origKeys) {
		t.Fatalf("key order %v, want %v", loadedKeys, origKeys)
	}

	sum, err := loaded.Lookup("body.sum")
	if err != nil {
		t.Fatalf("Lookup(body.sum) failed: %v", err)
	}
	if sum.Kind != Computed || sum.Algorithm != AlgoSum7 {
		t.Fatalf("checksum descriptor lost its kind: %+v", sum)
	}
	if sum.Start != 1 || sum.End != DumpLen-2 {
		t.Fatalf("checksum range [%d,%d), want [1,%d)", sum.Start, sum.End, DumpLen-2)
	}
	if !slices.Equal(sum.DependsOn, []string{"global.channel"}) {
		t.Fatalf("checksum dependencies %v", sum.DependsOn)
	}
}

func TestReadSchemaLiteral(t *testing.T) {
	const file = `
dump_length: 1700
parameters:
  - key: enc01.cc
    codec: cc
    offsets: [27, 28]
  - key: enc01.channel
    codec: channel
    offsets: [29]
  - key: body.sum
    offsets: [1698]
    checksum:
      algorithm: sum7
      range: [1, 1698]
      depends_on: [enc01.cc]
`
	s, err := ReadSchema(strings.NewReader(file))
	if err != nil {
		t.Fatalf("ReadSchema failed: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("got %d parameters, want 3", s.Len())
	}

	d, err := s.Lookup("enc01.cc")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if !slices.Equal(d.Offsets, []int{27, 28}) || d.Codec != CodecCC {
		t.Fatalf("descriptor = %+v", d)
	}
}

func TestReadSchemaRejects(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		wantErr error
	}{
		{
			name: "missing dump length",
			file: "parameters:\n  - key: a\n    codec: channel\n    offsets: [7]\n",
		},
		{
			name: "unknown codec",
			file: "dump_length: 100\nparameters:\n  - key: a\n    codec: float\n    offsets: [7]\n",
		},
		{
			name:    "duplicate key",
			file:    "dump_length: 100\nparameters:\n  - key: a\n    codec: channel\n    offsets: [7]\n  - key: a\n    codec: channel\n    offsets: [8]\n",
			wantErr: ErrDuplicateKey,
		},
		{
			name:    "offset out of bounds",
			file:    "dump_length: 100\nparameters:\n  - key: a\n    codec: channel\n    offsets: [100]\n",
			wantErr: ErrOutOfBounds,
		},
		{
			name: "checksum range malformed",
			file: "dump_length: 100\nparameters:\n  - key: sum\n    offsets: [99]\n    checksum:\n      algorithm: sum7\n      range: [1]\n",
		},
		{
			name: "unknown checksum algorithm",
			file: "dump_length: 100\nparameters:\n  - key: sum\n    offsets: [99]\n    checksum:\n      algorithm: crc16\n      range: [1, 90]\n",
		},
		{
			name: "unknown field",
			file: "dump_length: 100\nwidgets: []\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ReadSchema(strings.NewReader(tt.file))
			if err == nil {
				t.Fatalf("ReadSchema succeeded, schema = %+v", s)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuiltinSchemaRoundTripsThroughFile(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSchema(&buf, ControllerSchema()); err != nil {
		t.Fatalf("WriteSchema failed: %v", err)
	}

	loaded, err := ReadSchema(&buf)
	if err != nil {
		t.Fatalf("ReadSchema failed: %v", err)
	}

	// A dump decoded against the reloaded schema matches the builtin decode.
	raw := testDump()
	a, err := Decode(raw, ControllerSchema())
	if err != nil {
		t.Fatalf("Decode(builtin) failed: %v", err)
	}
	b, err := Decode(raw, loaded)
	if err != nil {
		t.Fatalf("Decode(loaded) failed: %v", err)
	}

	d := DiffModels(a, b)
	if len(d.Bytes) != 0 || len(d.Fields) != 0 {
		t.Fatalf("builtin and reloaded schemas disagree: %+v", d)
	}
}
