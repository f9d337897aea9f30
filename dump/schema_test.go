package dump

import (
	"errors"
	"testing"
)

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		prior   []Descriptor
		d       Descriptor
		wantErr error
	}{
		{
			name: "duplicate key",
			prior: []Descriptor{
				{Key: "enc01.cc", Codec: CodecCC, Offsets: []int{27, 28}},
			},
			d:       Descriptor{Key: "enc01.cc", Codec: CodecChannel, Offsets: []int{40}},
			wantErr: ErrDuplicateKey,
		},
		{
			name:    "offset past dump end",
			d:       Descriptor{Key: "x", Codec: CodecChannel, Offsets: []int{100}},
			wantErr: ErrOutOfBounds,
		},
		{
			name:    "negative offset",
			d:       Descriptor{Key: "x", Codec: CodecChannel, Offsets: []int{-1}},
			wantErr: ErrOutOfBounds,
		},
		{
			name: "same nibble collision",
			prior: []Descriptor{
				{Key: "a.channel", Codec: CodecChannel, Offsets: []int{10}},
			},
			d:       Descriptor{Key: "b.channel", Codec: CodecChannel, Offsets: []int{10}},
			wantErr: ErrOverlapConflict,
		},
		{
			name: "cc low nibble collides with channel",
			prior: []Descriptor{
				{Key: "a.channel", Codec: CodecChannel, Offsets: []int{11}},
			},
			d:       Descriptor{Key: "b.cc", Codec: CodecCC, Offsets: []int{10, 11}},
			wantErr: ErrOverlapConflict,
		},
		{
			name:    "unknown checksum algorithm",
			d:       Descriptor{Key: "sum", Kind: Computed, Offsets: []int{99}, Algorithm: "crc16", Start: 1, End: 90},
			wantErr: nil, // message-only failure, checked below
		},
		{
			name:    "checksum range past dump end",
			d:       Descriptor{Key: "sum", Kind: Computed, Offsets: []int{99}, Algorithm: AlgoSum7, Start: 1, End: 101},
			wantErr: ErrOutOfBounds,
		},
		{
			name:    "checksum dependency not registered",
			d:       Descriptor{Key: "sum", Kind: Computed, Offsets: []int{99}, Algorithm: AlgoSum7, Start: 1, End: 90, DependsOn: []string{"ghost"}},
			wantErr: ErrUnknownKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSchema(100)
			for _, d := range tt.prior {
				if err := s.Register(d); err != nil {
					t.Fatalf("prior registration failed: %v", err)
				}
			}

			before := s.Len()
			err := s.Register(tt.d)
			if err == nil {
				t.Fatalf("Register(%q) succeeded, want error", tt.d.Key)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Register(%q) error = %v, want %v", tt.d.Key, err, tt.wantErr)
			}
			if s.Len() != before {
				t.Fatalf("failed registration changed the schema: %d -> %d descriptors", before, s.Len())
			}
			if _, err := s.Lookup(tt.d.Key); tt.wantErr != ErrDuplicateKey && !errors.Is(err, ErrUnknownKey) {
				t.Fatalf("failed registration left %q behind", tt.d.Key)
			}
		})
	}
}

func TestRegisterSharedByteDisjointNibbles(t *testing.T) {
	// The format packs two fields into one byte; registration must accept
	// bit-disjoint sharing and reject anything else.
	s := NewSchema(100)
	if err := s.Register(Descriptor{Key: "enc.cc", Codec: CodecCC, Offsets: []int{27, 28}}); err != nil {
		t.Fatalf("cc registration failed: %v", err)
	}
	if err := s.Register(Descriptor{Key: "enc.mode", Codec: CodecMode, Offsets: []int{27}}); err != nil {
		t.Fatalf("high-nibble sharing of byte 27 rejected: %v", err)
	}
	if err := s.Register(Descriptor{Key: "enc.mode2", Codec: CodecMode, Offsets: []int{27}}); !errors.Is(err, ErrOverlapConflict) {
		t.Fatalf("second high-nibble claim error = %v, want ErrOverlapConflict", err)
	}
}

func TestLookupUnknownKey(t *testing.T) {
	s := NewSchema(100)
	if _, err := s.Lookup("nope"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("Lookup error = %v, want ErrUnknownKey", err)
	}
}

func TestAllPreservesRegistrationOrder(t *testing.T) {
	s := NewSchema(100)
	// Deliberately not alphabetical.
	keys := []string{"zz", "aa", "mm"}
	for i, k := range keys {
		if err := s.Register(Descriptor{Key: k, Codec: CodecChannel, Offsets: []int{i}}); err != nil {
			t.Fatalf("Register(%q) failed: %v", k, err)
		}
	}

	collect := func() []string {
		var got []string
		for d := range s.All() {
			got = append(got, d.Key)
		}
		return got
	}

	// Restartable: two passes see the same order.
	for pass := 0; pass < 2; pass++ {
		got := collect()
		if len(got) != len(keys) {
			t.Fatalf("pass %d: got %d descriptors, want %d", pass, len(got), len(keys))
		}
		for i, k := range keys {
			if got[i] != k {
				t.Fatalf("pass %d: order %v, want %v", pass, got, keys)
			}
		}
	}

	// Early break must not panic or leak.
	for d := range s.All() {
		if d.Key == "zz" {
			break
		}
	}
}

func TestRegisterCopiesOffsets(t *testing.T) {
	s := NewSchema(100)
	offs := []int{27, 28}
	if err := s.Register(Descriptor{Key: "enc.cc", Codec: CodecCC, Offsets: offs}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	offs[0] = 90

	d, err := s.Lookup("enc.cc")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if d.Offsets[0] != 27 {
		t.Fatalf("schema shares the caller's offset slice: got %v", d.Offsets)
	}
}
