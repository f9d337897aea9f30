package dump

import (
	"fmt"
	"iter"
	"slices"
)

// Codec names a primitive encoding a stored descriptor uses. The codec
// determines how many offsets the descriptor claims, which bits of each
// byte it owns, and its value domain.
type Codec string

const (
	// CodecCC is the nibble-split 0-127 encoding across two bytes.
	CodecCC Codec = "cc"
	// CodecChannel is the 1-16 low-nibble channel encoding in one byte.
	CodecChannel Codec = "channel"
	// CodecMode is the 0-15 high-nibble mode encoding in one byte.
	CodecMode Codec = "mode"
)

// masks returns the per-offset bit ownership of the codec. CC and channel
// fields own low nibbles, mode fields the high nibble, so a mode may share
// a byte with either of the others.
func (c Codec) masks() []byte {
	switch c {
	case CodecCC:
		return []byte{0x0F, 0x0F}
	case CodecChannel:
		return []byte{0x0F}
	case CodecMode:
		return []byte{0xF0}
	}
	return nil
}

// domain returns the codec's legal value range.
func (c Codec) domain() (min, max int) {
	switch c {
	case CodecCC:
		return MinCC, MaxCC
	case CodecChannel:
		return MinChannel, MaxChannel
	case CodecMode:
		return MinMode, MaxMode
	}
	return 0, 0
}

// Kind distinguishes stored parameters from values derived from other bytes.
type Kind int

const (
	// Stored descriptors hold an independently set parameter.
	Stored Kind = iota
	// Computed descriptors hold a derived value (a checksum) recomputed
	// whenever a parameter they depend on changes.
	Computed
)

// Descriptor binds a logical parameter key to its byte location(s) inside
// a dump and the encoding used there.
type Descriptor struct {
	Key     string
	Kind    Kind
	Codec   Codec // stored only
	Offsets []int

	// Computed only: the named algorithm, the [Start,End) byte range it is
	// computed over, and the keys whose mutation triggers recomputation.
	Algorithm string
	Start     int
	End       int
	DependsOn []string
}

// Domain returns the descriptor's legal value range. Computed descriptors
// report the raw byte range of their stored result.
func (d Descriptor) Domain() (min, max int) {
	if d.Kind == Computed {
		return 0, 0x7F
	}
	return d.Codec.domain()
}

// masks mirrors Codec.masks for either kind. A computed descriptor owns
// its result byte whole.
func (d Descriptor) masks() []byte {
	if d.Kind == Computed {
		return []byte{0xFF}
	}
	return d.Codec.masks()
}

// checksumFunc resolves a computed descriptor's named algorithm.
func checksumFunc(name string) (func([]byte) byte, bool) {
	switch name {
	case AlgoSum7:
		return Checksum7, true
	}
	return nil, false
}

// compute evaluates a computed descriptor over the raw buffer.
func (d Descriptor) compute(raw []byte) byte {
	fn, _ := checksumFunc(d.Algorithm)
	return fn(raw[d.Start:d.End])
}

// Schema is the registry of confirmed parameters for one dump format
// revision. It grows only through Register and is never mutated by decode
// or encode operations. Not safe for concurrent registration; callers
// sharing a Schema across goroutines must serialize access.
type Schema struct {
	dumpLen int
	order   []string
	byKey   map[string]Descriptor
	owned   map[int]byte // offset -> bits claimed by some descriptor
}

// NewSchema returns an empty registry for dumps of the given byte length.
func NewSchema(dumpLen int) *Schema {
	return &Schema{
		dumpLen: dumpLen,
		byKey:   make(map[string]Descriptor),
		owned:   make(map[int]byte),
	}
}

// DumpLen reports the dump length the schema describes.
func (s *Schema) DumpLen() int { return s.dumpLen }

// Len reports the number of registered descriptors.
func (s *Schema) Len() int { return len(s.order) }

// Register adds a descriptor. It fails with ErrDuplicateKey if the key is
// taken, ErrOutOfBounds if any offset (or a computed input range) leaves
// the dump, and ErrOverlapConflict if the descriptor claims bits of a byte
// another descriptor already owns. Two descriptors may share a byte only on
// disjoint bits, which is how the format packs two fields per byte.
// Registration is all-or-nothing: on error the schema is unchanged.
func (s *Schema) Register(d Descriptor) error {
	if d.Key == "" {
		return fmt.Errorf("register: empty key")
	}
	if _, ok := s.byKey[d.Key]; ok {
		return fmt.Errorf("register %q: %w", d.Key, ErrDuplicateKey)
	}

	masks := d.masks()
	if masks == nil {
		return fmt.Errorf("register %q: unknown codec %q", d.Key, d.Codec)
	}
	if len(d.Offsets) != len(masks) {
		return fmt.Errorf("register %q: codec %q wants %d offsets, got %d",
			d.Key, d.Codec, len(masks), len(d.Offsets))
	}
	for _, off := range d.Offsets {
		if off < 0 || off >= s.dumpLen {
			return fmt.Errorf("register %q: offset %d: %w", d.Key, off, ErrOutOfBounds)
		}
	}
	for i, off := range d.Offsets {
		if s.owned[off]&masks[i] != 0 {
			return fmt.Errorf("register %q: offset %d bits 0x%02X: %w",
				d.Key, off, s.owned[off]&masks[i], ErrOverlapConflict)
		}
	}

	if d.Kind == Computed {
		if _, ok := checksumFunc(d.Algorithm); !ok {
			return fmt.Errorf("register %q: unknown checksum algorithm %q", d.Key, d.Algorithm)
		}
		if d.Start < 0 || d.End > s.dumpLen || d.Start > d.End {
			return fmt.Errorf("register %q: checksum range [%d,%d): %w",
				d.Key, d.Start, d.End, ErrOutOfBounds)
		}
		for _, dep := range d.DependsOn {
			if _, ok := s.byKey[dep]; !ok {
				return fmt.Errorf("register %q: dependency %q: %w", d.Key, dep, ErrUnknownKey)
			}
		}
	}

	d.Offsets = slices.Clone(d.Offsets)
	d.DependsOn = slices.Clone(d.DependsOn)
	s.byKey[d.Key] = d
	s.order = append(s.order, d.Key)
	for i, off := range d.Offsets {
		s.owned[off] |= masks[i]
	}
	return nil
}

// Lookup returns the descriptor for key, failing with ErrUnknownKey.
func (s *Schema) Lookup(key string) (Descriptor, error) {
	d, ok := s.byKey[key]
	if !ok {
		return Descriptor{}, fmt.Errorf("lookup %q: %w", key, ErrUnknownKey)
	}
	return d, nil
}

// All iterates the registered descriptors in registration order, which
// preserves the confidence order of the discovery history. The sequence is
// restartable.
func (s *Schema) All() iter.Seq[Descriptor] {
	return func(yield func(Descriptor) bool) {
		for _, key := range s.order {
			if !yield(s.byKey[key]) {
				return
			}
		}
	}
}
