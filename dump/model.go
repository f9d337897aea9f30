package dump

import "fmt"

// SysEx frame markers delimiting every dump.
const (
	StartMarker = 0xF0
	EndMarker   = 0xF7
)

// Model is one decoded setup dump: the raw buffer as authoritative byte
// truth plus the decoded value of every registered parameter. SetValue
// mutates the raw buffer in place through the parameter's codec, so bytes
// the schema does not claim are never rewritten. Concurrent SetValue calls
// on the same Model must be serialized by the caller.
type Model struct {
	schema *Schema
	raw    []byte
	values map[string]int
}

// Decode validates the structural invariants of raw against the schema's
// declared length and populates the decoded-value mapping. It fails with
// ErrMalformedDump on a length mismatch or a missing start/end marker and
// copies the buffer, so the caller's slice stays independent.
func Decode(raw []byte, schema *Schema) (*Model, error) {
	if len(raw) != schema.DumpLen() || len(raw) < 2 {
		return nil, fmt.Errorf("decode: length %d, want %d: %w",
			len(raw), schema.DumpLen(), ErrMalformedDump)
	}
	if raw[0] != StartMarker {
		return nil, fmt.Errorf("decode: first byte 0x%02X, want start marker 0x%02X: %w",
			raw[0], StartMarker, ErrMalformedDump)
	}
	if raw[len(raw)-1] != EndMarker {
		return nil, fmt.Errorf("decode: last byte 0x%02X, want end marker 0x%02X: %w",
			raw[len(raw)-1], EndMarker, ErrMalformedDump)
	}

	m := &Model{
		schema: schema,
		raw:    append([]byte(nil), raw...),
		values: make(map[string]int, schema.Len()),
	}
	for d := range schema.All() {
		m.values[d.Key] = m.decodeField(d)
	}
	return m, nil
}

func (m *Model) decodeField(d Descriptor) int {
	switch {
	case d.Kind == Computed:
		return int(m.raw[d.Offsets[0]])
	case d.Codec == CodecCC:
		return DecodeCC(m.raw[d.Offsets[0]], m.raw[d.Offsets[1]])
	case d.Codec == CodecMode:
		return DecodeMode(m.raw[d.Offsets[0]])
	default:
		return DecodeChannel(m.raw[d.Offsets[0]])
	}
}

// Schema returns the registry the model was decoded with.
func (m *Model) Schema() *Schema { return m.schema }

// Len reports the raw dump length.
func (m *Model) Len() int { return len(m.raw) }

// Value returns the decoded value of key, failing with ErrUnknownKey.
func (m *Model) Value(key string) (int, error) {
	v, ok := m.values[key]
	if !ok {
		return 0, fmt.Errorf("value %q: %w", key, ErrUnknownKey)
	}
	return v, nil
}

// ParamValue pairs a key with its decoded value for reporting surfaces.
type ParamValue struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
}

// Values lists every decoded parameter in schema registration order.
func (m *Model) Values() []ParamValue {
	out := make([]ParamValue, 0, m.schema.Len())
	for d := range m.schema.All() {
		out = append(out, ParamValue{Key: d.Key, Value: m.values[d.Key]})
	}
	return out
}

// SetValue writes v through key's codec into the owned bytes of the raw
// buffer, leaving every other byte untouched, then recomputes any computed
// descriptor that declared key as a dependency. It fails with ErrUnknownKey
// for an unregistered key and ErrInvalidDomain for v outside the
// descriptor's domain; on failure nothing is mutated. Computed descriptors
// cannot be set directly.
func (m *Model) SetValue(key string, v int) error {
	d, err := m.schema.Lookup(key)
	if err != nil {
		return err
	}
	if d.Kind == Computed {
		return fmt.Errorf("set %q: computed parameter: %w", key, ErrInvalidDomain)
	}

	switch d.Codec {
	case CodecCC:
		hi, lo, err := EncodeCC(v, m.raw[d.Offsets[0]], m.raw[d.Offsets[1]])
		if err != nil {
			return fmt.Errorf("set %q: %w", key, err)
		}
		m.raw[d.Offsets[0]], m.raw[d.Offsets[1]] = hi, lo
	case CodecChannel:
		b, err := EncodeChannel(v, m.raw[d.Offsets[0]])
		if err != nil {
			return fmt.Errorf("set %q: %w", key, err)
		}
		m.raw[d.Offsets[0]] = b
	case CodecMode:
		b, err := EncodeMode(v, m.raw[d.Offsets[0]])
		if err != nil {
			return fmt.Errorf("set %q: %w", key, err)
		}
		m.raw[d.Offsets[0]] = b
	}
	m.values[key] = v

	for c := range m.schema.All() {
		if c.Kind != Computed {
			continue
		}
		for _, dep := range c.DependsOn {
			if dep == key {
				sum := c.compute(m.raw)
				m.raw[c.Offsets[0]] = sum
				m.values[c.Key] = int(sum)
				break
			}
		}
	}
	return nil
}

// Encode returns the model's current raw bytes. With no mutations since
// Decode this is identical to the decoded buffer; after SetValue calls only
// the bytes owned by the mutated parameters (plus declared checksum bytes)
// differ. The returned slice is a copy.
func (m *Model) Encode() []byte {
	return append([]byte(nil), m.raw...)
}
