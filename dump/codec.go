package dump

import "fmt"

// Value domains of the primitive encodings.
const (
	MinCC      = 0
	MaxCC      = 127
	MinChannel = 1
	MaxChannel = 16
	MinMode    = 0
	MaxMode    = 15
)

// DecodeCC reassembles a 0-127 value nibble-split across two body bytes.
// hi carries the upper half of the value in its low nibble, lo the lower half.
func DecodeCC(hi, lo byte) int {
	return int(hi&0x0F)<<4 | int(lo&0x0F)
}

// EncodeCC writes v into the low nibbles of the two template bytes and
// returns the results. The high nibbles of hi and lo carry unrelated state
// and are preserved verbatim. Fails with ErrInvalidDomain for v outside
// 0-127, returning the templates unchanged.
func EncodeCC(v int, hi, lo byte) (byte, byte, error) {
	if v < MinCC || v > MaxCC {
		return hi, lo, fmt.Errorf("cc value %d: %w", v, ErrInvalidDomain)
	}
	return hi&0xF0 | byte(v>>4), lo&0xF0 | byte(v&0x0F), nil
}

// DecodeChannel reads a 1-16 MIDI channel stored zero-based in the low
// nibble of b.
func DecodeChannel(b byte) int {
	return int(b&0x0F) + 1
}

// EncodeChannel writes ch into the low nibble of the template byte,
// preserving its high nibble. Fails with ErrInvalidDomain for ch outside
// 1-16, returning the template unchanged.
func EncodeChannel(ch int, b byte) (byte, error) {
	if ch < MinChannel || ch > MaxChannel {
		return b, fmt.Errorf("channel %d: %w", ch, ErrInvalidDomain)
	}
	return b&0xF0 | byte(ch-1), nil
}

// DecodeMode reads a 0-15 mode value from the high nibble of b. The mode
// bits of a control are believed to share a byte with its nibble-split CC
// halves; a mode descriptor therefore owns only the high nibble.
func DecodeMode(b byte) int {
	return int(b >> 4)
}

// EncodeMode writes mode into the high nibble of the template byte,
// preserving its low nibble. Fails with ErrInvalidDomain for mode outside
// 0-15, returning the template unchanged.
func EncodeMode(mode int, b byte) (byte, error) {
	if mode < MinMode || mode > MaxMode {
		return b, fmt.Errorf("mode %d: %w", mode, ErrInvalidDomain)
	}
	return b&0x0F | byte(mode)<<4, nil
}

// AlgoSum7 names the 7-bit additive checksum for computed-descriptor
// registration and schema files.
const AlgoSum7 = "sum7"

// Checksum7 sums data modulo 128, the checksum family used by this device
// class. Whether the dump actually carries a checksum byte is unconfirmed;
// the function exists so a computed descriptor can declare it once the
// offset is found.
func Checksum7(data []byte) byte {
	var chk byte
	for _, b := range data {
		chk = (chk + b) & 0x7F
	}
	return chk
}
