package dump

import "fmt"

// Confirmed layout constants for the current firmware revision.
const (
	// DumpLen is the fixed length of one setup dump.
	DumpLen = 1700

	// MarkerByte introduces each encoder group inside the body.
	MarkerByte = 0x4D

	// GroupSize is the number of parameter bytes following a group marker.
	GroupSize = 6

	// Encoder groups repeat with a fixed stride: marker, six parameter
	// bytes. Group n starts at groupBase + n*groupStride.
	groupBase   = 26
	groupStride = 7

	// EncoderCount is the number of encoder groups mapped so far.
	EncoderCount = 16

	// globalChannelIdx holds the setup-wide MIDI channel.
	globalChannelIdx = 7
)

// Header positions. The vendor bytes follow the start marker; decode does
// not enforce them because captures from pre-release firmware disagree on
// the device byte.
const (
	vendorIdx  = 1
	deviceIdx  = 4
	commandIdx = 5
	setupIdx   = 6
)

var vendorID = []byte{0x00, 0x21, 0x6B}

func mustRegister(s *Schema, d Descriptor) {
	if err := s.Register(d); err != nil {
		panic(fmt.Sprintf("builtin schema: %v", err))
	}
}

// ControllerSchema returns a fresh registry holding every parameter
// confirmed so far, in the order the offsets were established. Offsets
// inside an encoder group, relative to its marker: +1/+2 CC number
// (nibble-split), +3 channel. The high nibbles of all three bytes carry
// state not yet mapped.
func ControllerSchema() *Schema {
	s := NewSchema(DumpLen)

	mustRegister(s, Descriptor{
		Key:     "global.channel",
		Codec:   CodecChannel,
		Offsets: []int{globalChannelIdx},
	})

	for i := 0; i < EncoderCount; i++ {
		base := groupBase + i*groupStride
		key := fmt.Sprintf("enc%02d", i+1)
		mustRegister(s, Descriptor{
			Key:     key + ".cc",
			Codec:   CodecCC,
			Offsets: []int{base + 1, base + 2},
		})
		mustRegister(s, Descriptor{
			Key:     key + ".channel",
			Codec:   CodecChannel,
			Offsets: []int{base + 3},
		})
	}

	return s
}
