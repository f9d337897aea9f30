// Package dump decodes and re-encodes the SysEx setup dump of the
// controller while the format is only partially mapped.
//
// # Dump layout
//
// A dump is a single fixed-length SysEx frame:
//
//	[F0][VENDOR0][VENDOR1][VENDOR2][DEVICE][COMMAND][SETUP]....[F7]
//
// Only some byte positions inside the body have been confirmed. Known
// parameters are described by a Schema of Descriptors; every byte the
// schema does not claim is opaque and survives a decode/modify/encode
// cycle untouched. A Model therefore keeps the raw buffer as the single
// source of truth and mutates it in place through descriptor codecs --
// there is no rebuild-from-scratch encode path.
//
// # Encodings
//
// Three byte encodings recur throughout the body:
//
//   - CC numbers (0-127) are nibble-split: the high half of the value
//     sits in the low nibble of one byte, the low half in the low nibble
//     of the next. The high nibbles of both bytes carry unrelated state.
//   - Channels (1-16) are stored zero-based in a byte's low nibble.
//   - Control modes (0-15) occupy a byte's high nibble, sharing the byte
//     with one of the low-nibble fields.
//
// Encoding never touches a template byte's high nibble, which is what
// makes field-isolated round-tripping possible without modeling every
// bit of every byte.
//
// # Discovery
//
// DiffBytes, DiffModels and MarkerGroups support mapping new offsets:
// capture two dumps differing by one known edit on the hardware, diff
// them, and correlate the changed offsets against the recurring group
// marker to place the field inside a repeating control group.
package dump
