package dump

import "iter"

// Absent marks a diff side that has no byte because the buffers differ in
// length. Kept as -1 in an int field so reports marshal cleanly to JSON.
const Absent = -1

// ByteDiff records one differing position between two buffers.
type ByteDiff struct {
	Offset int `json:"offset"`
	A      int `json:"a"`
	B      int `json:"b"`
}

// DiffBytes compares two byte sequences position by position up to the
// longer length, reporting differing positions in ascending offset order.
// Positions past the shorter sequence report that side as Absent; a length
// mismatch is diagnostic, not an error.
func DiffBytes(a, b []byte) []ByteDiff {
	n := max(len(a), len(b))
	var out []ByteDiff
	for i := 0; i < n; i++ {
		av, bv := Absent, Absent
		if i < len(a) {
			av = int(a[i])
		}
		if i < len(b) {
			bv = int(b[i])
		}
		if av != bv {
			out = append(out, ByteDiff{Offset: i, A: av, B: bv})
		}
	}
	return out
}

// FieldDiff records one parameter whose decoded value differs between two
// models.
type FieldDiff struct {
	Key string `json:"key"`
	A   int    `json:"a"`
	B   int    `json:"b"`
}

// ModelDiff is the two-level comparison of a pair of models.
type ModelDiff struct {
	Bytes  []ByteDiff  `json:"bytes"`
	Fields []FieldDiff `json:"fields"`
}

// DiffModels diffs the raw buffers of two models and, for every key decoded
// in both, their values. A controlled single-field hardware edit should
// yield a byte diff confined to one descriptor's offsets and a field diff
// naming exactly that key; anything else means the schema's prediction for
// the edit is wrong or incomplete. Field order follows a's schema.
func DiffModels(a, b *Model) ModelDiff {
	d := ModelDiff{Bytes: DiffBytes(a.raw, b.raw)}
	for desc := range a.schema.All() {
		av, ok := a.values[desc.Key]
		if !ok {
			continue
		}
		bv, err := b.Value(desc.Key)
		if err != nil {
			continue
		}
		if av != bv {
			d.Fields = append(d.Fields, FieldDiff{Key: desc.Key, A: av, B: bv})
		}
	}
	return d
}

// MarkerGroup is one occurrence of the group marker byte and the block that
// conventionally follows it.
type MarkerGroup struct {
	Offset   int    `json:"offset"`
	Trailing []byte `json:"trailing"`
}

// MarkerGroups scans raw for every occurrence of marker and yields its
// offset plus the groupSize bytes following it, in ascending offset order.
// The trailing block is truncated at the end of the buffer. The sequence is
// lazy and restartable, so discovery sessions can re-run it as a query
// rather than keeping scan state around.
func MarkerGroups(raw []byte, marker byte, groupSize int) iter.Seq[MarkerGroup] {
	return func(yield func(MarkerGroup) bool) {
		groupSize = max(groupSize, 0)
		for i, b := range raw {
			if b != marker {
				continue
			}
			end := min(i+1+groupSize, len(raw))
			g := MarkerGroup{
				Offset:   i,
				Trailing: append([]byte(nil), raw[i+1:end]...),
			}
			if !yield(g) {
				return
			}
		}
	}
}
