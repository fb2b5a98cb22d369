package parquet

import (
	"fmt"
	"testing"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/mitchellh/copystructure"
	"github.com/stretchr/testify/require"
)

// TestRoundTripDoesNotMutateInput guards the invariant that Shred only
// reads records: it deep-copies the canonical fixture with
// mitchellh/copystructure before shredding, then diffs the two dumps with
// hexops/gotextdiff on failure so a future regression is easy to read.
func TestRoundTripDoesNotMutateInput(t *testing.T) {
	records := canonicalRecords()
	before, err := copystructure.Copy(records)
	require.NoError(t, err)

	schema := canonicalSchema(t)
	_, err = Shred(records, schema)
	require.NoError(t, err)

	assertNoDiff(t, before, records)
}

// TestRoundTripAssembleShred checks assemble(shred(records, schema)) is
// structurally equivalent to records, up to the documented coercions
// (empty list vs. absent REPEATED field; byte slice vs. string).
func TestRoundTripAssembleShred(t *testing.T) {
	schema := canonicalSchema(t)
	records := canonicalRecords()

	table, err := Shred(records, schema)
	require.NoError(t, err)

	rows, err := Assemble(table)
	require.NoError(t, err)
	require.Len(t, rows, len(records))

	for i := range records {
		require.True(t, equivalentRecord(records[i], rows[i]), "row %d:\n%s", i, diffText(records[i], rows[i]))
	}
}

// equivalentRecord compares a shredded-and-reassembled record against its
// original under the coercions spec.md's invariant 4 documents: string
// values become []byte, and a present-but-empty or absent REPEATED field
// are interchangeable.
func equivalentRecord(original, got any) bool {
	switch o := original.(type) {
	case nil:
		if got == nil {
			return true
		}
		if list, ok := got.([]any); ok {
			return len(list) == 0
		}
		return false
	case string:
		g, ok := got.([]byte)
		return ok && string(g) == o
	case map[string]any:
		g, ok := got.(map[string]any)
		if !ok {
			return false
		}
		keys := map[string]bool{}
		for k := range o {
			keys[k] = true
		}
		for k := range g {
			keys[k] = true
		}
		for k := range keys {
			if !equivalentRecord(o[k], g[k]) {
				return false
			}
		}
		return true
	case []any:
		g, ok := got.([]any)
		if !ok {
			return false
		}
		if len(o) != len(g) {
			return false
		}
		for i := range o {
			if !equivalentRecord(o[i], g[i]) {
				return false
			}
		}
		return true
	case int:
		gi, ok := toInt64(got)
		return ok && gi == int64(o)
	default:
		return fmt.Sprint(o) == fmt.Sprint(got)
	}
}

func assertNoDiff(t *testing.T, before, after any) {
	t.Helper()
	if fmt.Sprintf("%#v", before) == fmt.Sprintf("%#v", after) {
		return
	}
	t.Fatalf("input was mutated:\n%s", diffText(before, after))
}

func diffText(before, after any) string {
	b, a := fmt.Sprintf("%#v", before), fmt.Sprintf("%#v", after)
	edits := myers.ComputeEdits(span.URIFromPath("before"), b, a)
	return fmt.Sprint(gotextdiff.ToUnified("before", "after", b, edits))
}
