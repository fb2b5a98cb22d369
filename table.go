package parquet

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Table is the read-only bundle a shred produces and an assemble
// consumes: one values/reps/defs triple per leaf path, the row count, and
// the schema that gave the paths meaning (spec.md §4.5).
type Table struct {
	Values  map[string][]any
	Reps    map[string][]int
	Defs    map[string][]int
	NumRows int
	Schema  *Node
}

// Column is a single leaf's projection out of a Table.
type Column struct {
	Name               string
	Values             []any
	Reps               []int
	Defs               []int
	NumRows            int
	MaxRepetitionLevel int
	MaxDefinitionLevel int
}

// GetColumn projects a single leaf out of the table.
func (t *Table) GetColumn(path string) (Column, bool) {
	values, ok := t.Values[path]
	if !ok {
		return Column{}, false
	}
	return Column{
		Name:               path,
		Values:             values,
		Reps:               t.Reps[path],
		Defs:               t.Defs[path],
		NumRows:            t.NumRows,
		MaxRepetitionLevel: t.Schema.MaxRepetitionLevel(path),
		MaxDefinitionLevel: t.Schema.MaxDefinitionLevel(path),
	}, true
}

// Select returns a Table restricted to leaves whose path starts with
// prefix (spec.md §4.5).
func (t *Table) Select(prefix string) *Table {
	out := &Table{
		Values:  map[string][]any{},
		Reps:    map[string][]int{},
		Defs:    map[string][]int{},
		NumRows: t.NumRows,
		Schema:  t.Schema,
	}
	for path := range t.Values {
		if path == prefix || strings.HasPrefix(path, prefix+".") {
			out.Values[path] = t.Values[path]
			out.Reps[path] = t.Reps[path]
			out.Defs[path] = t.Defs[path]
		}
	}
	return out
}

// Slice returns the row-range [start,stop) by counting rep==0 boundaries
// per spec.md §4.5; it is O(total entries) in the worst case.
func (t *Table) Slice(start, stop int) *Table {
	if start == 0 && stop == t.NumRows {
		return t
	}

	out := &Table{
		Values:  map[string][]any{},
		Reps:    map[string][]int{},
		Defs:    map[string][]int{},
		NumRows: stop - start,
		Schema:  t.Schema,
	}

	for path, reps := range t.Reps {
		defs := t.Defs[path]
		values := t.Values[path]

		first, last := len(reps), len(reps)
		counter := 0
		valueFirst, valueLast := len(values), len(values)
		vi := 0
		found := false
		for i, r := range reps {
			if r == 0 {
				if counter == start {
					first, valueFirst = i, vi
					found = true
				} else if counter == stop {
					last, valueLast = i, vi
					break
				}
				counter++
			}
			if defs[i] == t.Schema.MaxDefinitionLevel(path) {
				vi++
			}
		}
		if found && last == len(reps) {
			valueLast = len(values)
		}

		out.Reps[path] = append([]int(nil), reps[first:last]...)
		out.Defs[path] = append([]int(nil), defs[first:last]...)
		out.Values[path] = append([]any(nil), values[valueFirst:valueLast]...)
	}

	return out
}

// Equal compares two tables by their columnar arrays and row count; it
// does not compare schema identity beyond the set of leaves.
func (t *Table) Equal(other *Table) bool {
	if t.NumRows != other.NumRows {
		return false
	}
	if len(t.Values) != len(other.Values) {
		return false
	}
	for path, values := range t.Values {
		ov, ok := other.Values[path]
		if !ok || !equalAnySlice(values, ov) {
			return false
		}
		if !equalIntSlice(t.Reps[path], other.Reps[path]) {
			return false
		}
		if !equalIntSlice(t.Defs[path], other.Defs[path]) {
			return false
		}
	}
	return true
}

func equalIntSlice(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalAnySlice(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalAnyValue(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalAnyValue(a, b any) bool {
	ab, aok := a.([]byte)
	bb, bok := b.([]byte)
	if aok && bok {
		return bytes.Equal(ab, bb)
	}
	return a == b
}

// String renders a human-readable columnar dump of the table using
// github.com/olekukonko/tablewriter, in the spirit of the teacher's own
// schema pretty-printer (print.go) — here applied to populated data
// rather than to the bare schema tree.
func (t *Table) String() string {
	var buf bytes.Buffer
	w := tablewriter.NewWriter(&buf)
	w.SetAutoFormatHeaders(false)

	leaves := append([]string(nil), t.Schema.Leaves()...)
	sort.Strings(leaves)
	w.SetHeader(append([]string{"#"}, leaves...))

	cols := make(map[string][]any, len(leaves))
	for _, leaf := range leaves {
		cols[leaf] = t.Values[leaf]
	}

	maxLen := 0
	for _, leaf := range leaves {
		if n := len(cols[leaf]); n > maxLen {
			maxLen = n
		}
	}

	for i := 0; i < maxLen; i++ {
		row := []string{fmt.Sprint(i)}
		for _, leaf := range leaves {
			if i < len(cols[leaf]) {
				row = append(row, fmt.Sprint(cols[leaf][i]))
			} else {
				row = append(row, "")
			}
		}
		w.Append(row)
	}

	w.Render()
	return buf.String()
}
