package parquet

import (
	"testing"

	"github.com/klahnakoski/mo-parquet/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// canonicalSchema builds the DocId/Links/Name schema from spec.md §8's
// canonical worked example: a REQUIRED int64 DocId, an OPTIONAL Links
// group with REPEATED Forward/Backward int64 leaves, and a REPEATED Name
// group whose Url is OPTIONAL and whose Language is itself a REPEATED
// group of Code/Country strings.
func canonicalSchema(t *testing.T) *Node {
	t.Helper()
	root := NewSchema()

	_, err := root.Add("DocId", []Repetition{Required}, LeafType{Physical: format.Int64})
	require.NoError(t, err)

	_, err = root.AddGroup("Name", Repeated)
	require.NoError(t, err)
	_, err = root.Add("Name.Url", []Repetition{Optional}, LeafType{Physical: format.ByteArray, Logical: &utf8})
	require.NoError(t, err)

	_, err = root.AddGroup("Links", Optional)
	require.NoError(t, err)
	_, err = root.Add("Links.Forward", []Repetition{Repeated}, LeafType{Physical: format.Int64})
	require.NoError(t, err)
	_, err = root.Add("Links.Backward", []Repetition{Repeated}, LeafType{Physical: format.Int64})
	require.NoError(t, err)

	_, err = root.AddGroup("Name.Language", Repeated)
	require.NoError(t, err)
	_, err = root.Add("Name.Language.Code", []Repetition{Required}, LeafType{Physical: format.ByteArray, Logical: &utf8})
	require.NoError(t, err)
	_, err = root.Add("Name.Language.Country", []Repetition{Optional}, LeafType{Physical: format.ByteArray, Logical: &utf8})
	require.NoError(t, err)

	return root
}

func canonicalRecords() []any {
	return []any{
		map[string]any{
			"DocId": 10,
			"Links": map[string]any{"Forward": []any{20, 40, 60}},
			"Name": []any{
				map[string]any{
					"Url": "http://A",
					"Language": []any{
						map[string]any{"Code": "en-us", "Country": "us"},
						map[string]any{"Code": "en"},
					},
				},
				map[string]any{"Url": "http://B"},
				map[string]any{
					"Language": []any{
						map[string]any{"Code": "en-gb", "Country": "gb"},
					},
				},
			},
		},
		map[string]any{
			"DocId": 20,
			"Links": map[string]any{"Backward": []any{10, 30}, "Forward": []any{80}},
			"Name": []any{
				map[string]any{"Url": "http://C"},
			},
		},
	}
}

func TestShredCanonicalExample(t *testing.T) {
	schema := canonicalSchema(t)
	table, err := Shred(canonicalRecords(), schema)
	require.NoError(t, err)
	assert.Equal(t, 2, table.NumRows)

	cases := []struct {
		path   string
		values []any
		reps   []int
		defs   []int
	}{
		{"DocId", []any{int64(10), int64(20)}, []int{0, 0}, []int{0, 0}},
		{"Links.Backward", []any{int64(10), int64(30)}, []int{0, 0, 1}, []int{1, 2, 2}},
		{"Links.Forward", []any{int64(20), int64(40), int64(60), int64(80)}, []int{0, 1, 1, 0}, []int{2, 2, 2, 2}},
		{"Name.Url", []any{[]byte("http://A"), []byte("http://B"), []byte("http://C")}, []int{0, 1, 1, 0}, []int{2, 2, 1, 2}},
		{"Name.Language.Code", []any{[]byte("en-us"), []byte("en"), []byte("en-gb")}, []int{0, 2, 1, 1, 0}, []int{2, 2, 1, 2, 1}},
		{"Name.Language.Country", []any{[]byte("us"), []byte("gb")}, []int{0, 2, 1, 1, 0}, []int{3, 2, 1, 3, 1}},
	}

	for _, c := range cases {
		col, ok := table.GetColumn(c.path)
		require.True(t, ok, c.path)
		assert.Equal(t, c.values, col.Values, "%s values", c.path)
		assert.Equal(t, c.reps, col.Reps, "%s reps", c.path)
		assert.Equal(t, c.defs, col.Defs, "%s defs", c.path)
	}
}

func TestShredRequiredFieldNullIsStructuralError(t *testing.T) {
	schema := canonicalSchema(t)
	_, err := Shred([]any{map[string]any{"DocId": nil}}, schema)
	require.Error(t, err)
	assert.IsType(t, &StructuralError{}, err)
}

func TestShredLockedSchemaRejectsUnknownField(t *testing.T) {
	schema := canonicalSchema(t)
	schema.Lock()
	_, err := Shred([]any{map[string]any{"DocId": 1, "Unexpected": "oops"}}, schema)
	require.Error(t, err)
	assert.IsType(t, &SchemaClosedError{}, err)
}

func TestShredSingletonRepeatedOfOptional(t *testing.T) {
	root := NewSchema()
	_, err := root.Add("v", []Repetition{Repeated, Optional}, LeafType{Physical: format.Int64})
	require.NoError(t, err)

	records := []any{
		map[string]any{"v": nil},
		map[string]any{"v": []any{}},
		map[string]any{"v": []any{nil}},
		map[string]any{"v": []any{nil, nil}},
	}

	table, err := Shred(records, root)
	require.NoError(t, err)

	col, ok := table.GetColumn("v")
	require.True(t, ok)
	assert.Equal(t, []any{}, col.Values)
	assert.Equal(t, []int{0, 0, 0, 0, 1}, col.Reps)
	assert.Equal(t, []int{0, 0, 1, 1, 1}, col.Defs)
}

func TestShredAutoGrowsUnlockedSchema(t *testing.T) {
	records := []any{
		map[string]any{"a": 1, "b": "x"},
		map[string]any{"a": 2, "c": map[string]any{"d": 3}},
	}
	table, err := Shred(records, nil)
	require.NoError(t, err)

	a, ok := table.GetColumn("a")
	require.True(t, ok)
	assert.Equal(t, []any{int64(1), int64(2)}, a.Values)

	cd, ok := table.GetColumn("c.d")
	require.True(t, ok)
	assert.Equal(t, []int{0, 0}, cd.Reps)
	assert.Equal(t, []int{0, 2}, cd.Defs)
	assert.Equal(t, []any{int64(3)}, cd.Values)
}
