package parquet

import (
	"testing"

	"github.com/klahnakoski/mo-parquet/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleCanonicalExample(t *testing.T) {
	schema := canonicalSchema(t)
	table, err := Shred(canonicalRecords(), schema)
	require.NoError(t, err)

	rows, err := Assemble(table)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	row0 := rows[0].(map[string]any)
	assert.Equal(t, int64(10), row0["DocId"])

	links0 := row0["Links"].(map[string]any)
	assert.Equal(t, []any{int64(20), int64(40), int64(60)}, links0["Forward"])
	assert.Equal(t, []any{}, links0["Backward"])

	names0 := row0["Name"].([]any)
	require.Len(t, names0, 3)

	name0 := names0[0].(map[string]any)
	assert.Equal(t, []byte("http://A"), name0["Url"])
	langs0 := name0["Language"].([]any)
	require.Len(t, langs0, 2)
	assert.Equal(t, []byte("en-us"), langs0[0].(map[string]any)["Code"])
	assert.Equal(t, []byte("us"), langs0[0].(map[string]any)["Country"])
	assert.Equal(t, []byte("en"), langs0[1].(map[string]any)["Code"])
	_, hasCountry := langs0[1].(map[string]any)["Country"]
	assert.False(t, hasCountry)

	name1 := names0[1].(map[string]any)
	assert.Equal(t, []byte("http://B"), name1["Url"])
	assert.Equal(t, []any{}, name1["Language"])

	name2 := names0[2].(map[string]any)
	_, hasURL := name2["Url"]
	assert.False(t, hasURL)
	langs2 := name2["Language"].([]any)
	require.Len(t, langs2, 1)
	assert.Equal(t, []byte("en-gb"), langs2[0].(map[string]any)["Code"])
	assert.Equal(t, []byte("gb"), langs2[0].(map[string]any)["Country"])

	row1 := rows[1].(map[string]any)
	assert.Equal(t, int64(20), row1["DocId"])
	links1 := row1["Links"].(map[string]any)
	assert.Equal(t, []any{int64(80)}, links1["Forward"])
	assert.Equal(t, []any{int64(10), int64(30)}, links1["Backward"])
	names1 := row1["Name"].([]any)
	require.Len(t, names1, 1)
	assert.Equal(t, []byte("http://C"), names1[0].(map[string]any)["Url"])
}

func TestAssembleSingletonRepeatedOfOptional(t *testing.T) {
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

	rows, err := Assemble(table)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []any{}, rows[0].(map[string]any)["v"])
	assert.Equal(t, []any{}, rows[1].(map[string]any)["v"])
	assert.Equal(t, []any{nil}, rows[2].(map[string]any)["v"])
	assert.Equal(t, []any{nil, nil}, rows[3].(map[string]any)["v"])
}
