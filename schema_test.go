package parquet

import (
	"testing"

	"github.com/klahnakoski/mo-parquet/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndLookup(t *testing.T) {
	root := NewSchema()

	_, err := root.Add("DocId", []Repetition{Required}, LeafType{Physical: format.Int64})
	require.NoError(t, err)
	_, err = root.AddGroup("Links", Optional)
	require.NoError(t, err)
	_, err = root.Add("Links.Forward", []Repetition{Repeated}, LeafType{Physical: format.Int64})
	require.NoError(t, err)

	docID, ok := root.Lookup("DocId")
	require.True(t, ok)
	assert.True(t, docID.IsLeaf())
	assert.Equal(t, Required, docID.Repetition())

	forward, ok := root.Lookup("Links.Forward")
	require.True(t, ok)
	assert.True(t, forward.IsLeaf())
	assert.Equal(t, 2, root.MaxDefinitionLevel("Links.Forward"))
	assert.Equal(t, 1, root.MaxRepetitionLevel("Links.Forward"))

	_, ok = root.Lookup("NoSuchField")
	assert.False(t, ok)
}

func TestAddGroupSetsInteriorRepetition(t *testing.T) {
	root := NewSchema()
	_, err := root.AddGroup("Name", Repeated)
	require.NoError(t, err)
	_, err = root.Add("Name.Url", []Repetition{Optional}, LeafType{Physical: format.ByteArray, Logical: &utf8})
	require.NoError(t, err)

	name, ok := root.Lookup("Name")
	require.True(t, ok)
	assert.False(t, name.IsLeaf())
	assert.Equal(t, Repeated, name.Repetition())

	// Name(REPEATED) + Url(OPTIONAL): both non-REQUIRED, contributing one
	// definition level each, and Name alone contributing the repetition level.
	assert.Equal(t, 2, root.MaxDefinitionLevel("Name.Url"))
	assert.Equal(t, 1, root.MaxRepetitionLevel("Name.Url"))

	_, err = root.AddGroup("Name", Optional)
	assert.IsType(t, &RedefinitionError{}, err)
}

func TestAddRejectsRedefinition(t *testing.T) {
	root := NewSchema()
	_, err := root.Add("A", []Repetition{Required}, LeafType{Physical: format.Int64})
	require.NoError(t, err)
	_, err = root.Add("A", []Repetition{Required}, LeafType{Physical: format.Int64})
	require.Error(t, err)
	assert.IsType(t, &RedefinitionError{}, err)
}

func TestMultiLevelRepetitionSynthetic(t *testing.T) {
	root := NewSchema()
	_, err := root.Add("v", []Repetition{Repeated, Optional}, LeafType{Physical: format.Int64})
	require.NoError(t, err)

	outer, ok := root.children["v"]
	require.True(t, ok)
	assert.Equal(t, ".", outer.name)
	assert.Equal(t, Repeated, outer.repetition)

	inner, ok := outer.children["."]
	require.True(t, ok)
	assert.Equal(t, "v", inner.name)
	assert.Equal(t, Optional, inner.repetition)
	assert.True(t, inner.IsLeaf())

	assert.Equal(t, 2, root.MaxDefinitionLevel("v"))
	assert.Equal(t, 1, root.MaxRepetitionLevel("v"))
	assert.Equal(t, []string{"v"}, root.Leaves())
}

func TestLockPreventsGrowth(t *testing.T) {
	root := NewSchema()
	_, err := root.Add("A", []Repetition{Required}, LeafType{Physical: format.Int64})
	require.NoError(t, err)
	root.Lock()
	assert.True(t, root.Locked())

	a, _ := root.Lookup("A")
	assert.True(t, a.Locked())
}

func TestParquetMetadataRoundTrip(t *testing.T) {
	root := NewSchema()
	_, err := root.Add("DocId", []Repetition{Required}, LeafType{Physical: format.Int64})
	require.NoError(t, err)
	_, err = root.Add("Name.Url", []Repetition{Optional}, LeafType{Physical: format.ByteArray, Logical: &utf8})
	require.NoError(t, err)

	elements := root.ToParquetMetadata()
	require.NotEmpty(t, elements)
	assert.Equal(t, ".", elements[0].Name)

	restored, err := FromParquetMetadata(elements)
	require.NoError(t, err)

	docID, ok := restored.Lookup("DocId")
	require.True(t, ok)
	assert.Equal(t, Required, docID.Repetition())
	assert.Equal(t, format.Int64, docID.LeafType().Physical)

	url, ok := restored.Lookup("Name.Url")
	require.True(t, ok)
	assert.Equal(t, Optional, url.Repetition())
}
