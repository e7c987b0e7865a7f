package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowSetPreservesOrder(t *testing.T) {
	row := NewRow()
	row.Set("b", 1)
	row.Set("a", 2)
	row.Set("c", 3)

	assert.Equal(t, []string{"b", "a", "c"}, row.Fields())
	assert.Equal(t, 3, row.Len())
}

func TestRowSetLastWriteWins(t *testing.T) {
	row := NewRow()
	row.Set("a", 1)
	row.Set("b", 2)
	row.Set("a", 3)

	assert.Equal(t, []string{"a", "b"}, row.Fields())
	assert.Equal(t, 3, row.Value("a"))
}

func TestRowGetAbsent(t *testing.T) {
	row := NewRow()
	row.Set("a", 1)

	_, ok := row.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, row.Value("missing"))
}

func TestRowMarshalJSONOrdered(t *testing.T) {
	row := NewRow()
	row.Set("z", 1)
	row.Set("a", "two")
	row.Set("m", 3.5)

	data, err := row.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":"two","m":3.5}`, string(data))
}
