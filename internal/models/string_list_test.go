package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListScanRejectsNonArrays(t *testing.T) {
	var l StringList

	assert.Error(t, l.Scan(`"2 eggs, flour"`))
	assert.Error(t, l.Scan(`{"a": "b"}`))
	assert.Error(t, l.Scan(42))
}

func TestStringListScan(t *testing.T) {
	var l StringList

	require.NoError(t, l.Scan([]byte(`["2 eggs","flour"]`)))
	assert.Equal(t, StringList{"2 eggs", "flour"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Empty(t, l)
	assert.NotNil(t, l)
}

func TestStringListValue(t *testing.T) {
	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = StringList{"salt", "pepper"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["salt","pepper"]`, v)
}

func TestStringListClean(t *testing.T) {
	l := StringList{"  flour ", "", "   ", "water"}
	assert.Equal(t, StringList{"flour", "water"}, l.Clean())
}
