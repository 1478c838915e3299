package util

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

func TestMaskIdentifier(t *testing.T) {
	cases := map[string]string{
		"":                  "",
		"bob":               "***",
		"Alice":             "a…e",
		"alice@example.com": "a…@e….com",
	}
	for in, want := range cases {
		require.Equal(t, want, MaskIdentifier(in), in)
	}
}

func TestNewULID_SortableAndUnique(t *testing.T) {
	at := time.Unix(1700000000, 0).UTC()
	a := NewULIDAt(at)
	b := NewULIDAt(at)
	require.NotEqual(t, a, b)
	require.Less(t, a, b)

	parsed, err := ulid.Parse(NewULID())
	require.NoError(t, err)
	require.NotEqual(t, ulid.ULID{}, parsed)
}
