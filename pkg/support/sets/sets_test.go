package sets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	s := Make[int]()
	require.False(t, s.Has(3))
	s.Insert(3, 7)
	require.True(t, s.Has(3))
	require.True(t, s.Has(7))
	require.Len(t, s, 2)

	s2 := MakeWith("a", "b", "a")
	require.Len(t, s2, 2)
	require.True(t, s2.Has("a"))
	require.False(t, s2.Has("c"))
}
