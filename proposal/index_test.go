package proposal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenIndexSwapRemove(t *testing.T) {
	var x OpenIndex
	for id := uint64(0); id < 5; id++ {
		x.Add(id)
	}

	require.True(t, x.Remove(1))
	// The last element takes the removed slot.
	require.Equal(t, []uint64{0, 4, 2, 3}, x.IDs())

	require.True(t, x.Remove(3))
	require.Equal(t, []uint64{0, 4, 2}, x.IDs())

	require.False(t, x.Remove(1))
	require.Equal(t, 3, x.Len())
	require.True(t, x.Contains(4))
	require.False(t, x.Contains(3))
}

func TestOpenIndexIDsIsCopy(t *testing.T) {
	var x OpenIndex
	x.Add(7)
	ids := x.IDs()
	ids[0] = 8
	require.True(t, x.Contains(7))
	require.Empty(t, (&OpenIndex{}).IDs())
}
