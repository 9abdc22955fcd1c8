package index

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viert/uidstore/errdefs"
)

func TestWriteGrowsEmptyIndex(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Write("lock", 0, []byte{0x01}))

	data, err := ix.Read("lock", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, data)
	assert.Equal(t, 1, ix.Count())

	name, err := ix.NameAt(0)
	require.NoError(t, err)
	assert.Equal(t, "lock", name)
}

func TestReadPastEnd(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Write("cal", 0, []byte{1, 2, 3, 4}))

	data, err := ix.Read("cal", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 4}, data)

	data, err = ix.Read("cal", 4, 1)
	require.NoError(t, err)
	assert.Empty(t, data)

	data, err = ix.Read("cal", 100, 1)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestReadRejectsNegativeArguments(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Write("cal", 0, []byte{1}))

	_, err := ix.Read("cal", -1, 1)
	assert.True(t, errdefs.IsInvalidArgument(err))
	_, err = ix.Read("cal", 0, -1)
	assert.True(t, errdefs.IsInvalidArgument(err))
}

func TestReadMissing(t *testing.T) {
	ix := New()
	_, err := ix.Read("nope", 0, 1)
	assert.True(t, errdefs.IsNotFound(err))
	_, err = ix.DataLength("nope")
	assert.True(t, errdefs.IsNotFound(err))
}

func TestReadReturnsCopy(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Write("k", 0, []byte("abc")))
	data, err := ix.Read("k", 0, 3)
	require.NoError(t, err)
	data[0] = 'z'

	again, err := ix.Read("k", 0, 3)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestSparseWriteZeroFillsGap(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Write("k", 0, []byte{0xaa, 0xbb}))
	require.NoError(t, ix.Write("k", 5, []byte{0xcc}))

	n, err := ix.DataLength("k")
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	data, err := ix.Read("k", 0, 6)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xaa, 0xbb, 0, 0, 0, 0xcc}, data)
}

func TestOverwriteInPlace(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Write("k", 0, []byte("hello world")))
	require.NoError(t, ix.Write("k", 6, []byte("WORLD")))

	data, err := ix.Read("k", 0, 100)
	require.NoError(t, err)
	assert.Equal(t, "hello WORLD", string(data))
}

func TestWriteLimits(t *testing.T) {
	ix := New()
	err := ix.Write("k", MaxDataLen, []byte{1})
	assert.True(t, errdefs.IsInvalidArgument(err))

	err = ix.Write(string(bytes.Repeat([]byte("n"), MaxNameLen+1)), 0, []byte{1})
	assert.True(t, errdefs.IsInvalidArgument(err))

	err = ix.Write("k", -1, []byte{1})
	assert.True(t, errdefs.IsInvalidArgument(err))
	assert.Equal(t, 0, ix.Count())

	require.NoError(t, ix.Write("k", 0, make([]byte, MaxDataLen)))
}

func TestWriteHugeOffset(t *testing.T) {
	ix := New()
	for _, offset := range []int{math.MaxInt, math.MaxInt - MaxDataLen, MaxDataLen + 1} {
		assert.NotPanics(t, func() {
			err := ix.Write("lock", offset, []byte{1})
			assert.True(t, errdefs.IsInvalidArgument(err), "offset %d: got %v", offset, err)
		})
	}
	assert.Equal(t, 0, ix.Count())
	_, err := ix.Find("lock")
	assert.True(t, errdefs.IsNotFound(err))

	// an existing entry is left as it was
	require.NoError(t, ix.Write("lock", 0, []byte{7}))
	err = ix.Write("lock", math.MaxInt, []byte{1})
	assert.True(t, errdefs.IsInvalidArgument(err))
	data, err := ix.Read("lock", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, data)
}

func TestRemove(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Write("x", 0, []byte{9}))
	before := ix.Count()

	require.NoError(t, ix.Write("a", 0, []byte{1}))
	require.NoError(t, ix.Remove("a"))

	_, err := ix.Find("a")
	assert.True(t, errdefs.IsNotFound(err))
	assert.Equal(t, before, ix.Count())

	assert.True(t, errdefs.IsNotFound(ix.Remove("a")))
}

func TestEnumerationOrder(t *testing.T) {
	ix := New()
	for _, n := range []string{"c", "a", "b"} {
		require.NoError(t, ix.Write(n, 0, []byte(n)))
	}
	require.NoError(t, ix.Remove("a"))
	require.NoError(t, ix.Write("a", 0, []byte("again")))

	var names []string
	for i := 0; i < ix.Count(); i++ {
		name, err := ix.NameAt(i)
		require.NoError(t, err)
		names = append(names, name)
	}
	assert.Equal(t, []string{"c", "b", "a"}, names)

	_, err := ix.NameAt(ix.Count())
	assert.True(t, errdefs.IsNotFound(err))
	_, err = ix.NameAt(-1)
	assert.True(t, errdefs.IsNotFound(err))
}

func TestInsertRejectsDuplicates(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Insert("a", []byte{1}))
	assert.True(t, errdefs.IsFormat(ix.Insert("a", []byte{2})))
}

func TestResetAndClone(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Write("a", 0, []byte{1}))
	require.NoError(t, ix.Write("b", 0, []byte{2}))

	snap := ix.Clone()
	ix.Reset()
	assert.Equal(t, 0, ix.Count())
	assert.Equal(t, 2, snap.Count())

	require.NoError(t, snap.Write("a", 0, []byte{7}))
	ix.Reset()
	_, err := ix.Find("a")
	assert.True(t, errdefs.IsNotFound(err))

	data, err := snap.Read("a", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, data)
}
