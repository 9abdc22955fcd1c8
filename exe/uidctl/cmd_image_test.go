package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viert/uidstore/container"
	"github.com/viert/uidstore/errdefs"
	"github.com/viert/uidstore/index"
)

func writeFile(t *testing.T, dir string, name string, data []byte) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestPackUnpack(t *testing.T) {
	src := t.TempDir()
	mac := writeFile(t, src, "mac.bin", []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55})
	serial := writeFile(t, src, "serial.txt", []byte("SN-0001"))

	buf, err := buildImage([]string{"mac=" + mac, "serial=" + serial}, 4096)
	require.NoError(t, err)
	require.Len(t, buf, 4096)
	assert.Equal(t, byte(0xff), buf[len(buf)-1])

	ix, err := container.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, ix.Count())

	dst := filepath.Join(t.TempDir(), "out")
	n, err := extractImage(buf, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(filepath.Join(dst, "serial"))
	require.NoError(t, err)
	assert.Equal(t, []byte("SN-0001"), data)
	data, err = os.ReadFile(filepath.Join(dst, "mac"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}, data)
}

func TestPackErrors(t *testing.T) {
	src := t.TempDir()
	f := writeFile(t, src, "a", []byte("abc"))

	_, err := buildImage([]string{"noequals"}, 0)
	assert.True(t, errdefs.IsInvalidArgument(err))

	_, err = buildImage([]string{"a=" + f, "a=" + f}, 0)
	assert.True(t, errdefs.IsFormat(err))

	_, err = buildImage([]string{"a=" + f}, 16)
	assert.True(t, errdefs.IsOutOfMemory(err))

	_, err = buildImage([]string{"a=" + filepath.Join(src, "missing")}, 0)
	assert.Error(t, err)
}

func TestUnpackRejectsPathNames(t *testing.T) {
	ix := index.New()
	require.NoError(t, ix.Insert("../escape", []byte("x")))
	buf, err := container.Encode(ix)
	require.NoError(t, err)

	_, err = extractImage(buf, t.TempDir())
	assert.True(t, errdefs.IsInvalidArgument(err))
}

func TestUnpackCorruptImage(t *testing.T) {
	buf, err := buildImage(nil, 0)
	require.NoError(t, err)
	buf[len(buf)-1] ^= 0x01

	_, err = extractImage(buf, t.TempDir())
	assert.True(t, errdefs.IsCorrupt(err))
}
