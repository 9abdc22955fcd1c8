package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viert/uidstore/media"
	"github.com/viert/uidstore/storage"
)

const (
	nandCfg = `[main]
bind = "0.0.0.0:7071"
log = "/var/log/uidstore.log"
level = "debug"
save_on_exit = true

[media]
kind = "nand"
device = "/dev/mtd3"

[store]
offset = 131072
size = 65536
load_size = 2048
on_corrupt = "empty"
verify = true
`
	minimalCfg = `[media]
kind = "block"
device = "/dev/mmcblk0p5"
sector_size = 4096

[store]
size = 8192
`
)

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(strings.NewReader(nandCfg))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:7071", cfg.Bind)
	assert.Equal(t, "/var/log/uidstore.log", cfg.LogFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.SaveOnExit)

	assert.Equal(t, media.KindRawNAND, cfg.Media.Kind)
	assert.Equal(t, "/dev/mtd3", cfg.Media.Path)
	assert.EqualValues(t, 0, cfg.Media.SectorSize)

	assert.EqualValues(t, 131072, cfg.Options.Region.Offset)
	assert.EqualValues(t, 65536, cfg.Options.Region.Size)
	assert.Equal(t, 2048, cfg.Options.LoadSize)
	assert.Equal(t, storage.RecoverEmpty, cfg.Options.OnCorrupt)
	assert.True(t, cfg.Options.VerifyAfterSave)
}

func TestReadConfigDefaults(t *testing.T) {
	cfg, err := ReadConfig(strings.NewReader(minimalCfg))
	require.NoError(t, err)

	assert.Equal(t, defaultBind, cfg.Bind)
	assert.Equal(t, "", cfg.LogFile)
	assert.Equal(t, defaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.SaveOnExit)

	assert.Equal(t, media.KindBlockDevice, cfg.Media.Kind)
	assert.EqualValues(t, 4096, cfg.Media.SectorSize)
	assert.EqualValues(t, 0, cfg.Options.Region.Offset)
	assert.Equal(t, storage.DefaultLoadSize, cfg.Options.LoadSize)
	assert.Equal(t, storage.RecoverFail, cfg.Options.OnCorrupt)
	assert.False(t, cfg.Options.VerifyAfterSave)
}

func TestReadConfigErrors(t *testing.T) {
	for name, text := range map[string]string{
		"missing kind":   "[media]\ndevice = \"/dev/mtd0\"\n[store]\nsize = 1\n",
		"bad kind":       "[media]\nkind = \"/dev/mtd0\"\ndevice = \"/dev/mtd0\"\n[store]\nsize = 1\n",
		"missing device": "[media]\nkind = \"nor\"\n[store]\nsize = 1\n",
		"missing size":   "[media]\nkind = \"nor\"\ndevice = \"/dev/mtd0\"\n",
		"bad policy":     "[media]\nkind = \"nor\"\ndevice = \"/dev/mtd0\"\n[store]\nsize = 1\non_corrupt = \"retry\"\n",
		"not toml":       "[media\n",
	} {
		_, err := ReadConfig(strings.NewReader(text))
		assert.Error(t, err, name)
	}
}
