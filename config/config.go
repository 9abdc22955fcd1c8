package config

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml"

	"github.com/viert/uidstore/media"
	"github.com/viert/uidstore/storage"
)

const (
	defaultBind     = "127.0.0.1:7070"
	defaultLogLevel = "info"
)

// Cfg represents a uidstore config
type Cfg struct {
	Bind       string
	LogFile    string
	LogLevel   string
	SaveOnExit bool

	Media   media.Descriptor
	Options storage.Options
}

type props struct {
	tree *toml.Tree
}

func (p props) getString(key string) (string, error) {
	v := p.tree.Get(key)
	if v == nil {
		return "", fmt.Errorf("%s is not set", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return s, nil
}

func (p props) getInt(key string) (int64, error) {
	v := p.tree.Get(key)
	if v == nil {
		return 0, fmt.Errorf("%s is not set", key)
	}
	i, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return i, nil
}

func (p props) getBool(key string) (bool, error) {
	v := p.tree.Get(key)
	if v == nil {
		return false, fmt.Errorf("%s is not set", key)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s must be a boolean", key)
	}
	return b, nil
}

// ReadConfig reads and returns a uidstore config
// from an io.Reader object
func ReadConfig(r io.Reader) (*Cfg, error) {
	tree, err := toml.LoadReader(r)
	if err != nil {
		return nil, err
	}
	p := props{tree: tree}

	cfg := &Cfg{}

	cfg.Bind, err = p.getString("main.bind")
	if err != nil {
		cfg.Bind = defaultBind
	}

	cfg.LogFile, err = p.getString("main.log")
	if err != nil {
		cfg.LogFile = ""
	}

	cfg.LogLevel, err = p.getString("main.level")
	if err != nil {
		cfg.LogLevel = defaultLogLevel
	}

	cfg.SaveOnExit, err = p.getBool("main.save_on_exit")
	if err != nil {
		cfg.SaveOnExit = false
	}

	kind, err := p.getString("media.kind")
	if err != nil {
		return nil, fmt.Errorf("error reading media.kind: %s", err)
	}
	cfg.Media.Kind, err = media.ParseKind(kind)
	if err != nil {
		return nil, fmt.Errorf("error reading media.kind: %s", err)
	}

	cfg.Media.Path, err = p.getString("media.device")
	if err != nil {
		return nil, fmt.Errorf("error reading media.device: %s", err)
	}

	if tree.Has("media.sector_size") {
		cfg.Media.SectorSize, err = p.getInt("media.sector_size")
		if err != nil {
			return nil, fmt.Errorf("error reading media.sector_size: %s", err)
		}
	}

	cfg.Options.Region.Offset, err = p.getInt("store.offset")
	if err != nil {
		cfg.Options.Region.Offset = 0
	}

	cfg.Options.Region.Size, err = p.getInt("store.size")
	if err != nil {
		return nil, fmt.Errorf("error reading store.size: %s", err)
	}

	loadSize, err := p.getInt("store.load_size")
	if err != nil {
		loadSize = storage.DefaultLoadSize
	}
	cfg.Options.LoadSize = int(loadSize)

	if tree.Has("store.on_corrupt") {
		policy, err := p.getString("store.on_corrupt")
		if err != nil {
			return nil, fmt.Errorf("error reading store.on_corrupt: %s", err)
		}
		switch policy {
		case "fail":
			cfg.Options.OnCorrupt = storage.RecoverFail
		case "empty":
			cfg.Options.OnCorrupt = storage.RecoverEmpty
		default:
			return nil, fmt.Errorf("store.on_corrupt must be \"fail\" or \"empty\", got %q", policy)
		}
	}

	cfg.Options.VerifyAfterSave, err = p.getBool("store.verify")
	if err != nil {
		cfg.Options.VerifyAfterSave = false
	}

	return cfg, nil
}
