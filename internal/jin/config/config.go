// Package config resolves the Jin store root and loads the store-level
// config.toml document (§4.8, C8).
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/jinvcs/jin/internal/jin/jinerr"
)

// EnvDir is the environment variable that overrides the default store
// location. It takes precedence over the user-home default and must be
// resolved once per process (spec §6: "process-global, discovered once
// per invocation").
const EnvDir = "JIN_DIR"

const defaultDirName = ".jin"

// Config is the store-level config.toml document.
type Config struct {
	Author struct {
		Name  string `toml:"name"`
		Email string `toml:"email"`
	} `toml:"author"`

	Merge struct {
		// KeyFields lists the object fields tried, in order, to unify
		// keyed arrays. First match wins. Defaults to ["id", "name"].
		KeyFields []string `toml:"key_fields"`
	} `toml:"merge"`

	Stage struct {
		// DefaultLayer names the layer new `add` invocations target
		// when no layer flag is given.
		DefaultLayer string `toml:"default_layer"`
	} `toml:"stage"`
}

// Default returns the configuration applied when no config.toml exists.
func Default() *Config {
	c := &Config{}
	c.Merge.KeyFields = []string{"id", "name"}
	c.Stage.DefaultLayer = "project"
	return c
}

// Root resolves the store root directory: $JIN_DIR if set, otherwise
// ~/.jin. The directory need not exist yet; callers create it on init.
func Root() (string, error) {
	if dir := os.Getenv(EnvDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", jinerr.Wrap(jinerr.KindIO, "resolve user home directory", err)
	}
	return filepath.Join(home, defaultDirName), nil
}

// Path returns the path to config.toml under root.
func Path(root string) string {
	return filepath.Join(root, "config.toml")
}

// Load reads config.toml under root, returning Default() if the file
// does not exist.
func Load(root string) (*Config, error) {
	path := Path(root)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, jinerr.Wrap(jinerr.KindIO, "read config.toml", err)
	}

	cfg := Default()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, jinerr.Wrap(jinerr.KindParse, "parse config.toml", err)
	}
	if len(cfg.Merge.KeyFields) == 0 {
		cfg.Merge.KeyFields = []string{"id", "name"}
	}
	return cfg, nil
}

// Save writes cfg to config.toml under root, atomically.
func Save(root string, cfg *Config) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return jinerr.Wrap(jinerr.KindIO, "create store root", err)
	}
	path := Path(root)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return jinerr.Wrap(jinerr.KindIO, "create config.toml temp file", err)
	}
	enc := toml.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		f.Close()
		os.Remove(tmp)
		return jinerr.Wrap(jinerr.KindIO, "encode config.toml", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return jinerr.Wrap(jinerr.KindIO, "close config.toml temp file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return jinerr.Wrap(jinerr.KindIO, "rename config.toml into place", err)
	}
	return nil
}
