package cli

import (
	"path/filepath"

	"github.com/aretw0/arbor/internal/config"
)

// Options carries the persistent CLI flags. Empty fields leave the
// configured value untouched.
type Options struct {
	Dir        string
	ConfigPath string
	Store      string
	Key        string
	LogLevel   string
	LogFormat  string
}

// LoadConfig reads the config file and environment, then applies flag overrides.
func LoadConfig(opts Options) (config.Config, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	path := opts.ConfigPath
	if path == "" {
		path = filepath.Join(dir, config.FileName)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if opts.Store != "" {
		cfg.Store.Backend = opts.Store
	}
	if opts.Key != "" {
		cfg.Store.Key = opts.Key
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.Log.Format = opts.LogFormat
	}
	if !filepath.IsAbs(cfg.Store.Path) {
		cfg.Store.Path = filepath.Join(dir, cfg.Store.Path)
	}
	return cfg, cfg.Validate()
}
