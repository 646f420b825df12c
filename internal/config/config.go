// Package config loads arbor settings from an optional arbor.yaml file and
// ARBOR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the project directory.
const FileName = "arbor.yaml"

// Backends understood by the engine factory.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendBadger = "badger"
)

type Config struct {
	Store         StoreConfig `mapstructure:"store"`
	Log           LogConfig   `mapstructure:"log"`
	IDs           string      `mapstructure:"ids"`
	StrictLoad    bool        `mapstructure:"strict_load"`
	EncryptionKey string      `mapstructure:"encryption_key"`
}

type StoreConfig struct {
	Backend string      `mapstructure:"backend"`
	Path    string      `mapstructure:"path"`
	Key     string      `mapstructure:"key"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Backend: BackendFile,
			Path:    ".arbor",
			Key:     "categoryTree",
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		IDs: "uuid",
	}
}

// Load reads path on top of the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := decode(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadDir loads <dir>/arbor.yaml.
func LoadDir(dir string) (Config, error) {
	return Load(filepath.Join(dir, FileName))
}

func decode(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := map[string]*string{
		"ARBOR_STORE":          &cfg.Store.Backend,
		"ARBOR_STORE_PATH":     &cfg.Store.Path,
		"ARBOR_KEY":            &cfg.Store.Key,
		"ARBOR_REDIS_ADDR":     &cfg.Store.Redis.Addr,
		"ARBOR_REDIS_PASSWORD": &cfg.Store.Redis.Password,
		"ARBOR_REDIS_PREFIX":   &cfg.Store.Redis.Prefix,
		"ARBOR_LOG_LEVEL":      &cfg.Log.Level,
		"ARBOR_LOG_FORMAT":     &cfg.Log.Format,
		"ARBOR_IDS":            &cfg.IDs,
		"ARBOR_ENCRYPTION_KEY": &cfg.EncryptionKey,
	}
	for name, dst := range str {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("ARBOR_REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ARBOR_REDIS_DB %q: %w", v, err)
		}
		cfg.Store.Redis.DB = db
	}
	if v, ok := lookup("ARBOR_STRICT_LOAD"); ok && v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid ARBOR_STRICT_LOAD %q: %w", v, err)
		}
		cfg.StrictLoad = strict
	}
	return nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch strings.ToLower(c.Store.Backend) {
	case BackendMemory, BackendFile, BackendRedis, BackendBadger:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if strings.TrimSpace(c.Store.Key) == "" {
		return errors.New("store key must not be empty")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
