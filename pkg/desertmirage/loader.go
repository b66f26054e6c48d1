package desertmirage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables that override run file keys, e.g.
// DESERTMIRAGE_RESPONSE_CHANNEL -> response_channel.
const EnvPrefix = "DESERTMIRAGE_"

const maxConfigFileSize = 1024 * 1024 // 1MB

// LoadConfig reads a YAML (or JSON) run file, then applies environment
// overrides on top of the defaults. An empty path loads defaults and
// environment only. A relative seed_file is resolved against the run file's
// directory.
//
// The result is not validated; NewService does that.
func LoadConfig(path string) (*Config, error) {
	var content []byte
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
		}

		content, err = io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg, err := LoadConfigBytes(content)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	if path != "" && cfg.SeedFile != "" && !filepath.IsAbs(cfg.SeedFile) {
		cfg.SeedFile = filepath.Join(filepath.Dir(path), cfg.SeedFile)
	}
	return cfg, nil
}

// LoadConfigBytes is LoadConfig for an in-memory run file.
func LoadConfigBytes(content []byte) (*Config, error) {
	k := koanf.New(".")

	if len(content) > 0 {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Keys absent from both sources keep their defaults.
	cfg := defaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
