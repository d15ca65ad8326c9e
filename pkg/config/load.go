package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	homedir "github.com/mitchellh/go-homedir"
	"golang.org/x/xerrors"
)

const envPrefix = "SCRAPBEE"

// DefaultPath returns the conventional config file location,
// ~/.scrapbee/config.toml.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", xerrors.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".scrapbee", "config.toml"), nil
}

// Load reads the config at path (DefaultPath when empty), applying
// defaults for anything unset and SCRAPBEE_* environment overrides on
// top. A missing file is not an error; defaults plus env apply.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	} else if expanded, err := homedir.Expand(path); err == nil {
		path = expanded
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if err := envconfig.Process(envPrefix, cfg); err != nil {
				return nil, xerrors.Errorf("processing env overrides: %w", err)
			}
			return cfg, nil
		}
		return nil, xerrors.Errorf("opening config %s: %w", path, err)
	}
	defer file.Close()

	return FromReader(file)
}

// FromReader decodes a TOML config from r over the defaults, then applies
// environment overrides.
func FromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, xerrors.Errorf("decoding config: %w", err)
	}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, xerrors.Errorf("processing env overrides: %w", err)
	}
	return cfg, nil
}

// WriteDefault writes a commented default config to path, creating the
// parent directory. Refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	} else if expanded, err := homedir.Expand(path); err == nil {
		path = expanded
	}

	if _, err := os.Stat(path); err == nil {
		return xerrors.Errorf("config already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return xerrors.Errorf("creating config directory: %w", err)
	}

	data, err := CommentedDefault()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// CommentedDefault renders the default config as TOML with every value
// line commented out, so the file documents itself without pinning
// defaults.
func CommentedDefault() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(Default()); err != nil {
		return nil, xerrors.Errorf("encoding default config: %w", err)
	}

	var out []string
	for _, line := range strings.Split(buf.String(), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "[") {
			out = append(out, line)
			continue
		}
		pad := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		out = append(out, pad+"#"+strings.TrimLeft(line, " \t"))
	}
	return []byte(strings.Join(out, "\n")), nil
}
