package repo

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/renameio"
	"github.com/odvcencio/minigit/pkg/object"
)

// ConfigFileName is the repository-local configuration file inside the
// storage root.
const ConfigFileName = "config.toml"

// Config stores user and repository settings.
//
//	[user]
//	name = "Ada Lovelace"
//	email = "ada@example.com"
//
//	[commit]
//	timezone = "+0100"
//
//	[tree]
//	exclude = ["*.o", "build/"]
//
//	[signing]
//	key = "~/.ssh/id_ed25519"
type Config struct {
	User    UserConfig    `toml:"user"`
	Commit  CommitConfig  `toml:"commit"`
	Tree    TreeConfig    `toml:"tree"`
	Signing SigningConfig `toml:"signing"`
}

type UserConfig struct {
	Name  string `toml:"name,omitempty"`
	Email string `toml:"email,omitempty"`
}

type CommitConfig struct {
	Timezone string `toml:"timezone,omitempty"`
}

type TreeConfig struct {
	Exclude []string `toml:"exclude,omitempty"`
}

type SigningConfig struct {
	Key string `toml:"key,omitempty"`
}

// Identity renders the user as "Name <email>". Either part may be missing.
func (c *Config) Identity() string {
	name := strings.TrimSpace(c.User.Name)
	email := strings.TrimSpace(c.User.Email)
	switch {
	case name != "" && email != "":
		return fmt.Sprintf("%s <%s>", name, email)
	case email != "":
		return "<" + email + ">"
	default:
		return name
	}
}

// Merge overlays the non-empty fields of other onto c. Exclude patterns
// accumulate.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.User.Name != "" {
		c.User.Name = other.User.Name
	}
	if other.User.Email != "" {
		c.User.Email = other.User.Email
	}
	if other.Commit.Timezone != "" {
		c.Commit.Timezone = other.Commit.Timezone
	}
	if other.Signing.Key != "" {
		c.Signing.Key = other.Signing.Key
	}
	c.Tree.Exclude = append(c.Tree.Exclude, other.Tree.Exclude...)
}

// LoadConfig reads and merges the TOML files at paths in order. Missing
// files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	cfg := &Config{}
	for _, p := range paths {
		if p == "" {
			continue
		}
		fileCfg, err := readConfigFile(p)
		if err != nil {
			return nil, err
		}
		cfg.Merge(fileCfg)
	}
	return cfg, nil
}

func readConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("read config %s: unknown key %q", path, undecoded[0].String())
	}
	if tz := cfg.Commit.Timezone; tz != "" && !object.ValidTimezone(tz) {
		return nil, fmt.Errorf("read config %s: commit.timezone %q is not +hhmm or -hhmm", path, tz)
	}
	return &cfg, nil
}

// ConfigPath returns the repository-local configuration path.
func (r *Repo) ConfigPath() string {
	return filepath.Join(r.GitDir, ConfigFileName)
}

// ReadConfig reads the repository-local configuration. A missing file
// yields an empty config.
func (r *Repo) ReadConfig() (*Config, error) {
	cfg, err := readConfigFile(r.ConfigPath())
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &Config{}
	}
	return cfg, nil
}

// WriteConfig atomically replaces the repository-local configuration.
func (r *Repo) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = &Config{}
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}
	if err := renameio.WriteFile(r.ConfigPath(), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
