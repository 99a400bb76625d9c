package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/odvcencio/minigit/pkg/object"
	"github.com/odvcencio/minigit/pkg/repo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	envConfig    = "MINIGIT_CONFIG"
	envVerbose   = "MINIGIT_VERBOSE"
	envAuthor    = "MINIGIT_AUTHOR"
	envTimestamp = "MINIGIT_TIMESTAMP"

	userConfigPath = "~/.minigit.toml"
)

// globalOptions holds state shared by every subcommand. The working
// directory is resolved here once and handed to the repo package
// explicitly.
type globalOptions struct {
	workDir string
	verbose bool

	logger *zap.Logger
}

func (g *globalOptions) setup() error {
	if g.logger != nil {
		return nil
	}
	abs, err := filepath.Abs(g.workDir)
	if err != nil {
		return fmt.Errorf("resolve work tree: %w", err)
	}
	g.workDir = abs

	level := zapcore.WarnLevel
	if g.verbose || os.Getenv(envVerbose) != "" {
		level = zapcore.DebugLevel
	}
	logger, err := newLogger(level)
	if err != nil {
		return err
	}
	g.logger = logger
	return nil
}

func (g *globalOptions) close() {
	if g.logger != nil {
		_ = g.logger.Sync()
	}
}

func newLogger(level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// loadConfig merges the user config with the repository config, if a
// repository is given.
func (g *globalOptions) loadConfig(r *repo.Repo) (*repo.Config, error) {
	userPath := os.Getenv(envConfig)
	if userPath == "" {
		expanded, err := homedir.Expand(userConfigPath)
		if err != nil {
			g.logger.Debug("no home directory; skipping user config", zap.Error(err))
		} else {
			userPath = expanded
		}
	}
	paths := []string{userPath}
	if r != nil {
		paths = append(paths, r.ConfigPath())
	}
	cfg, err := repo.LoadConfig(paths...)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// openRepo opens the repository containing the work tree and applies its
// configuration.
func (g *globalOptions) openRepo() (*repo.Repo, *repo.Config, error) {
	r, err := repo.Open(g.workDir, repo.WithLogger(g.logger))
	if err != nil {
		return nil, nil, err
	}
	cfg, err := g.loadConfig(r)
	if err != nil {
		return nil, nil, err
	}
	r.AddExclude(cfg.Tree.Exclude...)
	return r, cfg, nil
}

// resolveIdentity picks the commit identity: flag, then environment, then
// configuration, then the login name.
func resolveIdentity(flagValue string, cfg *repo.Config) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv(envAuthor)); v != "" {
		return v
	}
	if v := cfg.Identity(); v != "" {
		return v
	}
	if v := os.Getenv("USER"); v != "" {
		return v
	}
	return "unknown"
}

// resolveTimestamp picks the commit time: flag, then environment, then the
// clock. This is the only place the clock is read.
func resolveTimestamp(flagValue int64) (int64, error) {
	if flagValue != 0 {
		return flagValue, nil
	}
	if v := strings.TrimSpace(os.Getenv(envTimestamp)); v != "" {
		ts, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", envTimestamp, err)
		}
		return ts, nil
	}
	return time.Now().Unix(), nil
}

// resolve interprets a command-line path relative to the work tree.
func (g *globalOptions) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(g.workDir, p)
}

func parseHashArg(s string) (object.Hash, error) {
	h, err := object.ParseHash(s)
	if err != nil {
		return "", fmt.Errorf("not a valid object name %q", s)
	}
	return h, nil
}
