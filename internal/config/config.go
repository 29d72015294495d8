// Package config loads git-workty settings from TOML files and WORKTY_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/workty/git-workty/internal/git"
	"github.com/workty/git-workty/internal/paths"
)

const (
	EnvPrefix        = "WORKTY"
	RepoFileName     = "workty.toml"
	DefaultRoot      = "~/.workty/{repo}"
	DefaultStaleDays = 30
)

type Config struct {
	Base      string `mapstructure:"base"`
	Root      string `mapstructure:"root"`
	OpenCmd   string `mapstructure:"open_cmd"`
	FetchBase bool   `mapstructure:"fetch_base"`
	PushNew   bool   `mapstructure:"push_new"`
	StaleDays int    `mapstructure:"stale_days"`

	// Sources lists the files that contributed, lowest precedence first.
	Sources []string `mapstructure:"-"`
}

// GlobalPath is the per-user config file.
func GlobalPath() (string, error) {
	return paths.ConfigFilePath()
}

// RepoPath is the per-repository config file, shared by all worktrees.
func RepoPath(repo git.Repo) string {
	return filepath.Join(repo.CommonDir, RepoFileName)
}

// Load layers defaults, the global file, the repository file and the
// environment. defaultBase is used when no layer sets base.
func Load(repo git.Repo, defaultBase string) (Config, error) {
	files := make([]string, 0, 2)
	if global, err := GlobalPath(); err == nil {
		files = append(files, global)
	}
	files = append(files, RepoPath(repo))
	return LoadFiles(defaultBase, files...)
}

// LoadFiles is Load with explicit file paths. Missing files are skipped.
func LoadFiles(defaultBase string, files ...string) (Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	if strings.TrimSpace(defaultBase) == "" {
		defaultBase = "main"
	}
	v.SetDefault("base", defaultBase)
	v.SetDefault("root", DefaultRoot)
	v.SetDefault("open_cmd", "")
	v.SetDefault("fetch_base", true)
	v.SetDefault("push_new", false)
	v.SetDefault("stale_days", DefaultStaleDays)

	var sources []string
	for _, path := range files {
		ok, err := fileExists(path)
		if err != nil {
			return Config{}, err
		}
		if !ok {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		sources = append(sources, path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Base = strings.TrimSpace(cfg.Base)
	if cfg.Base == "" {
		cfg.Base = defaultBase
	}
	cfg.Root = strings.TrimSpace(cfg.Root)
	if cfg.Root == "" {
		cfg.Root = DefaultRoot
	}
	cfg.OpenCmd = strings.TrimSpace(cfg.OpenCmd)
	if cfg.StaleDays <= 0 {
		cfg.StaleDays = DefaultStaleDays
	}
	cfg.Sources = sources
	return cfg, nil
}

// RootDir resolves the workspace root for repo: "~" is expanded, "{repo}"
// becomes the repository directory name and relative roots hang off the
// repository root.
func (c Config) RootDir(repo git.Repo) string {
	root := c.Root
	if root == "" {
		root = DefaultRoot
	}
	root = strings.ReplaceAll(root, "{repo}", repo.Name())
	root = paths.ExpandHome(root)
	if !filepath.IsAbs(root) {
		root = filepath.Join(repo.Root, root)
	}
	return filepath.Clean(root)
}

// WorktreePath is where a worktree named slug is created by default.
func (c Config) WorktreePath(repo git.Repo, slug string) string {
	return filepath.Join(c.RootDir(repo), slug)
}

// EnvFlagEnabled reports whether the named variable holds a truthy value.
func EnvFlagEnabled(name string) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
