package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mstoykov/envconfig"
	"github.com/spf13/afero"

	"fglsense/internal/provider"
)

// Env holds the environment overrides. Empty values leave the manifest
// setting alone.
type Env struct {
	ProviderMode   string `envconfig:"FGLSENSE_PROVIDER_MODE"`
	Grammar        string `envconfig:"FGLSENSE_GRAMMAR"`
	CacheDir       string `envconfig:"FGLSENSE_CACHE_DIR"`
	MaxDiagnostics int    `envconfig:"FGLSENSE_MAX_DIAGNOSTICS"`
}

// LoadEnv reads Env through lookup, or from the process environment when
// lookup is nil.
func LoadEnv(lookup func(key string) (string, bool)) (Env, error) {
	var env Env
	var err error
	if lookup == nil {
		err = envconfig.Process("", &env)
	} else {
		err = envconfig.Process("", &env, lookup)
	}
	if err != nil {
		return Env{}, fmt.Errorf("environment: %w", err)
	}
	return env, nil
}

// Config is the effective configuration of a workspace: manifest values
// with environment overrides applied and paths made absolute.
type Config struct {
	Project        string
	Sources        []string
	References     []string
	Includes       []string
	Mode           provider.Mode
	Grammar        string
	SchemaFile     string
	CacheDir       string
	MaxDiagnostics int
	// Jobs limits parallel analysis; zero means GOMAXPROCS.
	Jobs int
}

const defaultMaxDiagnostics = 200

// Settings merges env into the manifest settings.
func (m *Manifest) Settings(env Env) (Config, error) {
	cfg := Config{
		Project:        m.Project.Name,
		Grammar:        m.Abs(m.Completion.Grammar),
		SchemaFile:     m.Abs(m.Schema.File),
		MaxDiagnostics: defaultMaxDiagnostics,
	}
	for _, dir := range m.Project.Sources {
		cfg.Sources = append(cfg.Sources, m.Abs(dir))
	}
	for _, dir := range m.Project.References {
		cfg.References = append(cfg.References, m.Abs(dir))
	}
	for _, dir := range m.Project.Includes {
		cfg.Includes = append(cfg.Includes, m.Abs(dir))
	}

	mode := m.Resolve.ProviderMode
	if env.ProviderMode != "" {
		mode = env.ProviderMode
	}
	var err error
	if cfg.Mode, err = provider.ParseMode(mode); err != nil {
		return Config{}, err
	}
	if env.Grammar != "" {
		cfg.Grammar = env.Grammar
	}
	if env.CacheDir != "" {
		cfg.CacheDir = env.CacheDir
	}
	if env.MaxDiagnostics > 0 {
		cfg.MaxDiagnostics = env.MaxDiagnostics
	}
	return cfg, nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/fglsense or ~/.cache/fglsense.
func DefaultCacheDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "fglsense"), nil
}

// LoadConfig finds fglsense.toml from startDir upwards and applies env.
// Without a manifest startDir itself is the project.
func LoadConfig(fs afero.Fs, startDir string, env Env) (Config, *Manifest, error) {
	var m *Manifest
	path, err := FindManifest(fs, startDir)
	switch {
	case err == nil:
		if m, err = LoadManifest(fs, path); err != nil {
			return Config{}, nil, err
		}
	case errors.Is(err, ErrManifestNotFound):
		dir, absErr := filepath.Abs(startDir)
		if absErr != nil {
			return Config{}, nil, absErr
		}
		m = DefaultManifest(dir)
	default:
		return Config{}, nil, err
	}
	cfg, err := m.Settings(env)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, m, nil
}
