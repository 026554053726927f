package workspace

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fglsense/internal/provider"
)

func TestLoadManifest(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/proj/fglsense.toml", `
[project]
name = "orders"
sources = ["src", "/shared/src"]
includes = ["include"]

[resolve]
provider_mode = "search"

[completion]
grammar = "ctx.yaml"

[extra]
key = 1
`)
	m, err := LoadManifest(fs, "/proj/fglsense.toml")
	require.NoError(t, err)
	assert.Equal(t, "orders", m.Project.Name)
	assert.Equal(t, "/proj", m.Dir)
	assert.Contains(t, m.Unknown, "extra.key")
	assert.Equal(t, "search", m.Resolve.ProviderMode)

	cfg, err := m.Settings(Env{})
	require.NoError(t, err)
	assert.Equal(t, []string{"/proj/src", "/shared/src"}, cfg.Sources)
	assert.Equal(t, []string{"/proj/include"}, cfg.Includes)
	assert.Equal(t, provider.ModeSearch, cfg.Mode)
	assert.Equal(t, "/proj/ctx.yaml", cfg.Grammar)
	assert.Empty(t, cfg.SchemaFile)
	assert.Equal(t, defaultMaxDiagnostics, cfg.MaxDiagnostics)
}

func TestLoadManifestDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/work/billing/fglsense.toml", "[project]\n")
	m, err := LoadManifest(fs, "/work/billing/fglsense.toml")
	require.NoError(t, err)
	assert.Equal(t, "billing", m.Project.Name)
	assert.Equal(t, []string{"."}, m.Project.Sources)
	assert.Equal(t, "deferred", m.Resolve.ProviderMode)
}

func TestLoadManifestErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{name: "no project", content: "[resolve]\nprovider_mode = \"off\"\n", want: ErrProjectSectionMissing},
		{name: "bad mode", content: "[project]\n[resolve]\nprovider_mode = \"eager\"\n"},
		{name: "bad toml", content: "[project\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writeFile(t, fs, "/p/fglsense.toml", tt.content)
			_, err := LoadManifest(fs, "/p/fglsense.toml")
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestFindManifest(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/a/fglsense.toml", "[project]\n")
	require.NoError(t, fs.MkdirAll("/a/b/c", 0o755))

	path, err := FindManifest(fs, "/a/b/c")
	require.NoError(t, err)
	assert.Equal(t, "/a/fglsense.toml", path)

	_, err = FindManifest(fs, "/elsewhere")
	assert.ErrorIs(t, err, ErrManifestNotFound)
}

func TestEnvOverrides(t *testing.T) {
	vars := map[string]string{
		"FGLSENSE_PROVIDER_MODE":   "off",
		"FGLSENSE_CACHE_DIR":       "/tmp/cache",
		"FGLSENSE_MAX_DIAGNOSTICS": "7",
	}
	env, err := LoadEnv(func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	})
	require.NoError(t, err)
	assert.Equal(t, Env{ProviderMode: "off", CacheDir: "/tmp/cache", MaxDiagnostics: 7}, env)

	cfg, err := DefaultManifest("/p").Settings(env)
	require.NoError(t, err)
	assert.Equal(t, provider.ModeOff, cfg.Mode)
	assert.Equal(t, "/tmp/cache", cfg.CacheDir)
	assert.Equal(t, 7, cfg.MaxDiagnostics)
	assert.Equal(t, "p", cfg.Project)

	_, err = DefaultManifest("/p").Settings(Env{ProviderMode: "sometimes"})
	assert.Error(t, err)

	vars["FGLSENSE_MAX_DIAGNOSTICS"] = "many"
	_, err = LoadEnv(func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	})
	assert.Error(t, err)
}
