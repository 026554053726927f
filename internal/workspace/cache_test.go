package workspace

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fglsense/internal/provider"
	"fglsense/internal/symbols"
)

func TestExportCacheRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	c, err := OpenExportCache(fs, "/cache")
	require.NoError(t, err)

	ex := &symbols.ModuleExports{
		Name:    "lib",
		Path:    "/p/lib.4gl",
		Project: "p",
		Hash:    [32]byte{1, 2, 3},
		Symbols: []*symbols.Symbol{
			{Name: "remote_fn", Kind: symbols.SymbolFunction, Flags: symbols.SymbolFlagPublic, Module: "lib"},
		},
	}
	require.NoError(t, c.Put(ex))

	got, ok, err := c.Get("p", "/p/lib.4gl", ex.Hash)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "lib", got.Name)
	require.Len(t, got.Symbols, 1)
	assert.Equal(t, "remote_fn", got.Symbols[0].Name)
	assert.True(t, got.Symbols[0].IsPublic())

	_, ok, err = c.Get("p", "/p/lib.4gl", [32]byte{9})
	require.NoError(t, err)
	assert.False(t, ok, "changed content must miss")

	require.NoError(t, c.DropAll())
	_, ok, err = c.Get("p", "/p/lib.4gl", ex.Hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNilExportCache(t *testing.T) {
	var c *ExportCache
	assert.NoError(t, c.Put(&symbols.ModuleExports{Name: "x"}))
	_, ok, err := c.Get("p", "x", [32]byte{})
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.DropAll())
}

func TestWarmFromCache(t *testing.T) {
	ctx := context.Background()
	fs := ordersFs(t)
	cfg, _, err := LoadConfig(fs, "/proj", Env{CacheDir: "/cache"})
	require.NoError(t, err)

	w, err := Open(Options{Fs: fs, Config: cfg})
	require.NoError(t, err)
	_, err = w.Index(ctx)
	require.NoError(t, err)

	reg := provider.NewRegistry()
	cold, err := Open(Options{Fs: fs, Config: cfg, Registry: reg})
	require.NoError(t, err)
	n, err := cold.Warm(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, reg.LookupFunction(ctx, "remote_fn"), 1)

	writeFile(t, fs, "/proj/src/lib.4gl", "PUBLIC FUNCTION renamed()\nEND FUNCTION\n")
	reg = provider.NewRegistry()
	cold, err = Open(Options{Fs: fs, Config: cfg, Registry: reg})
	require.NoError(t, err)
	n, err = cold.Warm(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "edited module is not served from the cache")
}
