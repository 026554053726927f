package provider

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fglsense/internal/symbols"
	"fglsense/internal/types"
)

func module(project, name string, fns ...*symbols.Symbol) *symbols.ModuleResult {
	m := symbols.NewModuleResult(name, name+".4gl", 0)
	m.Project = project
	for _, fn := range fns {
		m.Functions.Add(fn)
	}
	return m
}

func function(name string, public bool) *symbols.Symbol {
	s := &symbols.Symbol{Name: name, Kind: symbols.SymbolFunction}
	if public {
		s.Flags |= symbols.SymbolFlagPublic
	}
	return s
}

func TestParseMode(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]Mode{"off": ModeOff, "Deferred": ModeDeferred, " search ": ModeSearch} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMode("eager")
	assert.Error(t, err)

	var m Mode
	require.NoError(t, m.UnmarshalText([]byte("search")))
	assert.Equal(t, ModeSearch, m)
	assert.Equal(t, "search", m.String())
}

func TestRegistryPublishReplaces(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewRegistry()
	g0 := r.Generation()

	r.Publish(module("p", "orders", function("load_order", true), function("helper", false)))
	assert.Greater(t, r.Generation(), g0)
	assert.Len(t, r.LookupFunction(ctx, "LOAD_ORDER"), 1)
	assert.Empty(t, r.LookupFunction(ctx, "helper"), "private functions are not published")

	r.Publish(module("p", "ORDERS", function("save_order", true)))
	assert.Empty(t, r.LookupFunction(ctx, "load_order"))
	assert.Len(t, r.Functions(ctx), 1)

	r.Remove("p", "orders")
	assert.Empty(t, r.Functions(ctx))
	_, ok := r.Module("p", "orders")
	assert.False(t, ok)
}

func TestRegistryReferences(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Publish(module("common", "util"))
	r.Publish(module("app", "main"))

	_, ok := r.Module("app", "util")
	assert.False(t, ok)

	r.SetReferences("app", []string{"common"})
	m, ok := r.Module("app", "util")
	require.True(t, ok)
	assert.Equal(t, "common", m.Project)

	mods := r.Modules("app")
	require.Len(t, mods, 2)
	assert.Equal(t, "main", mods[0].Name)
}

func TestLoadSchema(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/p/schema.yaml", []byte(`
database: stores
tables:
  - name: customer
    columns:
      - {name: customer_num, type: serial}
      - {name: fname, type: "char(15)"}
      - {name: balance, type: "decimal(10,2)"}
`), 0o644))

	db, tables, err := LoadSchema(fs, "/p/schema.yaml")
	require.NoError(t, err)
	assert.Equal(t, "stores", db)
	require.Len(t, tables, 1)

	cust := tables[0]
	assert.Equal(t, symbols.SymbolTable, cust.Kind)
	f, ok := cust.Type.Field("FNAME")
	require.True(t, ok)
	assert.Equal(t, types.KindString, f.Type.Kind)
	assert.Equal(t, "15", f.Type.Size)
	bal, _ := cust.Type.Field("balance")
	assert.Equal(t, "10,2", bal.Type.Size)

	r := NewRegistry()
	r.SetSchema(tables)
	_, ok = r.Table(context.Background(), "Customer")
	assert.True(t, ok)
}

func TestLoadSchemaErrors(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	_, _, err := LoadSchema(fs, "/missing.yaml")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/dup.yaml", []byte(`
tables:
  - name: t
    columns:
      - {name: a, type: integer}
      - {name: A, type: integer}
`), 0o644))
	_, _, err = LoadSchema(fs, "/dup.yaml")
	assert.ErrorContains(t, err, "duplicate column")
}
