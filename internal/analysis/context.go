// Package analysis ties the front end together for one document: lexing,
// parsing, name checking, resolution and completion. A Context holds the
// shared read-only state and is built once; Documents are immutable
// snapshots produced by Analyze.
package analysis

import (
	"github.com/sirupsen/logrus"

	"fglsense/internal/builtins"
	"fglsense/internal/contextmap"
	"fglsense/internal/provider"
	"fglsense/internal/resolve"
	"fglsense/internal/symbols"
)

// Config is the input of NewContext. Zero values pick defaults: the shared
// built-in catalogue, the embedded grammar table and no providers.
type Config struct {
	Builtins *builtins.Catalog
	Table    *contextmap.Table

	// Registry, when set, serves as all three providers unless one is
	// given explicitly.
	Registry  *provider.Registry
	Functions provider.FunctionProvider
	Schema    provider.SchemaProvider
	Modules   provider.ModuleEnumerator

	// Project names the project documents belong to.
	Project        string
	Mode           provider.Mode
	MaxDiagnostics int
	Logger         logrus.FieldLogger
}

// Context is immutable after NewContext and safe for concurrent use.
type Context struct {
	builtins  *builtins.Catalog
	engine    *contextmap.Engine
	functions provider.FunctionProvider
	schema    provider.SchemaProvider
	modules   provider.ModuleEnumerator
	project   string
	mode      provider.Mode
	maxDiags  int
	log       logrus.FieldLogger
}

func NewContext(cfg Config) *Context {
	ac := &Context{
		builtins:  cfg.Builtins,
		engine:    contextmap.NewEngine(cfg.Table),
		functions: cfg.Functions,
		schema:    cfg.Schema,
		modules:   cfg.Modules,
		project:   cfg.Project,
		mode:      cfg.Mode,
		maxDiags:  cfg.MaxDiagnostics,
		log:       cfg.Logger,
	}
	if ac.builtins == nil {
		ac.builtins = builtins.Default()
	}
	if reg := cfg.Registry; reg != nil {
		if ac.functions == nil {
			ac.functions = reg
		}
		if ac.schema == nil {
			ac.schema = reg
		}
		if ac.modules == nil {
			ac.modules = reg
		}
	}
	if ac.log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		ac.log = l
	}
	ac.log = ac.log.WithField("project", cfg.Project)
	return ac
}

func (ac *Context) Project() string             { return ac.project }
func (ac *Context) Mode() provider.Mode         { return ac.mode }
func (ac *Context) Builtins() *builtins.Catalog { return ac.builtins }
func (ac *Context) Engine() *contextmap.Engine  { return ac.engine }
func (ac *Context) Logger() logrus.FieldLogger  { return ac.log }

// WithProject returns a copy of ac for documents of another project that
// shares the same providers.
func (ac *Context) WithProject(project string) *Context {
	cp := *ac
	cp.project = project
	cp.log = ac.log.WithField("project", project)
	return &cp
}

func (ac *Context) resolver(mod *symbols.ModuleResult) *resolve.Resolver {
	return resolve.New(mod, resolve.Options{
		Builtins:  ac.builtins,
		Functions: ac.functions,
		Schema:    ac.schema,
		Modules:   ac.modules,
		Mode:      ac.mode,
	})
}
