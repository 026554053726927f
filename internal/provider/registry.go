package provider

import (
	"context"
	"sort"
	"sync"

	"fglsense/internal/ident"
	"fglsense/internal/symbols"
)

// Registry is the in-memory provider filled by the workspace indexer. It
// implements FunctionProvider, SchemaProvider and ModuleEnumerator and is
// safe for concurrent use: the indexer publishes while documents resolve.
type Registry struct {
	mu         sync.RWMutex
	modules    map[string]map[string]*symbols.ModuleResult // project -> module -> result
	references map[string][]string                         // project -> referenced projects
	includes   map[string]*symbols.ModuleResult
	functions  map[string][]*symbols.Symbol // public functions by folded name
	tables     *symbols.Table
	generation uint64
}

func NewRegistry() *Registry {
	return &Registry{
		modules:    make(map[string]map[string]*symbols.ModuleResult),
		references: make(map[string][]string),
		includes:   make(map[string]*symbols.ModuleResult),
		functions:  make(map[string][]*symbols.Symbol),
		tables:     symbols.NewTable(),
	}
}

// Generation changes on every publication; callers use it to notice that
// deferred names may now resolve.
func (r *Registry) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

// SetReferences records the projects whose modules project may use.
func (r *Registry) SetReferences(project string, refs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.references[project] = append([]string(nil), refs...)
	r.generation++
}

// Publish makes a module result visible, replacing an earlier version of
// the same module.
func (r *Registry) Publish(m *symbols.ModuleResult) {
	if m == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	mods := r.modules[m.Project]
	if mods == nil {
		mods = make(map[string]*symbols.ModuleResult)
		r.modules[m.Project] = mods
	}
	key := ident.Fold(m.Name)
	if old, ok := mods[key]; ok {
		r.dropFunctions(old)
	}
	mods[key] = m
	for _, fn := range m.Functions.All() {
		if fn.IsPublic() {
			k := ident.Fold(fn.Name)
			r.functions[k] = append(r.functions[k], fn)
		}
	}
	r.generation++
}

func (r *Registry) dropFunctions(old *symbols.ModuleResult) {
	for _, fn := range old.Functions.All() {
		k := ident.Fold(fn.Name)
		list := r.functions[k][:0]
		for _, s := range r.functions[k] {
			if s != fn {
				list = append(list, s)
			}
		}
		if len(list) == 0 {
			delete(r.functions, k)
		} else {
			r.functions[k] = list
		}
	}
}

// Remove withdraws a module.
func (r *Registry) Remove(project, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := ident.Fold(name)
	if old, ok := r.modules[project][key]; ok {
		r.dropFunctions(old)
		delete(r.modules[project], key)
		r.generation++
	}
}

// PublishInclude registers the declarations of a GLOBALS file.
func (r *Registry) PublishInclude(path string, m *symbols.ModuleResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.includes[path] = m
	r.generation++
}

// SetSchema replaces the known database tables.
func (r *Registry) SetSchema(tables []*symbols.Symbol) {
	t := symbols.NewTable()
	for _, tbl := range tables {
		t.Add(tbl)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables = t
	r.generation++
}

func (r *Registry) Module(project, name string) (*symbols.ModuleResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := ident.Fold(name)
	for _, p := range r.visible(project) {
		if m, ok := r.modules[p][key]; ok {
			return m, true
		}
	}
	return nil, false
}

func (r *Registry) Modules(project string) []*symbols.ModuleResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*symbols.ModuleResult
	for _, p := range r.visible(project) {
		start := len(out)
		for _, m := range r.modules[p] {
			out = append(out, m)
		}
		part := out[start:]
		sort.Slice(part, func(i, j int) bool { return part[i].Name < part[j].Name })
	}
	return out
}

// visible returns project followed by its references. Caller holds mu.
func (r *Registry) visible(project string) []string {
	return append([]string{project}, r.references[project]...)
}

func (r *Registry) Include(path string) (*symbols.ModuleResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.includes[path]
	return m, ok
}

func (r *Registry) LookupFunction(ctx context.Context, name string) []*symbols.Symbol {
	if ctx.Err() != nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*symbols.Symbol(nil), r.functions[ident.Fold(name)]...)
}

func (r *Registry) Functions(ctx context.Context) []*symbols.Symbol {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.functions))
	for k := range r.functions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []*symbols.Symbol
	for _, k := range keys {
		if ctx.Err() != nil {
			return out
		}
		out = append(out, r.functions[k]...)
	}
	return out
}

func (r *Registry) Table(_ context.Context, name string) (*symbols.Symbol, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tables.Lookup(name)
}

func (r *Registry) Tables(_ context.Context) []*symbols.Symbol {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*symbols.Symbol(nil), r.tables.All()...)
}
