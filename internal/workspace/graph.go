package workspace

import (
	"slices"
	"strings"

	"fglsense/internal/analysis"
	"fglsense/internal/ast"
	"fglsense/internal/ident"
)

// importGraph links the documents of the project through IMPORT FGL.
// Edges run from the imported module to its importers.
type importGraph struct {
	paths     []string
	byModule  map[string]int
	importers [][]int
	indeg     []int
}

func buildImportGraph(docs []*analysis.Document) *importGraph {
	g := &importGraph{
		paths:     make([]string, len(docs)),
		byModule:  make(map[string]int, len(docs)),
		importers: make([][]int, len(docs)),
		indeg:     make([]int, len(docs)),
	}
	for i, doc := range docs {
		g.paths[i] = doc.File.Path
		// одинаковые имена модулей: побеждает первый по пути
		key := ident.Fold(doc.Module.Name)
		if _, dup := g.byModule[key]; !dup {
			g.byModule[key] = i
		}
	}
	for i, doc := range docs {
		for _, imp := range doc.Module.Imports {
			if imp.Kind != ast.ImportFGL {
				continue
			}
			from, ok := g.byModule[ident.Fold(imp.Name)]
			if !ok || from == i || slices.Contains(g.importers[from], i) {
				continue
			}
			g.importers[from] = append(g.importers[from], i)
			g.indeg[i]++
		}
	}
	return g
}

// dependents returns the modules that import path directly or through
// other modules, in import order: a module comes after the ones it
// imports. Members of an import cycle come last, sorted by path.
func (g *importGraph) dependents(path string) []string {
	start := slices.Index(g.paths, path)
	if start < 0 {
		return nil
	}
	reached := make([]bool, len(g.paths))
	stack := []int{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, to := range g.importers[n] {
			if !reached[to] {
				reached[to] = true
				stack = append(stack, to)
			}
		}
	}
	reached[start] = false

	// Kahn по подграфу достижимых модулей
	indeg := make([]int, len(g.paths))
	for n, tos := range g.importers {
		if n != start && !reached[n] {
			continue
		}
		for _, to := range tos {
			if reached[to] && n != start {
				indeg[to]++
			}
		}
	}
	var ready, order []int
	for n := range g.paths {
		if reached[n] && indeg[n] == 0 {
			ready = append(ready, n)
		}
	}
	for len(ready) > 0 {
		slices.SortFunc(ready, func(a, b int) int { return strings.Compare(g.paths[a], g.paths[b]) })
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		reached[n] = false
		for _, to := range g.importers[n] {
			if !reached[to] {
				continue
			}
			if indeg[to]--; indeg[to] == 0 {
				ready = append(ready, to)
			}
		}
	}
	var cyclic []string
	for n := range g.paths {
		if reached[n] {
			cyclic = append(cyclic, g.paths[n])
		}
	}
	slices.Sort(cyclic)

	out := make([]string, 0, len(order)+len(cyclic))
	for _, n := range order {
		out = append(out, g.paths[n])
	}
	return append(out, cyclic...)
}

// Dependents lists the documents importing the module at path, directly
// or transitively, in the order they should be rechecked.
func (w *Workspace) Dependents(path string) []string {
	return buildImportGraph(w.Documents()).dependents(cleanPath(path))
}
