package parser

import (
	"path/filepath"
	"strings"

	"fglsense/internal/ast"
	"fglsense/internal/diag"
	"fglsense/internal/source"
	"fglsense/internal/symbols"
	"fglsense/internal/token"
	"fglsense/internal/tokstream"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
	// Project is copied into the module result for cross-module lookups.
	Project string
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	Tree   *ast.Tree
	Module *symbols.ModuleResult
}

// Parser - состояние парсера на один файл
type Parser struct {
	ts       *tokstream.Forward
	tree     *ast.Tree
	file     *source.File
	mod      *symbols.ModuleResult
	opts     Options
	lastSpan source.Span // span последнего съеденного токена для лучшей диагностики
	sawMain  bool
}

// ParseFile parses one module. toks is the full lexer output, trivia
// included. The returned tree and module result are complete even when the
// source has syntax errors.
func ParseFile(file *source.File, toks []token.Token, opts Options) Result {
	name := strings.TrimSuffix(file.BaseName(), filepath.Ext(file.BaseName()))
	p := Parser{
		ts:   tokstream.NewForward(toks),
		tree: ast.NewTree(file.ID, ast.Hints{Nodes: uint(len(toks) / 4)}),
		file: file,
		mod:  symbols.NewModuleResult(name, file.Path, file.ID),
		opts: opts,
	}
	p.mod.Project = opts.Project
	p.lastSpan = source.Span{File: file.ID}

	p.parseModule()
	return Result{Tree: p.tree, Module: p.mod}
}

func (p *Parser) at(k token.Kind) bool {
	return p.ts.Current().Kind == k
}

func (p *Parser) atAny(kinds ...token.Kind) bool {
	cur := p.ts.Current().Kind
	for _, k := range kinds {
		if cur == k {
			return true
		}
	}
	return false
}

func (p *Parser) peekKind(k int) token.Kind {
	return p.ts.Peek(k).Kind
}

// atIdent reports whether the current token may be read as a name.
func (p *Parser) atIdent() bool {
	return token.CanBeIdent(p.ts.Current().Kind)
}

// atWord matches an identifier by text; used for words the lexer does not
// treat as keywords (HEADER, EVERY, PROGRAM, ...).
func (p *Parser) atWord(word string) bool {
	cur := p.ts.Current()
	return token.CanBeIdent(cur.Kind) && strings.EqualFold(cur.Text, word)
}

func (p *Parser) wordAt(k int, word string) bool {
	tok := p.ts.Peek(k)
	return token.CanBeIdent(tok.Kind) && strings.EqualFold(tok.Text, word)
}

// parseModule - основной цикл верхнего уровня: пока не EOF - parseModuleItem.
func (p *Parser) parseModule() {
	size := uint32(len(p.file.Content))
	root := p.tree.NewNode(ast.NodeModule, source.Span{File: p.file.ID, Start: 0, End: size})
	p.tree.Root = root
	for !p.at(token.EOF) {
		if !p.parseModuleItem(root) {
			p.resyncTop()
		}
	}
	p.tree.Finish(root, size, true)
}

// parseModuleItem выбирает по первому токену нужный распознаватель
// top-level конструкции.
func (p *Parser) parseModuleItem(root ast.NodeID) bool {
	var flags ast.NodeFlags
	modStart := p.ts.Current().Span
	switch p.ts.Current().Kind {
	case token.KwPublic:
		flags = ast.FlagPublic
		p.advance()
	case token.KwPrivate:
		flags = ast.FlagPrivate
		p.advance()
	}

	switch p.ts.Current().Kind {
	case token.KwImport:
		p.noModifier(flags, modStart)
		return p.parseImport(root)
	case token.KwSchema, token.KwDatabase:
		p.noModifier(flags, modStart)
		_, ok := p.parseSchema(root)
		return ok
	case token.KwGlobals:
		p.noModifier(flags, modStart)
		return p.parseGlobals(root)
	case token.KwDefine, token.KwConstant, token.KwType:
		return p.parseModuleDecl(root, flags, modStart)
	case token.KwFunction:
		return p.parseFunction(root, flags, modStart)
	case token.KwMain:
		p.noModifier(flags, modStart)
		return p.parseMain(root)
	case token.KwReport:
		return p.parseReport(root, flags, modStart)
	default:
		p.report(diag.SynUnexpectedTopLevel, diag.SevError, p.ts.Current().Span,
			"unexpected "+describe(p.ts.Current())+" at module level")
		bad := p.open(ast.NodeBad, root)
		p.advance()
		p.close(bad, false)
		return false
	}
}

func (p *Parser) noModifier(flags ast.NodeFlags, sp source.Span) {
	if flags != 0 {
		p.report(diag.SynMisplacedModifier, diag.SevError, sp, "PUBLIC/PRIVATE is not allowed here")
	}
}

// resyncTop - восстановление после ошибки на верхнем уровне:
// прокручиваем до стартового токена следующего элемента модуля или EOF.
func (p *Parser) resyncTop() {
	for !p.at(token.EOF) && !isModuleStarter(p.ts.Current().Kind) {
		p.advance()
	}
}

// isModuleStarter reports whether k begins a module-level item.
func isModuleStarter(k token.Kind) bool {
	switch k {
	case token.KwImport, token.KwSchema, token.KwGlobals, token.KwDefine, token.KwConstant,
		token.KwType, token.KwFunction, token.KwMain, token.KwReport, token.KwPublic, token.KwPrivate:
		return true
	default:
		return false
	}
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.Ident:
		return "identifier \"" + tok.Text + "\""
	default:
		return "\"" + tok.Text + "\""
	}
}
