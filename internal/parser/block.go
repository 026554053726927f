package parser

import (
	"fglsense/internal/ast"
	"fglsense/internal/diag"
	"fglsense/internal/token"
)

// blockContext carries what the enclosing constructs allow: the targets of
// EXIT and CONTINUE. Each construct widens it for its children.
type blockContext struct {
	exits     uint64 // битовые маски по целям EXIT/CONTINUE
	continues uint64
	// interactive is set inside INPUT/CONSTRUCT/DISPLAY ARRAY/MENU/DIALOG.
	interactive bool
	// inFunction is false at module level and inside GLOBALS.
	inFunction bool
	inReport   bool
}

// exit/continue targets; EXIT PROGRAM is always valid.
var blockTargets = map[token.Kind]uint64{
	token.KwFor:       1 << 0,
	token.KwForeach:   1 << 1,
	token.KwWhile:     1 << 2,
	token.KwCase:      1 << 3,
	token.KwMenu:      1 << 4,
	token.KwInput:     1 << 5,
	token.KwConstruct: 1 << 6,
	token.KwDisplay:   1 << 7,
	token.KwDialog:    1 << 8,
	token.KwReport:    1 << 9,
}

func (c blockContext) withExit(kinds ...token.Kind) blockContext {
	for _, k := range kinds {
		c.exits |= blockTargets[k]
	}
	return c
}

func (c blockContext) withLoop(kinds ...token.Kind) blockContext {
	for _, k := range kinds {
		c.exits |= blockTargets[k]
		c.continues |= blockTargets[k]
	}
	return c
}

func (c blockContext) canExit(k token.Kind) bool {
	bit, ok := blockTargets[k]
	return ok && c.exits&bit != 0
}

func (c blockContext) canContinue(k token.Kind) bool {
	bit, ok := blockTargets[k]
	return ok && c.continues&bit != 0
}

// isStatementStarter - ключевые слова, с которых начинается оператор.
func isStatementStarter(k token.Kind) bool {
	switch k {
	case token.KwDefine, token.KwConstant, token.KwType, token.KwLet, token.KwCall,
		token.KwReturn, token.KwIf, token.KwCase, token.KwFor, token.KwForeach,
		token.KwWhile, token.KwExit, token.KwContinue, token.KwTry, token.KwDeclare,
		token.KwPrepare, token.KwExecute, token.KwOpen, token.KwFetch, token.KwClose,
		token.KwFree, token.KwCreate, token.KwSQL, token.KwWhenever, token.KwInitialize,
		token.KwDisplay, token.KwInput, token.KwConstruct, token.KwMenu, token.KwDialog,
		token.KwMessage, token.KwError, token.KwSleep, token.KwRun, token.KwClear,
		token.KwPrint, token.KwSkip, token.KwDatabase, token.KwSelect, token.KwInsert,
		token.KwUpdate, token.KwDelete, token.KwAccept, token.KwNext:
		return true
	default:
		return false
	}
}

// isBlockTerminator - токены, на которых заканчивается список операторов:
// они никогда не начинают оператор, но закрывают или разделяют блоки.
func isBlockTerminator(k token.Kind) bool {
	switch k {
	case token.EOF, token.KwEnd, token.KwElse, token.KwWhen, token.KwOtherwise,
		token.KwCatch, token.KwOn, token.KwCommand, token.KwBefore, token.KwAfter,
		token.KwFormat, token.KwFirst, token.KwPage:
		return true
	default:
		return false
	}
}

// parseBlock parses statements into parent until a terminator. It never
// consumes the terminator.
func (p *Parser) parseBlock(parent ast.NodeID, ctx blockContext) Facts {
	var facts Facts
	for {
		k := p.ts.Current().Kind
		if isBlockTerminator(k) || k == token.KwFunction || k == token.KwMain ||
			k == token.KwReport || k == token.KwGlobals || k == token.KwPublic ||
			k == token.KwPrivate || k == token.KwImport {
			// FIRST/PAGE заканчивают блок только внутри отчёта
			if (k == token.KwFirst || k == token.KwPage) && !ctx.inReport {
				p.badStatement(parent)
				continue
			}
			return facts
		}
		f, ok := p.parseStatement(parent, ctx)
		facts.Merge(f)
		if !ok {
			p.skipToBoundary()
		}
	}
}

// parseEnd consumes "END kw". When END is followed by another keyword the
// END belongs to an outer construct: a diagnostic is reported and nothing
// is consumed, so the outer parser can close normally.
func (p *Parser) parseEnd(kw token.Kind, opener token.Token) bool {
	if p.at(token.KwEnd) && p.peekKind(1) == kw {
		p.advance()
		p.advance()
		return true
	}
	p.reportNote(diag.SynExpectEnd, p.getDiagnosticSpan(), "missing END "+kw.String(),
		opener.Span, kw.String()+" starts here")
	return false
}

// badStatement reports and skips something that cannot start a statement.
func (p *Parser) badStatement(parent ast.NodeID) {
	bad := p.open(ast.NodeBad, parent)
	p.err(diag.SynUnknownStatement, "unexpected "+describe(p.ts.Current()))
	p.advance()
	p.skipToBoundary()
	p.close(bad, false)
}
