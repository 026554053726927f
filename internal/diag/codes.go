package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004

	// Парсерные
	SynInfo                Code = 2000
	SynUnexpectedToken     Code = 2001
	SynUnclosedParen       Code = 2002
	SynUnclosedBracket     Code = 2003
	SynExpectIdentifier    Code = 2004
	SynExpectExpression    Code = 2005
	SynExpectType          Code = 2006
	SynExpectKeyword       Code = 2007
	SynExpectEnd           Code = 2008
	SynUnexpectedTopLevel  Code = 2009
	SynUnknownStatement    Code = 2010
	SynInvalidExit         Code = 2011
	SynInvalidContinue     Code = 2012
	SynDuplicateDefinition Code = 2013
	SynDuplicateField      Code = 2014
	SynMisplacedModifier   Code = 2015
	SynBadArrayDimension   Code = 2016
	SynNotAllowedHere      Code = 2017
	SynDuplicateMain       Code = 2018

	// Семантические
	SemaInfo              Code = 3000
	SemaUnresolvedSymbol  Code = 3001
	SemaUnresolvedMember  Code = 3002
	SemaNotPublic         Code = 3003
	SemaUnknownCursor     Code = 3004
	SemaUnknownPrepared   Code = 3005
	SemaUnresolvedType    Code = 3006
	SemaDeferredSymbol    Code = 3007
	SemaUnknownTable      Code = 3008
	SemaReturnCount       Code = 3009
	SemaUnresolvedInclude Code = 3010

	// Ошибки I/O
	IOLoadFileError Code = 4001

	// Ошибки проекта
	ProjManifestInvalid Code = 5001
	ProjModuleDuplicate Code = 5002
)

var codeDescription = map[Code]string{
	UnknownCode:                 "Unknown error",
	LexInfo:                     "Lexical information",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedString:       "Unterminated string",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexBadNumber:                "Bad number",
	SynInfo:                     "Syntax information",
	SynUnexpectedToken:          "Unexpected token",
	SynUnclosedParen:            "Unclosed parenthesis",
	SynUnclosedBracket:          "Unclosed bracket",
	SynExpectIdentifier:         "Expected identifier",
	SynExpectExpression:         "Expected expression",
	SynExpectType:               "Expected type",
	SynExpectKeyword:            "Expected keyword",
	SynExpectEnd:                "Missing END clause",
	SynUnexpectedTopLevel:       "Unexpected top level",
	SynUnknownStatement:         "Unknown statement",
	SynInvalidExit:              "EXIT target is not an enclosing block",
	SynInvalidContinue:          "CONTINUE target is not an enclosing loop",
	SynDuplicateDefinition:      "Duplicate definition",
	SynDuplicateField:           "Duplicate record field",
	SynMisplacedModifier:        "Modifier not allowed here",
	SynBadArrayDimension:        "Bad array dimension",
	SynNotAllowedHere:           "Construct not allowed here",
	SynDuplicateMain:            "Duplicate MAIN block",
	SemaInfo:                    "Semantic information",
	SemaUnresolvedSymbol:        "Unresolved symbol",
	SemaUnresolvedMember:        "Unresolved member",
	SemaNotPublic:               "Symbol is not public",
	SemaUnknownCursor:           "Unknown cursor",
	SemaUnknownPrepared:         "Unknown prepared statement",
	SemaUnresolvedType:          "Unresolved type",
	SemaDeferredSymbol:          "Symbol pending project indexing",
	SemaUnknownTable:            "Unknown table",
	SemaReturnCount:             "Inconsistent number of returned values",
	SemaUnresolvedInclude:       "Unresolved GLOBALS file",
	IOLoadFileError:             "I/O load file error",
	ProjManifestInvalid:         "Invalid project manifest",
	ProjModuleDuplicate:         "Duplicate module name",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
