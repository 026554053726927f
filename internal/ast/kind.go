package ast

// NodeKind is the variant tag of a Node. Kind-specific data lives either in
// the common Node fields (Name, Exprs, Keyword, Flags) or in a payload arena
// addressed by Node.Payload.
type NodeKind uint8

const (
	NodeInvalid NodeKind = iota
	NodeModule

	// module level
	NodeImport
	NodeSchema
	NodeGlobals     // GLOBALS ... END GLOBALS
	NodeGlobalsFile // GLOBALS "file"
	NodeMain
	NodeFunction
	NodeReport
	NodeFormat      // FORMAT section of a report
	NodeFormatBlock // FIRST PAGE HEADER / ON EVERY ROW / ...

	// declarations
	NodeDefine
	NodeVarDef
	NodeConstant
	NodeConstDef
	NodeTypeDecl
	NodeTypeDef
	NodeTypeRef

	// statements
	NodeLet
	NodeCall
	NodeReturn
	NodeIf
	NodeCase
	NodeWhen
	NodeOtherwise
	NodeFor
	NodeForeach
	NodeWhile
	NodeExit
	NodeContinue
	NodeTry
	NodeCatch
	NodeDeclareCursor
	NodePrepare
	NodeExecute
	NodeOpenCursor
	NodeFetch
	NodeCloseCursor
	NodeFree
	NodeCreateTable
	NodeSQL
	NodeWhenever
	NodeInitialize
	NodeDisplay
	NodeDisplayArray
	NodeInput
	NodeConstruct
	NodeMenu
	NodeDialog
	NodeControlBlock // ON ACTION, COMMAND, BEFORE/AFTER ..., ON KEY
	NodeMessage
	NodeError
	NodeSleep
	NodeRun
	NodeOpenWindow
	NodeCloseWindow
	NodeOpenForm
	NodeDisplayForm
	NodeClear
	NodePrint
	NodeSkip
	NodeNextField
	NodeAccept
	NodeExprStmt // голое выражение внутри блока, обычно недописанный код
	NodeBad

	nodeKindCount
)

var nodeKindNames = [...]string{
	NodeInvalid:       "Invalid",
	NodeModule:        "Module",
	NodeImport:        "Import",
	NodeSchema:        "Schema",
	NodeGlobals:       "Globals",
	NodeGlobalsFile:   "GlobalsFile",
	NodeMain:          "Main",
	NodeFunction:      "Function",
	NodeReport:        "Report",
	NodeFormat:        "Format",
	NodeFormatBlock:   "FormatBlock",
	NodeDefine:        "Define",
	NodeVarDef:        "VarDef",
	NodeConstant:      "Constant",
	NodeConstDef:      "ConstDef",
	NodeTypeDecl:      "TypeDecl",
	NodeTypeDef:       "TypeDef",
	NodeTypeRef:       "TypeRef",
	NodeLet:           "Let",
	NodeCall:          "Call",
	NodeReturn:        "Return",
	NodeIf:            "If",
	NodeCase:          "Case",
	NodeWhen:          "When",
	NodeOtherwise:     "Otherwise",
	NodeFor:           "For",
	NodeForeach:       "Foreach",
	NodeWhile:         "While",
	NodeExit:          "Exit",
	NodeContinue:      "Continue",
	NodeTry:           "Try",
	NodeCatch:         "Catch",
	NodeDeclareCursor: "DeclareCursor",
	NodePrepare:       "Prepare",
	NodeExecute:       "Execute",
	NodeOpenCursor:    "OpenCursor",
	NodeFetch:         "Fetch",
	NodeCloseCursor:   "CloseCursor",
	NodeFree:          "Free",
	NodeCreateTable:   "CreateTable",
	NodeSQL:           "SQL",
	NodeWhenever:      "Whenever",
	NodeInitialize:    "Initialize",
	NodeDisplay:       "Display",
	NodeDisplayArray:  "DisplayArray",
	NodeInput:         "Input",
	NodeConstruct:     "Construct",
	NodeMenu:          "Menu",
	NodeDialog:        "Dialog",
	NodeControlBlock:  "ControlBlock",
	NodeMessage:       "Message",
	NodeError:         "Error",
	NodeSleep:         "Sleep",
	NodeRun:           "Run",
	NodeOpenWindow:    "OpenWindow",
	NodeCloseWindow:   "CloseWindow",
	NodeOpenForm:      "OpenForm",
	NodeDisplayForm:   "DisplayForm",
	NodeClear:         "Clear",
	NodePrint:         "Print",
	NodeSkip:          "Skip",
	NodeNextField:     "NextField",
	NodeAccept:        "Accept",
	NodeExprStmt:      "ExprStmt",
	NodeBad:           "Bad",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) && nodeKindNames[k] != "" {
		return nodeKindNames[k]
	}
	return "Unknown"
}

// IsFunctionLike reports whether k owns a local scope.
func (k NodeKind) IsFunctionLike() bool {
	return k == NodeMain || k == NodeFunction || k == NodeReport
}

// IsCompositeScope reports whether containment search should descend into
// nodes of this kind when looking for the scope of an offset.
func (k NodeKind) IsCompositeScope() bool {
	return k.IsFunctionLike() || k == NodeGlobals
}

// IsLoop reports whether CONTINUE may target k.
func (k NodeKind) IsLoop() bool {
	return k == NodeFor || k == NodeForeach || k == NodeWhile
}

// IsInteractive reports whether k opens an interactive dialog block in
// which the DIALOG object is available.
func (k NodeKind) IsInteractive() bool {
	switch k {
	case NodeInput, NodeConstruct, NodeDisplayArray, NodeMenu, NodeDialog:
		return true
	default:
		return false
	}
}
