package builtins

import (
	"strings"

	"fglsense/internal/ast"
	"fglsense/internal/ident"
	"fglsense/internal/symbols"
	"fglsense/internal/types"
)

const builtinPath = "<builtin>"

func sym(name string, kind symbols.SymbolKind, t *types.Type) *symbols.Symbol {
	return &symbols.Symbol{
		Name:  name,
		Kind:  kind,
		Flags: symbols.SymbolFlagBuiltin | symbols.SymbolFlagPublic,
		Type:  t,
		Path:  builtinPath,
	}
}

// fn builds a callable; params are names, ret may be nil.
func fn(kind symbols.SymbolKind, name string, ret *types.Type, params ...string) *symbols.Symbol {
	s := sym(name, kind, ret)
	sig := &symbols.Signature{}
	for _, p := range params {
		if p == "..." {
			sig.Variadic = true
			continue
		}
		sig.Params = append(sig.Params, symbols.Param{Name: p})
	}
	if ret != nil {
		sig.Returns = []*types.Type{ret}
	}
	s.Signature = sig
	return s
}

func add(t *symbols.Table, syms ...*symbols.Symbol) {
	for _, s := range syms {
		t.Add(s)
	}
}

var (
	tInt    = types.Integer
	tStr    = types.String
	tBool   = types.Boolean
	tDate   = types.Date
	tDec    = types.Decimal
	tSmall  = types.Scalar("smallint")
	tVoid   *types.Type
	classOf = types.Class
)

func build() *Catalog {
	c := newCatalog()

	sqlca := &types.Type{Kind: types.KindRecord, Name: "sqlca"}
	for _, f := range []struct {
		name string
		t    *types.Type
	}{
		{"sqlcode", tInt}, {"sqlerrm", tStr}, {"sqlerrp", tStr},
		{"sqlerrd", &types.Type{Kind: types.KindArray, Array: ast.ArrayStatic, Dims: 1, Elem: tInt}},
		{"sqlawarn", tStr},
	} {
		sqlca.AddField(types.Field{Name: f.name, Type: f.t})
	}
	sys := func(name string, t *types.Type) *symbols.Symbol {
		s := sym(name, symbols.SymbolVariable, t)
		s.Flags |= symbols.SymbolFlagSystem
		return s
	}
	add(c.Variables,
		sys("status", tInt),
		sys("int_flag", tBool),
		sys("quit_flag", tBool),
		sys("sqlca", sqlca),
		sys("sqlstate", tStr),
		sys("sqlerrmessage", tStr),
	)

	konst := func(name, value string, t *types.Type) *symbols.Symbol {
		s := sym(name, symbols.SymbolConstant, t)
		s.Value = value
		return s
	}
	add(c.Constants,
		konst("TRUE", "1", tBool),
		konst("FALSE", "0", tBool),
		konst("NULL", "NULL", nil),
		konst("NOTFOUND", "100", tInt),
	)

	F := symbols.SymbolFunction
	add(c.Functions,
		fn(F, "length", tInt, "s"),
		fn(F, "upshift", tStr, "s"),
		fn(F, "downshift", tStr, "s"),
		fn(F, "arg_val", tStr, "n"),
		fn(F, "num_args", tInt),
		fn(F, "fgl_getenv", tStr, "name"),
		fn(F, "fgl_setenv", tVoid, "name", "value"),
		fn(F, "fgl_lastkey", tInt),
		fn(F, "fgl_keyval", tInt, "key"),
		fn(F, "fgl_buffertouched", tBool),
		fn(F, "fgl_dialog_getfieldname", tStr),
		fn(F, "fgl_set_arr_curr", tVoid, "row"),
		fn(F, "arr_curr", tInt),
		fn(F, "arr_count", tInt),
		fn(F, "scr_line", tInt),
		fn(F, "set_count", tVoid, "n"),
		fn(F, "ascii", tStr, "code"),
		fn(F, "ord", tInt, "s"),
		fn(F, "startlog", tVoid, "file"),
		fn(F, "errorlog", tVoid, "msg"),
		fn(F, "err_get", tStr, "code"),
		fn(F, "err_print", tVoid, "code"),
		fn(F, "showhelp", tVoid, "n"),
		fn(F, "mdy", tDate, "m", "d", "y"),
		fn(F, "day", tSmall, "d"),
		fn(F, "month", tSmall, "d"),
		fn(F, "year", tSmall, "d"),
		fn(F, "weekday", tSmall, "d"),
		fn(F, "date", tDate, "v"),
		fn(F, "time", tStr),
		fn(F, "extend", nil, "dt", "q"),
		fn(F, "units", nil, "n"),
		fn(F, "fgl_width", tInt, "s"),
		fn(F, "round", tDec, "v", "n"),
		fn(F, "sqrt", tDec, "v"),
		fn(F, "abs", tDec, "v"),
		fn(F, "fgl_decimal_truncate", tDec, "v", "n"),
		fn(F, "fgl_system", tVoid, "cmd"),
		fn(F, "fgl_winmessage", tVoid, "title", "text", "icon"),
		fn(F, "fgl_winquestion", tStr, "title", "text", "default", "choices", "icon", "danger"),
		fn(F, "fgl_report_type", tStr),
		fn(F, "sfmt", tStr, "fmt", "..."),
	)

	M := symbols.SymbolMethod
	add(c.arrayMethods,
		fn(M, "getLength", tInt),
		fn(M, "appendElement", tVoid),
		fn(M, "deleteElement", tVoid, "index"),
		fn(M, "insertElement", tVoid, "index"),
		fn(M, "clear", tVoid),
		fn(M, "search", tInt, "key", "value"),
		fn(M, "sort", tVoid, "key", "reverse"),
		fn(M, "copyTo", tVoid, "dst"),
	)
	add(c.stringMethods,
		fn(M, "getLength", tInt),
		fn(M, "trim", tStr),
		fn(M, "trimLeft", tStr),
		fn(M, "trimRight", tStr),
		fn(M, "toUpperCase", tStr),
		fn(M, "toLowerCase", tStr),
		fn(M, "subString", tStr, "start", "end"),
		fn(M, "getIndexOf", tInt, "s", "start"),
		fn(M, "getCharAt", tStr, "pos"),
		fn(M, "equals", tBool, "s"),
		fn(M, "equalsIgnoreCase", tBool, "s"),
		fn(M, "append", tStr, "s"),
		fn(M, "matches", tBool, "pattern"),
	)

	for _, pkg := range packages {
		psym := sym(pkg.name, symbols.SymbolPackage, types.Module(pkg.name))
		c.Packages.Add(psym)
		classes := symbols.NewTable()
		c.pkgClasses[ident.Fold(pkg.name)] = classes
		for _, cls := range pkg.classes {
			qualified := pkg.name + "." + cls.name
			csym := sym(cls.name, symbols.SymbolClass, classOf(qualified))
			classes.Add(csym)
			methods := symbols.NewTable()
			for _, m := range cls.methods {
				methods.Add(method(m, qualified))
			}
			c.classes[ident.Fold(qualified)] = methods
		}
	}
	return c
}

type classDef struct {
	name    string
	methods []string
}

type packageDef struct {
	name    string
	classes []classDef
}

// Method entries are "name(params):ret" where ret is a scalar name, a
// qualified class or "self" for the owning class.
var packages = []packageDef{
	{"ui", []classDef{
		{"Window", []string{"getCurrent():self", "forName(name):self", "getForm():ui.Form",
			"setText(text)", "getText():string", "createForm(name):ui.Form", "getNode():om.DomNode"}},
		{"Form", []string{"setElementHidden(name,hidden)", "setFieldHidden(name,hidden)",
			"setElementText(name,text)", "loadToolBar(file)", "getNode():om.DomNode"}},
		{"Dialog", []string{"getCurrent():self", "setActionActive(name,active)", "setActionHidden(name,hidden)",
			"setFieldActive(field,active)", "getCurrentRow(screenArray):integer", "setCurrentRow(screenArray,row)",
			"getArrayLength(screenArray):integer", "getFieldBuffer(field):string", "nextField(field)",
			"accept()", "cancel()", "getForm():ui.Form", "setDefaultUnbuffered(v)"}},
		{"Interface", []string{"setText(text)", "getText():string", "refresh()", "loadStyles(file)",
			"loadActionDefaults(file)", "loadToolBar(file)", "getRootNode():om.DomNode", "frontCall(module,name,params,returns)"}},
		{"ComboBox", []string{"forName(name):self", "addItem(code,text)", "clear()", "getItemCount():integer"}},
	}},
	{"base", []classDef{
		{"Channel", []string{"create():self", "openFile(path,mode)", "openPipe(cmd,mode)", "readLine():string",
			"writeLine(line)", "read(vars)", "write(vars)", "close()", "setDelimiter(d)", "isEof():boolean"}},
		{"StringTokenizer", []string{"create(s,delim):self", "createExt(s,delim,esc,nulls):self",
			"hasMoreTokens():boolean", "nextToken():string", "countTokens():integer"}},
		{"StringBuffer", []string{"create():self", "append(s)", "toString():string", "getLength():integer",
			"clear()", "replace(old,new,count)", "getIndexOf(s,start):integer"}},
		{"Application", []string{"getArgument(n):string", "getArgumentCount():integer", "getProgramName():string",
			"getProgramDir():string", "getFglDir():string"}},
	}},
	{"om", []classDef{
		{"DomNode", []string{"getTagName():string", "getAttribute(name):string", "setAttribute(name,value)",
			"createChild(tag):self", "appendChild(node)", "removeChild(node)", "getFirstChild():self",
			"getNext():self", "getParent():self", "getChildCount():integer", "selectByPath(path):om.NodeList"}},
		{"NodeList", []string{"getLength():integer", "item(i):om.DomNode"}},
		{"DomDocument", []string{"create(tag):self", "createFromXmlFile(file):self", "getDocumentElement():om.DomNode"}},
	}},
	{"util", []classDef{
		{"JSON", []string{"stringify(v):string", "parse(s,v)", "proposeType(s):string"}},
		{"Strings", []string{"base64Encode(s):string", "base64Decode(s):string"}},
		{"Math", []string{"rand(n):integer", "pow(x,y):float", "sqrt(x):float"}},
	}},
	{"os", []classDef{
		{"Path", []string{"exists(path):boolean", "join(a,b):string", "basename(path):string",
			"dirname(path):string", "mkdir(path):boolean", "delete(path):boolean", "isDirectory(path):boolean",
			"size(path):integer", "pwd():string"}},
	}},
}

// method parses one method entry of the packages table.
func method(def, owner string) *symbols.Symbol {
	head, ret, _ := strings.Cut(def, ":")
	name, params, _ := strings.Cut(head, "(")
	params = strings.TrimSuffix(params, ")")
	var rt *types.Type
	switch {
	case ret == "self":
		rt = classOf(owner)
	case strings.Contains(ret, "."):
		rt = classOf(ret)
	case ret != "":
		rt = types.Scalar(ret)
	}
	var names []string
	if params != "" {
		names = strings.Split(params, ",")
	}
	return fn(symbols.SymbolMethod, name, rt, names...)
}
