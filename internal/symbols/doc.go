// Package symbols is the scope model: Symbol, case-insensitive Table,
// ModuleResult (module, GLOBALS, cursor and table registries) and
// FunctionResult (locals and limited-scope variables).
//
// Tables keep the first declaration of a name. Reporting the duplicate is
// the caller's job; Add only tells it that the name was taken.
package symbols
