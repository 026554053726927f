// Package provider defines the optional external symbol sources consulted
// after local scopes: function signatures, the database schema and the
// published modules of the project. A missing provider contributes no
// symbols and is never an error.
package provider

import (
	"context"
	"fmt"
	"strings"

	"fglsense/internal/symbols"
)

// FunctionProvider answers "which functions are called name".
type FunctionProvider interface {
	LookupFunction(ctx context.Context, name string) []*symbols.Symbol
	Functions(ctx context.Context) []*symbols.Symbol
}

// SchemaProvider answers table → columns questions. Table symbols carry a
// record type whose fields are the columns.
type SchemaProvider interface {
	Table(ctx context.Context, name string) (*symbols.Symbol, bool)
	Tables(ctx context.Context) []*symbols.Symbol
}

// ModuleEnumerator returns already published module results. It never
// parses.
type ModuleEnumerator interface {
	// Module finds a module visible from project (its own modules first,
	// then referenced projects).
	Module(project, name string) (*symbols.ModuleResult, bool)
	// Modules lists modules visible from project.
	Modules(project string) []*symbols.ModuleResult
	// Include returns the declarations of a GLOBALS file.
	Include(path string) (*symbols.ModuleResult, bool)
}

// Mode selects how the resolver treats calls it cannot bind locally.
type Mode uint8

const (
	// ModeOff never consults the function provider.
	ModeOff Mode = iota
	// ModeDeferred answers Deferred and leaves the lookup to a later pass.
	ModeDeferred
	// ModeSearch queries the function provider synchronously.
	ModeSearch
)

var modeNames = [...]string{"off", "deferred", "search"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// ParseMode parses "off", "deferred" or "search".
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Mode(i), nil
		}
	}
	return ModeOff, fmt.Errorf("unknown provider mode %q (want off, deferred or search)", s)
}

// UnmarshalText lets TOML and environment decoders read a Mode.
func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
