package provider

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"fglsense/internal/symbols"
	"fglsense/internal/types"
)

// schemaDoc is the on-disk schema description:
//
//	database: stores
//	tables:
//	  - name: customer
//	    columns:
//	      - {name: customer_num, type: serial}
//	      - {name: fname, type: "char(15)"}
type schemaDoc struct {
	Database string `yaml:"database"`
	Tables   []struct {
		Name    string `yaml:"name"`
		Columns []struct {
			Name string `yaml:"name"`
			Type string `yaml:"type"`
		} `yaml:"columns"`
	} `yaml:"tables"`
}

// LoadSchema reads a schema document and returns one table symbol per
// table; the table type is a record of its columns.
func LoadSchema(fs afero.Fs, path string) (string, []*symbols.Symbol, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", nil, fmt.Errorf("read schema: %w", err)
	}
	var doc schemaDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", nil, fmt.Errorf("parse schema %s: %w", path, err)
	}
	out := make([]*symbols.Symbol, 0, len(doc.Tables))
	for _, t := range doc.Tables {
		if t.Name == "" {
			return "", nil, fmt.Errorf("schema %s: table without name", path)
		}
		rec := &types.Type{Kind: types.KindRecord, Name: t.Name}
		for _, c := range t.Columns {
			if !rec.AddField(types.Field{Name: c.Name, Type: ColumnType(c.Type)}) {
				return "", nil, fmt.Errorf("schema %s: duplicate column %s.%s", path, t.Name, c.Name)
			}
		}
		out = append(out, &symbols.Symbol{
			Name:   t.Name,
			Kind:   symbols.SymbolTable,
			Flags:  symbols.SymbolFlagImported,
			Type:   rec,
			Path:   path,
			Module: doc.Database,
		})
	}
	return doc.Database, out, nil
}

// ColumnType converts "decimal(10,2)" style column types.
func ColumnType(s string) *types.Type {
	base, args, _ := strings.Cut(strings.TrimSpace(s), "(")
	t := types.Scalar(strings.TrimSpace(base))
	if args != "" {
		t.Size = strings.TrimSuffix(args, ")")
	}
	return t
}
