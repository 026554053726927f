package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fglsense/internal/diag"
	"fglsense/internal/diagfmt"
	"fglsense/internal/lexer"
	"fglsense/internal/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] file.4gl",
	Short: "Parse a 4GL source file and print its syntax tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	files, file, err := loadSource(sourceFs, args[0])
	if err != nil {
		return err
	}
	bag := diag.NewBag(maxDiagnostics)
	rep := diag.BagReporter{Bag: bag}
	toks := lexer.Tokenize(file, lexer.Options{Reporter: rep})
	res := parser.ParseFile(file, toks, parser.Options{
		MaxErrors: uint(max(maxDiagnostics, 0)),
		Reporter:  rep,
	})

	if err := printDiagnostics(cmd, bag, files); err != nil {
		return err
	}

	switch format {
	case "pretty":
		return diagfmt.FormatASTPretty(os.Stdout, res.Tree, file)
	case "json":
		return diagfmt.FormatASTJSON(os.Stdout, res.Tree, file)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
