package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fglsense/internal/diag"
	"fglsense/internal/diagfmt"
	"fglsense/internal/lexer"
	"fglsense/internal/token"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.4gl",
	Short: "Tokenize a 4GL source file",
	Long:  `Tokenize breaks down a 4GL source file into its constituent tokens`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	tokenizeCmd.Flags().Bool("trivia", false, "include whitespace, newlines and comments")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	withTrivia, err := cmd.Flags().GetBool("trivia")
	if err != nil {
		return fmt.Errorf("failed to get trivia flag: %w", err)
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
	toks := lexer.Tokenize(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	if !withTrivia {
		toks = dropTrivia(toks)
	}

	// Выводим диагностику в stderr, если есть
	if err := printDiagnostics(cmd, bag, files); err != nil {
		return err
	}

	switch format {
	case "pretty":
		return diagfmt.FormatTokensPretty(os.Stdout, toks, file)
	case "json":
		return diagfmt.FormatTokensJSON(os.Stdout, toks, file)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func dropTrivia(toks []token.Token) []token.Token {
	out := toks[:0:0]
	for _, tok := range toks {
		if !tok.IsTrivia() {
			out = append(out, tok)
		}
	}
	return out
}
