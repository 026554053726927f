package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"fglsense/internal/analysis"
	"fglsense/internal/contextmap"
	"fglsense/internal/provider"
	"fglsense/internal/resolve"
	"fglsense/internal/source"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [flags] file.4gl --at line:col",
	Short: "Resolve the name under a position",
	Long: `Resolve indexes the project of the file and resolves the dotted name
path under the given 1-based line and byte column`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

var completeCmd = &cobra.Command{
	Use:   "complete [flags] file.4gl --at line:col",
	Short: "List completion candidates at a position",
	Args:  cobra.ExactArgs(1),
	RunE:  runComplete,
}

func init() {
	for _, c := range []*cobra.Command{resolveCmd, completeCmd} {
		c.Flags().String("at", "", "cursor position as line:col (1-based)")
		c.Flags().String("format", "pretty", "output format (pretty|json)")
		_ = c.MarkFlagRequired("at")
	}
	completeCmd.Flags().Int("limit", 0, "print at most this many items (0 prints all)")
}

type resolvePayload struct {
	Outcome    string   `json:"outcome"`
	Deferred   bool     `json:"deferred,omitempty"`
	Piece      string   `json:"piece,omitempty"`
	PieceStart string   `json:"piece_at,omitempty"`
	Symbol     string   `json:"symbol,omitempty"`
	Definition string   `json:"definition,omitempty"`
	Chain      []string `json:"chain,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ws, doc, err := projectDocument(cmd, args[0])
	if err != nil {
		return err
	}
	offset, err := offsetAt(cmd, doc.File)
	if err != nil {
		return err
	}
	res, ok, err := doc.Resolve(cmd.Context(), offset)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no name at %s", position(doc.File, offset))
	}
	deferred := res.Outcome == resolve.Deferred
	if deferred {
		// проект уже проиндексирован, поиск даёт окончательный ответ
		req, _ := doc.RequestAt(offset)
		if res, err = doc.Resolver().WithMode(provider.ModeSearch).Resolve(cmd.Context(), req); err != nil {
			return err
		}
	}

	payload := resolvePayload{
		Outcome:    res.Outcome.String(),
		Deferred:   deferred,
		Piece:      res.Piece.Text,
		PieceStart: position(doc.File, res.Piece.Span.Start),
	}
	for _, sym := range res.Chain {
		payload.Chain = append(payload.Chain, sym.Detail())
	}
	if res.Outcome == resolve.Bound {
		payload.Symbol = res.Symbol.Detail()
		if loc, found, defErr := doc.Definition(cmd.Context(), offset); defErr == nil && found {
			payload.Definition = locationString(loc, ws.File(loc.Span.File))
		}
	}
	return writeOutput(cmd.OutOrStdout(), format, payload, func(w io.Writer) {
		fmt.Fprintf(w, "%s", payload.Outcome)
		if payload.Deferred {
			fmt.Fprint(w, " (after deferred lookup)")
		}
		if payload.Symbol != "" {
			fmt.Fprintf(w, ": %s", payload.Symbol)
		} else if payload.Piece != "" {
			fmt.Fprintf(w, " at %q (%s)", payload.Piece, payload.PieceStart)
		}
		fmt.Fprintln(w)
		for _, c := range payload.Chain {
			fmt.Fprintf(w, "  via %s\n", c)
		}
		if payload.Definition != "" {
			fmt.Fprintf(w, "  defined at %s\n", payload.Definition)
		}
	})
}

type completionPayload struct {
	Matched bool             `json:"matched"`
	Prefix  string           `json:"prefix,omitempty"`
	Member  bool             `json:"member,omitempty"`
	Items   []completionItem `json:"items"`
}

type completionItem struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

func runComplete(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("failed to get limit flag: %w", err)
	}
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	_, doc, err := projectDocument(cmd, args[0])
	if err != nil {
		return err
	}
	offset, err := offsetAt(cmd, doc.File)
	if err != nil {
		return err
	}
	comp, err := doc.Complete(cmd.Context(), offset)
	if err != nil {
		return err
	}
	payload := completionPayloadOf(comp, limit)
	return writeOutput(cmd.OutOrStdout(), format, payload, func(w io.Writer) {
		if !payload.Matched && !payload.Member {
			fmt.Fprintln(w, "no context entry")
		}
		for _, it := range payload.Items {
			if it.Detail != "" {
				fmt.Fprintf(w, "%-24s %-10s %s\n", it.Name, it.Kind, it.Detail)
			} else {
				fmt.Fprintf(w, "%-24s %s\n", it.Name, it.Kind)
			}
		}
	})
}

func completionPayloadOf(comp analysis.Completion, limit int) completionPayload {
	out := completionPayload{
		Matched: comp.State == contextmap.MatchedEntry,
		Prefix:  comp.Prefix,
		Member:  comp.Member,
		Items:   make([]completionItem, 0, len(comp.Items)),
	}
	for _, m := range comp.Items {
		if limit > 0 && len(out.Items) >= limit {
			break
		}
		it := completionItem{Name: m.Name, Kind: m.Kind.String()}
		if m.Symbol != nil {
			it.Detail = m.Symbol.Detail()
		}
		out.Items = append(out.Items, it)
	}
	return out
}

func writeOutput(w io.Writer, format string, payload any, pretty func(io.Writer)) error {
	switch strings.ToLower(format) {
	case "pretty":
		pretty(w)
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func position(file *source.File, offset uint32) string {
	lc := file.LineCol(offset)
	return fmt.Sprintf("%d:%d", lc.Line, lc.Col)
}

func locationString(loc analysis.Location, file *source.File) string {
	if file == nil {
		return loc.Path
	}
	return loc.Path + ":" + position(file, loc.Span.Start)
}
