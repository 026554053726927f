package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"fglsense/internal/diag"
	"fglsense/internal/diagfmt"
	"fglsense/internal/fix"
	"fglsense/internal/observ"
	"fglsense/internal/workspace"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] [file.4gl|dir]",
	Short: "Check a project or a single module and print diagnostics",
	Long: `Diag indexes the project containing the argument and reports syntax
errors and unresolved names. For a file only its own findings are printed`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDiag,
}

func init() {
	diagCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	diagCmd.Flags().Bool("notes", true, "show diagnostic notes")
	diagCmd.Flags().Bool("fixes", false, "show suggested fixes")
	diagCmd.Flags().Bool("preview", false, "preview the text after each fix")
	diagCmd.Flags().Bool("warnings-as-errors", false, "exit with an error on warnings too")
	diagCmd.Flags().Bool("apply-fixes", false, "apply the first suggested fix of each diagnostic to the files")
}

var errDiagnostics = errors.New("diagnostics reported")

func runDiag(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	showNotes, err := cmd.Flags().GetBool("notes")
	if err != nil {
		return fmt.Errorf("failed to get notes flag: %w", err)
	}
	showFixes, err := cmd.Flags().GetBool("fixes")
	if err != nil {
		return fmt.Errorf("failed to get fixes flag: %w", err)
	}
	showPreview, err := cmd.Flags().GetBool("preview")
	if err != nil {
		return fmt.Errorf("failed to get preview flag: %w", err)
	}
	strict, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	applyFixes, err := cmd.Flags().GetBool("apply-fixes")
	if err != nil {
		return fmt.Errorf("failed to get apply-fixes flag: %w", err)
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	mode, err := pathMode(cmd)
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	timer := observ.NewTimer()
	step := timer.Start("index")
	ws, report, err := openProject(cmd.Context(), cmd, sourceFs, target, nil)
	if err != nil {
		return err
	}
	step.Done("%d modules", len(report.Documents))

	step = timer.Start("collect")
	bag, err := collectDiagnostics(ws, target)
	if err != nil {
		return err
	}
	bag.Sort()
	step.Done("%d diagnostics", bag.Len())

	base, _ := os.Getwd()
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch format {
	case "pretty":
		diagfmt.Pretty(os.Stdout, bag, ws.Files(), diagfmt.PrettyOpts{
			Color:       useColor(colorFlag, os.Stdout),
			Context:     2,
			PathMode:    mode,
			BaseDir:     base,
			ShowNotes:   showNotes,
			ShowFixes:   showFixes,
			ShowPreview: showPreview,
		})
	case "json":
		err = diagfmt.JSON(os.Stdout, bag, ws.Files(), diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         mode,
			BaseDir:          base,
			IncludeNotes:     showNotes,
			IncludeFixes:     showFixes,
			IncludePreviews:  showPreview,
		})
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if applyFixes {
		step = timer.Start("fix")
		n, err := applyDiagnosticFixes(cmd, ws, bag)
		if err != nil {
			return err
		}
		step.Done("%d fixes", n)
	}

	if timings {
		_ = timer.Print(os.Stderr)
	}
	if bag.HasErrors() || (strict && hasWarnings(bag)) {
		return errDiagnostics
	}
	return nil
}

// collectDiagnostics gathers the findings for target: one document, or the
// whole project with its project-level diagnostics.
func collectDiagnostics(ws *workspace.Workspace, target string) (*diag.Bag, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, err
	}
	bag := diag.NewBag(0)
	if doc, ok := ws.Document(abs); ok {
		bag.Merge(doc.Diagnostics)
		return bag, nil
	}
	for _, d := range ws.Diagnostics() {
		bag.Add(d)
	}
	for _, doc := range ws.Documents() {
		bag.Merge(doc.Diagnostics)
	}
	return bag, nil
}

// applyDiagnosticFixes writes the planned fixes and reports them on stderr.
// The diagnostics already printed describe the files before the edits.
func applyDiagnosticFixes(cmd *cobra.Command, ws *workspace.Workspace, bag *diag.Bag) (int, error) {
	plan, err := fix.Build(ws.Files(), bag.Items())
	if errors.Is(err, fix.ErrNoFixes) {
		fmt.Fprintln(cmd.ErrOrStderr(), "no applicable fixes")
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if err := fix.Write(sourceFs, plan); err != nil {
		return 0, err
	}
	for _, a := range plan.Applied {
		fmt.Fprintf(cmd.ErrOrStderr(), "fixed %s: %s\n", a.Path, a.Title)
	}
	for _, s := range plan.Skipped {
		logger.WithField("path", s.Path).Warnf("skipped fix %q: %s", s.Title, s.Reason)
	}
	return len(plan.Applied), nil
}

func hasWarnings(bag *diag.Bag) bool {
	for _, d := range bag.Items() {
		if d.Severity >= diag.SevWarning {
			return true
		}
	}
	return false
}
