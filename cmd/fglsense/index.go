package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"fglsense/internal/diag"
	"fglsense/internal/observ"
	"fglsense/internal/ui"
	"fglsense/internal/workspace"
)

var indexCmd = &cobra.Command{
	Use:   "index [flags] [dir]",
	Short: "Index a project and report what was found",
	Long: `Index reads every module of the project, publishes their exports and
resolves deferred calls. With --cache or FGLSENSE_CACHE_DIR the exports of
unchanged modules are loaded from the cache first`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().String("ui", "auto", "progress display (auto|on|off)")
	indexCmd.Flags().Bool("cache", false, "keep module exports in the user cache directory (FGLSENSE_CACHE_DIR overrides)")
}

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

func shouldUseTUI(mode uiMode, quiet bool) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return !quiet && isTerminal(os.Stdout)
	}
}

func runIndex(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var events chan workspace.Event
	var sink workspace.ProgressSink
	useTUI := shouldUseTUI(mode, quiet)
	if useTUI {
		events = make(chan workspace.Event, 256)
		sink = workspace.ChannelSink{Ch: events}
	}

	timer := observ.NewTimer()
	step := timer.Start("load")
	ws, err := loadWorkspace(cmd, sourceFs, dir, sink)
	if err != nil {
		return err
	}
	step.Done(ws.Config().Project)

	step = timer.Start("warm")
	warmed, err := ws.Warm(cmd.Context())
	if err != nil {
		return err
	}
	step.Done("%d cached", warmed)

	step = timer.Start("index")
	var report *workspace.Report
	if useTUI {
		report, err = runIndexWithUI(cmd.Context(), "indexing "+ws.Config().Project, ws, events)
	} else {
		report, err = ws.Index(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	step.Done("%d modules", len(report.Documents))

	if !quiet {
		printReport(cmd.OutOrStdout(), ws, report)
	}
	if timings {
		_ = timer.Print(os.Stderr)
	}
	return nil
}

type indexOutcome struct {
	report *workspace.Report
	err    error
}

func runIndexWithUI(ctx context.Context, title string, ws *workspace.Workspace, events chan workspace.Event) (*workspace.Report, error) {
	outcomeCh := make(chan indexOutcome, 1)
	go func() {
		report, err := ws.Index(ctx)
		outcomeCh <- indexOutcome{report: report, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// после Ctrl+C модель больше не читает канал
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.report, uiErr
	}
	return outcome.report, outcome.err
}

func printReport(out io.Writer, ws *workspace.Workspace, report *workspace.Report) {
	bag := diag.NewBag(0)
	for _, d := range ws.Diagnostics() {
		bag.Add(d)
	}
	for _, doc := range report.Documents {
		bag.Merge(doc.Diagnostics)
	}
	nErr, nWarn := 0, 0
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			nErr++
		case diag.SevWarning:
			nWarn++
		}
	}
	fmt.Fprintf(out, "project %s: %d modules", ws.Config().Project, len(report.Documents))
	if report.Referenced > 0 {
		fmt.Fprintf(out, " (+%d referenced)", report.Referenced)
	}
	fmt.Fprintf(out, " in %s\n", report.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "  deferred calls: %d, escalated: %d\n", report.Deferred, report.Escalated)
	fmt.Fprintf(out, "  diagnostics: %d errors, %d warnings\n", nErr, nWarn)
}
