package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"fglsense/internal/prof"
	"fglsense/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "fglsense",
	Short: "4GL language front-end and language server",
	Long: `fglsense parses 4GL modules, resolves names across a project and
serves completion, go-to-definition and diagnostics to editors`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(diagCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 0, "maximum number of diagnostics to show (0 uses the project setting)")
	rootCmd.PersistentFlags().String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
	rootCmd.PersistentFlags().CountP("verbose", "v", "log more (-v info, -vv debug)")

	rootCmd.PersistentFlags().String("trace", "", "write trace events to file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "ring buffer size for --trace-mode ring|both")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 disables)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to file on exit")
}

// main runs the root command; any command error exits with status 1.
func main() {
	err := rootCmd.Execute()
	if perr := profiling.Stop(); perr != nil {
		logger.WithError(perr).Warn("profiling")
	}
	if err != nil {
		os.Exit(1)
	}
}

// profiling is stopped by main so that failed commands are profiled too.
var profiling *prof.Session

var logger = logrus.New()

func setup(cmd *cobra.Command, _ []string) error {
	if err := setupLogging(cmd); err != nil {
		return err
	}
	return setupProfiling(cmd)
}

// setupLogging настраивает logrus по -v; логи всегда идут в stderr.
func setupLogging(cmd *cobra.Command) error {
	verbose, err := cmd.Root().PersistentFlags().GetCount("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	logger.SetOutput(os.Stderr)
	switch {
	case verbose >= 2:
		logger.SetLevel(logrus.DebugLevel)
	case verbose == 1:
		logger.SetLevel(logrus.InfoLevel)
	default:
		logger.SetLevel(logrus.WarnLevel)
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors: !useColor(colorFlag, os.Stderr),
		FullTimestamp: verbose >= 2,
	})
	return nil
}

func setupProfiling(cmd *cobra.Command) error {
	cpuPath, err := cmd.Root().PersistentFlags().GetString("cpu-profile")
	if err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memPath, err := cmd.Root().PersistentFlags().GetString("mem-profile")
	if err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if cpuPath == "" && memPath == "" {
		return nil
	}
	profiling, err = prof.Start(cpuPath, memPath)
	return err
}

func useColor(colorFlag string, f *os.File) bool {
	return colorFlag == "on" || (colorFlag == "auto" && isTerminal(f))
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
