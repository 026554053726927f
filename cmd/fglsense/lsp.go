package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"fglsense/internal/lsp"
	"fglsense/internal/version"
	"fglsense/internal/workspace"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the 4GL language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func init() {
	lspCmd.Flags().String("log-file", "", "write server logs to this file instead of stderr")
	lspCmd.Flags().Bool("rpc-debug", false, "log every JSON-RPC message")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	logFile, err := cmd.Flags().GetString("log-file")
	if err != nil {
		return fmt.Errorf("failed to get log-file flag: %w", err)
	}
	rpcDebug, err := cmd.Flags().GetBool("rpc-debug")
	if err != nil {
		return fmt.Errorf("failed to get rpc-debug flag: %w", err)
	}
	verbose, err := cmd.Root().PersistentFlags().GetCount("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}

	// stdout занят протоколом
	var path *string
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logger.SetOutput(f)
		path = &logFile
	}
	commonlog.Configure(verbose, path)

	env, err := workspace.LoadEnv(os.LookupEnv)
	if err != nil {
		return err
	}
	server := lsp.NewServer(lsp.ServerOptions{
		Version: version.Version,
		Env:     env,
		Logger:  logger,
		Debug:   rpcDebug,
	})
	logger.WithField("version", version.Version).Info("language server starting")
	return server.RunStdio()
}
