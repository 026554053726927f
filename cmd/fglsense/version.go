package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"fglsense/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show fglsense version and build metadata",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().Bool("hash", false, "include git commit hash")
	versionCmd.Flags().Bool("date", false, "include build timestamp")
	versionCmd.Flags().Bool("full", false, "show all build metadata")
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	full, _ := cmd.Flags().GetBool("full")
	hash, _ := cmd.Flags().GetBool("hash")
	date, _ := cmd.Flags().GetBool("date")

	info := version.Current()
	if !hash && !full {
		info.GitCommit = ""
	}
	if !date && !full {
		info.BuildDate = ""
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case "pretty":
		fmt.Fprintf(out, "%s %s\n", info.Tool, version.Colored())
		if info.GitCommit != "" {
			fmt.Fprintf(out, "commit: %s\n", info.GitCommit)
		}
		if info.BuildDate != "" {
			fmt.Fprintf(out, "built:  %s\n", info.BuildDate)
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", format)
}
