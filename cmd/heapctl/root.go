package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/cmd/heapctl/logger"
)

var (
	// Global flags
	verbose  bool
	quiet    bool
	jsonOut  bool
	debugLog bool
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Replay allocation traces against the heapkit allocators",
	Long: `heapctl replays malloc/free/realloc traces against an implicit free-list
allocator (or the bump baseline), checks every returned block for alignment,
bounds and overlap, and reports space utilization and throughput.`,
	Version: "0.1.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(logger.Options{
			Enabled: debugLog,
			Level:   slog.LevelDebug,
			JSON:    jsonOut,
		})
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "Log allocator events to stderr")
	addHeapFlags(rootCmd)
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
