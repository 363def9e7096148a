// Vsignd is the conversation engine behind the Vietnamese Sign Language
// learning assistant: intent-gated chat with retrieval over the sign
// corpus, tool calling, and checkpointed thread history.
//
// Usage:
//
//	# Start the server with defaults
//	vsignd serve
//
//	# Load the corpus into the vector store
//	vsignd ingest --corpus data/corpus.json
//
//	# Configure via environment
//	SERVER_PORT=9090 LLM_BASE_URL=http://localhost:11434/v1 vsignd serve
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:     "vsignd",
	Short:   "Conversation engine for the sign language learning assistant",
	Version: version,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file path (default ~/.config/vsignd/config.yaml)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("vsignd %s (commit %s, built %s)\n", version, gitCommit, buildDate)
	},
}
