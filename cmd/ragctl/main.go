// Command ragctl is the operator CLI for a running scholarag server. It
// wraps the HTTP API for corpus management, ingestion, querying, and batch
// conversion.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL  string
	reqTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "ragctl",
	Short: "Manage corpora and documents on a scholarag server",
	Long: `ragctl talks to a running scholarag server.

Example usage:
  ragctl corpus create papers --mode hybrid
  ragctl convert --output-dir ./converted paper1.pdf paper2.pdf
  ragctl ingest papers ./converted/paper1.md
  ragctl query papers "What chunking strategies are compared?"`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:9020", "base URL of the scholarag server")
	rootCmd.PersistentFlags().DurationVar(&reqTimeout, "timeout", 10*time.Minute, "request timeout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
