// Command tribunalrag is the CLI surface over the prediction engine:
// ingest, query, stats, clear, rebuild-bm25, and serve.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{Use: "tribunalrag", Short: "UK tenancy deposit dispute prediction engine"}

	var cfgPath string
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (optional; without it settings come from TRIBUNALRAG_* environment variables and defaults)")

	root.AddCommand(
		ingestCmd(&cfgPath),
		queryCmd(&cfgPath),
		statsCmd(&cfgPath),
		clearCmd(&cfgPath),
		rebuildBM25Cmd(&cfgPath),
		serveCmd(&cfgPath),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
