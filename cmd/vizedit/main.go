package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "vizedit",
	Short: "Visual editing proxy for local dev servers",
	Long: `vizedit fronts a running dev server with an instrumented proxy.
Click elements in the proxied page to select them, then drive style, class
and content changes with full undo/redo, either from the MCP tools or a
connected agent.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vizedit %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	// A .env beside the config is the usual place for ANTHROPIC_API_KEY.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
