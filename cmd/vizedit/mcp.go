package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/vizedit/vizedit/internal/tools"
)

const (
	serverName = "vizedit"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the proxy plus an MCP server on stdio",
	Long: `Start the editing proxy and expose the editor tools over MCP on
standard input/output. Point an MCP client at this command to let an
agent select-driven edit, undo/redo, navigate, and insert components.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	// Stdout belongs to the MCP transport; keep logs on stderr.
	log.SetOutput(os.Stderr)

	app, err := buildApp(workingDir())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.server.ListenAndServe(); err != nil {
			log.Printf("[ERROR] preview proxy: %v", err)
			stop()
		}
	}()
	defer func() {
		if err := app.server.Shutdown(context.Background()); err != nil {
			log.Printf("[WARN] proxy shutdown: %v", err)
		}
	}()

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version,
		},
		&mcp.ServerOptions{
			Instructions: `Visual editor for a proxied dev server.

Open the proxy address (see stderr) in a browser and click an element to
select it; selection state lives in this server.

Available tools:
- edit: Apply style/class/text/html changes to the selection, undo/redo, jump
- history: Query and export the undo/redo timeline
- navigate: Drive the page URL with back/forward history
- insert: Drop component archetypes at coordinates
- edits: Read or summarize the session audit log`,
		},
	)

	tools.RegisterAll(server, app.tools)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return err
	}
	return nil
}
