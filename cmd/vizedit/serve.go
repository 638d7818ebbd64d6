package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the instrumented proxy in front of the dev server",
	Long: `Start the editing proxy. Open the proxy address in a browser to get
the dev server's pages with the selection script injected; click elements
to select them and drive edits over MCP.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := buildApp(workingDir())
	if err != nil {
		return err
	}

	fmt.Printf("vizedit proxying %s on http://%s\n", app.cfg.Preview.Target, app.cfg.Preview.Listen)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Printf("[DEBUG] received %v, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return app.server.Shutdown(ctx)
}
