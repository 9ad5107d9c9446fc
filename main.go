// Package main is the entry point for the paygap service.
package main

import (
	"context"
	"fmt"
	"os"

	"paygap/bootstrap"
	"paygap/cmd"
	_ "paygap/docs"
)

// run initializes and starts the service, blocking until shutdown.
func run() error {
	ctx := context.Background()

	app, err := bootstrap.NewApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := app.Start(); err != nil {
		app.Shutdown()
		return fmt.Errorf("failed to start application: %w", err)
	}

	app.WaitForShutdown()
	app.Shutdown()
	return nil
}

func main() {
	// CLI subcommand dispatch
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		os.Args = append([]string{os.Args[0]}, os.Args[2:]...)
		adminCmd := cmd.NewAdminCmd()
		if err := adminCmd.Execute(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
