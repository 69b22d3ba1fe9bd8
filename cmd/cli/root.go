// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cf-worker-cli/internal/app"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	application     *app.App
	statusColor     = color.New(color.FgCyan)
	errorColor      = color.New(color.FgRed)
	stepColor       = color.New(color.FgYellow)
	successColor    = color.New(color.FgGreen)
	identifierColor = color.New(color.FgBlue)
	// dimColor is used for less important/secondary text in the CLI output
	dimColor = color.New(color.Faint)
)

// Global flag values, bound to the root command's persistent flags.
var (
	configFlag  string
	dataDirFlag string
)

// errDeploymentsFailed makes the process exit non-zero after a deployment
// failure that was already reported.
var errDeploymentsFailed = errors.New("one or more deployments failed")

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cfw",
		Short: "CF Worker CLI",
		Long: `A command-line tool to deploy Cloudflare Workers through a remote deployment API.

Stores Cloudflare accounts and worker script URLs as JSON files, deploys one
worker at a time or every worker to every account in bulk.
Run without arguments to open the interactive console.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			application = nil
			_, err := loadApp()
			return err
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default is $XDG_CONFIG_HOME/cf-worker-cli/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "directory holding accounts.json and github_urls.json")

	rootCmd.AddCommand(newAccountsCmd())
	rootCmd.AddCommand(newScriptsCmd())
	rootCmd.AddCommand(newDeployCmd())
	rootCmd.AddCommand(newBulkCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newShellCmd())
	return rootCmd
}

// loadApp returns the application for the current invocation, creating it
// on first use. Completion callbacks reach it without the pre-run hook.
func loadApp() (*app.App, error) {
	if application != nil {
		return application, nil
	}
	a, err := app.New(app.Options{ConfigPath: configFlag, DataDir: dataDirFlag})
	if err != nil {
		return nil, err
	}
	application = a
	return a, nil
}

// RunCLI executes the command line and exits non-zero on failure.
func RunCLI() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errDeploymentsFailed) {
			errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// printWarnings reports record files that could not be read.
func printWarnings(cmd *cobra.Command, a *app.App) {
	for _, w := range a.Session.Warnings() {
		stepColor.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", w)
	}
}

func printSaveError(cmd *cobra.Command, err error) {
	errorColor.Fprintf(cmd.ErrOrStderr(), "Warning: %v (change kept for this run only)\n", err)
}

// countLabel renders "1 account" / "2 accounts".
func countLabel(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
