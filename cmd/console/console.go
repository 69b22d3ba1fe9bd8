// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package console

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cf-worker-cli/internal/app"
	"cf-worker-cli/internal/deploy"
	"cf-worker-cli/internal/logger"
	"cf-worker-cli/internal/shell"
	"cf-worker-cli/internal/store"
	"cf-worker-cli/internal/ui"
)

// RunConsole opens the interactive menu console on the terminal.
func RunConsole(opts app.Options) {
	opts.Interactive = true
	a, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\n💥 Unexpected error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := shell.New(shellOptions(a)).Run(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "\n💥 Unexpected error: %v\n", err)
		os.Exit(1)
	}
}

func shellOptions(a *app.App) shell.Options {
	terminal := app.StdoutIsTerminal()
	opts := shell.Options{
		Session:         a.Session,
		Deployer:        a.Client,
		Endpoint:        a.Client.Endpoint(),
		Interactive:     terminal,
		ReadSecret:      app.SecretReader(),
		CopyToClipboard: app.Clipboard(),
	}
	if terminal && !a.Config.DisableProgressUI {
		opts.Bulk = progressBulk
	}
	return opts
}

// progressBulk runs the live view without reading keys; the console's line
// reader owns stdin.
func progressBulk(ctx context.Context, d deploy.Deployer, accounts []store.Account, workerNames []string, scriptURL string) *deploy.Summary {
	summary, err := ui.RunBulk(ctx, d, accounts, workerNames, scriptURL, ui.RunOptions{})
	if err != nil {
		logger.Warn("Progress view ended early", "error", err)
	}
	return summary
}
