// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package ui

import (
	"context"
	"fmt"
	"io"

	"cf-worker-cli/internal/deploy"
	"cf-worker-cli/internal/logger"
	"cf-worker-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// RunOptions controls how the bulk view attaches to the terminal.
type RunOptions struct {
	Output io.Writer
	// ReadKeys lets the operator stop the run from the keyboard. Leave it off
	// when another reader owns stdin.
	ReadKeys bool
}

// RunBulk deploys every (account, worker) pair under the live view and
// returns the summary. The summary is valid even when err is non-nil; it
// then holds whatever finished before the program failed.
func RunBulk(ctx context.Context, d deploy.Deployer, accounts []store.Account, workerNames []string, scriptURL string, opts RunOptions) (*deploy.Summary, error) {
	m := NewBulkModel(ctx, d, accounts, workerNames, scriptURL)

	// ctx is the only interrupt path: the in-flight result must still reach
	// handleFinished before the program quits.
	progOpts := []tea.ProgramOption{tea.WithoutSignalHandler()}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}
	if !opts.ReadKeys {
		progOpts = append(progOpts, tea.WithInput(nil))
	}

	final, err := tea.NewProgram(m, progOpts...).Run()
	if err != nil {
		logger.Error("Bulk progress view failed", "error", err, "run_id", m.summary.RunID)
		if m.summary.Attempted < m.summary.Planned {
			m.summary.Interrupted = true
			m.summary.Finish()
		}
		return m.summary, fmt.Errorf("progress view: %w", err)
	}

	fm, ok := final.(BulkModel)
	if !ok {
		return m.summary, nil
	}
	return fm.Summary(), nil
}
