// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package ui renders bulk deployments as a live Bubble Tea view: a progress
// bar, a spinner for the in-flight pair and one line per finished result.
package ui

import (
	"context"

	"cf-worker-cli/internal/deploy"
	"cf-worker-cli/internal/store"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	defaultBarWidth = 40
	maxBarWidth     = 60
)

// BulkModel drives one bulk run. Targets are deployed strictly in plan
// order with at most one call outstanding.
type BulkModel struct {
	ctx       context.Context
	deployer  deploy.Deployer
	scriptURL string
	targets   []deploy.Target
	summary   *deploy.Summary

	current  int  // index of the in-flight target
	stopping bool // no further targets are dispatched
	done     bool
	lines    []string

	spinner  spinner.Model
	progress progress.Model
	keys     KeyMap
	width    int
}

// NewBulkModel plans the run. Cancelling ctx stops dispatch once the
// in-flight call returns.
func NewBulkModel(ctx context.Context, d deploy.Deployer, accounts []store.Account, workerNames []string, scriptURL string) BulkModel {
	summary, targets := deploy.Begin(accounts, workerNames, scriptURL)

	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))
	p := progress.New(progress.WithDefaultGradient(), progress.WithWidth(defaultBarWidth))

	return BulkModel{
		ctx:       ctx,
		deployer:  d,
		scriptURL: scriptURL,
		targets:   targets,
		summary:   summary,
		spinner:   s,
		progress:  p,
		keys:      DefaultKeyMap,
	}
}

// Summary returns the results recorded so far.
func (m BulkModel) Summary() *deploy.Summary { return m.summary }

// Done reports whether the run has ended.
func (m BulkModel) Done() bool { return m.done }

func (m BulkModel) Init() tea.Cmd {
	if len(m.targets) == 0 {
		m.summary.Finish()
		return tea.Quit
	}
	return tea.Batch(m.spinner.Tick, m.deployCmd(0))
}

func (m BulkModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case deployFinishedMsg:
		return m.handleFinished(msg)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.stopping = true
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(max(msg.Width-4, 10), maxBarWidth)
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m BulkModel) handleFinished(msg deployFinishedMsg) (tea.Model, tea.Cmd) {
	if msg.index != m.current || m.done {
		return m, nil
	}

	m.summary.Record(msg.result)
	m.lines = append(m.lines, resultLine(msg.index+1, len(m.targets), m.targets[msg.index], msg.result))
	m.current++

	if m.ctx.Err() != nil {
		m.stopping = true
	}
	if m.current >= len(m.targets) || m.stopping {
		m.summary.Interrupted = m.current < len(m.targets)
		m.done = true
		m.summary.Finish()
		return m, tea.Quit
	}
	return m, m.deployCmd(m.current)
}

func (m BulkModel) percent() float64 {
	if len(m.targets) == 0 {
		return 1
	}
	return float64(m.summary.Attempted) / float64(len(m.targets))
}
