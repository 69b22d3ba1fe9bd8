// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package ui's commands.go file contains the Bubble Tea commands that perform
// the blocking deployment calls off the UI loop.

package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// deployCmd deploys the target at index. Only one is ever outstanding; the
// next is issued when its deployFinishedMsg arrives.
func (m BulkModel) deployCmd(index int) tea.Cmd {
	target := m.targets[index]
	d, url := m.deployer, m.scriptURL
	// In-flight calls are not cancelled; interrupts stop dispatch instead.
	ctx := context.WithoutCancel(m.ctx)
	return func() tea.Msg {
		res := d.Deploy(ctx, target.Account, target.WorkerName, url)
		return deployFinishedMsg{index: index, result: res}
	}
}
