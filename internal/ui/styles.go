// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	successStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	identifierColor = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	spinnerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("238")). // Light grey border
			Padding(0, 1)

	// Footer / Status Bar Styles
	footerKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // Bright blue for key

	footerDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")) // Light grey for description
)
