// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the bulk view. They only apply when the
// program reads the keyboard.
type KeyMap struct {
	Quit key.Binding // Stop after the in-flight deployment
}

// DefaultKeyMap provides the default keybindings.
var DefaultKeyMap = KeyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "stop after current"),
	),
}
