// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"cf-worker-cli/cmd/console"
	"cf-worker-cli/internal/app"

	"github.com/spf13/cobra"
)

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Open the interactive console",
		Long:  `Opens the menu-driven console. Same as running cfw without arguments, but honours --config and --data-dir.`,
		Args:  cobra.NoArgs,
		// The console loads its own application with terminal logging off.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			console.RunConsole(app.Options{ConfigPath: configFlag, DataDir: dataDirFlag})
		},
	}
}
