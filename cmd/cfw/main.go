// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package main

import (
	"os"

	"cf-worker-cli/cmd/cli"
	"cf-worker-cli/cmd/console"
	"cf-worker-cli/internal/app"
)

func main() {
	// If no arguments (or just the program name) are provided, run the console.
	// Otherwise, run the CLI (which will handle the arguments).
	if len(os.Args) <= 1 {
		console.RunConsole(app.Options{})
	} else {
		cli.RunCLI()
	}
}
