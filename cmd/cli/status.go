// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show record counts, the default script and the API endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printWarnings(cmd, application)
			s := application.Session
			paths := s.Paths()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Accounts:        %s\n", identifierColor.Sprint(len(s.Accounts())))
			fmt.Fprintf(out, "Script sources:  %s\n", identifierColor.Sprint(len(s.Scripts())))
			fmt.Fprintf(out, "Default script:  %s\n", s.DefaultScriptURL())
			fmt.Fprintf(out, "API endpoint:    %s\n", application.Client.Endpoint())
			dimColor.Fprintf(out, "Accounts file:   %s\n", paths.Accounts)
			dimColor.Fprintf(out, "Scripts file:    %s\n", paths.Scripts)
			dimColor.Fprintf(out, "Config file:     %s\n", application.ConfigPath)
			return nil
		},
	}
}
