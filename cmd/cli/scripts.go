// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"errors"
	"fmt"

	"cf-worker-cli/internal/store"
	"cf-worker-cli/internal/util"

	"github.com/spf13/cobra"
)

func newScriptsCmd() *cobra.Command {
	scriptsCmd := &cobra.Command{
		Use:     "scripts",
		Aliases: []string{"script", "urls"},
		Short:   "Manage worker script sources",
	}
	scriptsCmd.AddCommand(
		newScriptsListCmd(),
		newScriptsAddCmd(),
		newScriptsRemoveCmd(),
		newScriptsSetDefaultCmd(),
	)
	return scriptsCmd
}

func newScriptsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List script sources",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printWarnings(cmd, application)
			scripts := application.Session.Scripts()
			out := cmd.OutOrStdout()
			if len(scripts) == 0 {
				fmt.Fprintln(out, "No script sources registered.")
				dimColor.Fprintf(out, "Deployments use %s\n", application.Session.DefaultScriptURL())
				return nil
			}

			statusColor.Fprintf(out, "%s:\n", countLabel(len(scripts), "script source"))
			for i, s := range scripts {
				mark := ""
				if s.IsDefault {
					mark = successColor.Sprint(" (default)")
				}
				fmt.Fprintf(out, "  %2d. %s%s\n", i+1, identifierColor.Sprint(s.Name), mark)
				dimColor.Fprintf(out, "      %s\n", s.URL)
			}
			return nil
		},
	}
}

func newScriptsAddCmd() *cobra.Command {
	var makeDefault bool

	cmd := &cobra.Command{
		Use:   "add <name> <url>",
		Short: "Add a script source",
		Long: `Adds a named URL of a worker script. The first source added becomes the default.
Names are unique, compared case-insensitively.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := application.Session.AddScript(args[0], args[1], makeDefault)
			var saveErr *store.SaveError
			if errors.As(err, &saveErr) {
				printSaveError(cmd, err)
			} else if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			successColor.Fprintf(out, "Script source %s added.\n", identifierColor.Sprint(script.Name))
			if script.IsDefault {
				fmt.Fprintln(out, "It is now the default.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&makeDefault, "default", false, "make this source the default")
	return cmd
}

func newScriptsRemoveCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:               "remove <number|name>",
		Aliases:           []string{"rm"},
		Short:             "Remove a script source",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: scriptCompletionFunc,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := application.Session.ScriptIndex(args[0])
			if err != nil {
				return err
			}
			target := application.Session.Scripts()[index]

			if !yes {
				ok, err := newPrompter(cmd).promptConfirm(fmt.Sprintf("Remove script source %s?", target.Name))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			removed, newDefault, err := application.Session.RemoveScript(index)
			var saveErr *store.SaveError
			if errors.As(err, &saveErr) {
				printSaveError(cmd, err)
			} else if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			successColor.Fprintf(out, "Script source %s removed.\n", identifierColor.Sprint(removed.Name))
			if newDefault != nil {
				fmt.Fprintf(out, "Default is now %s.\n", identifierColor.Sprint(newDefault.Name))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newScriptsSetDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "set-default <number|name>",
		Short:             "Choose the default script source",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: scriptCompletionFunc,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := application.Session.ScriptIndex(args[0])
			if err != nil {
				return err
			}

			chosen, err := application.Session.SetDefaultScript(index)
			var saveErr *store.SaveError
			if errors.As(err, &saveErr) {
				printSaveError(cmd, err)
			} else if err != nil {
				return err
			}

			successColor.Fprintf(cmd.OutOrStdout(), "Default script source set to %s.\n", identifierColor.Sprint(chosen.Name))
			dimColor.Fprintf(cmd.OutOrStdout(), "  %s\n", util.Truncate(chosen.URL, 72))
			return nil
		},
	}
}
