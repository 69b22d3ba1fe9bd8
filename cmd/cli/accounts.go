// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"errors"
	"fmt"
	"strings"

	"cf-worker-cli/internal/store"
	"cf-worker-cli/internal/util"

	"github.com/spf13/cobra"
)

func newAccountsCmd() *cobra.Command {
	accountsCmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "Manage Cloudflare accounts",
	}
	accountsCmd.AddCommand(newAccountsListCmd(), newAccountsAddCmd(), newAccountsRemoveCmd())
	return accountsCmd
}

func newAccountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered accounts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printWarnings(cmd, application)
			accounts := application.Session.Accounts()
			out := cmd.OutOrStdout()
			if len(accounts) == 0 {
				fmt.Fprintln(out, "No accounts registered.")
				dimColor.Fprintln(out, "Add one with: cfw accounts add")
				return nil
			}

			statusColor.Fprintf(out, "%s:\n", countLabel(len(accounts), "account"))
			for i, a := range accounts {
				fmt.Fprintf(out, "  %2d. %s %s\n", i+1,
					identifierColor.Sprint(util.PadRight(a.Email, 40)),
					dimColor.Sprint(a.MaskedKey()))
			}
			return nil
		},
	}
}

func newAccountsAddCmd() *cobra.Command {
	var email, apiKey string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a Cloudflare account",
		Long: `Registers an account by email and Global API Key.
Values not given as flags are prompted for. The key is read without echo on a terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			var err error

			email = strings.TrimSpace(email)
			if email == "" {
				if email, err = p.promptString("Email:", true); err != nil {
					return err
				}
			}
			if err := store.ValidateEmail(email); err != nil {
				return err
			}

			apiKey = strings.TrimSpace(apiKey)
			if apiKey == "" {
				if apiKey, err = p.promptSecret("Global API Key:"); err != nil {
					return err
				}
			}

			account, err := application.Session.AddAccount(email, apiKey)
			var saveErr *store.SaveError
			if errors.As(err, &saveErr) {
				printSaveError(cmd, err)
			} else if err != nil {
				return err
			}

			successColor.Fprintf(cmd.OutOrStdout(), "Account %s added.\n", identifierColor.Sprint(account.Email))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Cloudflare Global API Key")
	return cmd
}

func newAccountsRemoveCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:               "remove <number|email>",
		Aliases:           []string{"rm"},
		Short:             "Remove an account",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: accountCompletionFunc,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := application.Session.AccountIndex(args[0])
			if err != nil {
				return err
			}
			target := application.Session.Accounts()[index]

			if !yes {
				ok, err := newPrompter(cmd).promptConfirm(fmt.Sprintf("Remove account %s?", target.Email))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			removed, err := application.Session.RemoveAccount(index)
			var saveErr *store.SaveError
			if errors.As(err, &saveErr) {
				printSaveError(cmd, err)
			} else if err != nil {
				return err
			}

			successColor.Fprintf(cmd.OutOrStdout(), "Account %s removed.\n", identifierColor.Sprint(removed.Email))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
