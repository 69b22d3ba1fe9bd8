// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package shell

import (
	"context"
	"errors"
	"fmt"

	"cf-worker-cli/internal/store"
	"cf-worker-cli/internal/util"
)

func (s *Shell) accountsMenu(ctx context.Context) error {
	for {
		s.header("ACCOUNT MANAGEMENT", "Manage Cloudflare Accounts")

		menuColor.Fprintln(s.out, "1. 📋 List Accounts")
		menuColor.Fprintln(s.out, "2. ➕ Add Account")
		menuColor.Fprintln(s.out, "3. 🗑️ Remove Account")
		menuColor.Fprintln(s.out, "4. 🔙 Back to Main Menu")
		fmt.Fprintln(s.out)

		choice, err := s.readNumber(ctx, "Select action: ")
		if errors.Is(err, errNotNumber) {
			s.showError("Invalid input")
			if err := s.pause(ctx); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		switch choice {
		case 1:
			err = s.listAccounts(ctx)
		case 2:
			err = s.addAccount(ctx)
		case 3:
			err = s.removeAccount(ctx)
		case 4:
			return nil
		default:
			s.showError("Invalid choice")
			err = s.pause(ctx)
		}
		if fatal(err) {
			return err
		}
	}
}

func (s *Shell) listAccounts(ctx context.Context) error {
	s.header("ACCOUNT LIST", "Registered Cloudflare Accounts")

	accounts := s.session.Accounts()
	if len(accounts) == 0 {
		s.showWarning("No accounts found. Add an account first.")
		return s.pause(ctx)
	}
	s.accountTable(accounts)
	return s.pause(ctx)
}

func (s *Shell) addAccount(ctx context.Context) error {
	s.header("ADD NEW ACCOUNT", "Add Cloudflare Account Credentials")

	email, err := s.readLine(ctx, "📧 Cloudflare Email: ")
	if err != nil {
		return err
	}
	if err := store.ValidateEmail(email); err != nil {
		s.showError(util.Capitalize(err.Error()))
		return s.pause(ctx)
	}

	key, err := s.readSecret(ctx, "🔑 Global API Key: ")
	if err != nil {
		return err
	}

	account, err := s.session.AddAccount(email, key)
	if !s.rejected(err) {
		s.showSuccess(fmt.Sprintf("Account %s added successfully!", account.Email))
	}
	return s.pause(ctx)
}

func (s *Shell) removeAccount(ctx context.Context) error {
	s.header("REMOVE ACCOUNT", "Delete Cloudflare Account")

	accounts := s.session.Accounts()
	if len(accounts) == 0 {
		s.showWarning("No accounts to remove.")
		return s.pause(ctx)
	}

	fmt.Fprintln(s.out, "Select account to remove:")
	s.rule()
	for i, a := range accounts {
		fmt.Fprintf(s.out, "%d. %s\n", i+1, a.Email)
	}
	fmt.Fprintf(s.out, "%d. Cancel\n", len(accounts)+1)
	s.rule()

	choice, err := s.readNumber(ctx, "\nSelect account to remove: ")
	switch {
	case errors.Is(err, errNotNumber):
		s.showError("Invalid choice")
	case err != nil:
		return err
	case choice < 1 || choice > len(accounts):
		s.showInfo("Cancelled")
	default:
		removed, err := s.session.RemoveAccount(choice - 1)
		if !s.rejected(err) {
			s.showSuccess(fmt.Sprintf("Account %s removed successfully!", removed.Email))
		}
	}
	return s.pause(ctx)
}

// ensureAccounts offers to register an account when none exist and returns
// the accounts available afterwards.
func (s *Shell) ensureAccounts(ctx context.Context) (store.Accounts, error) {
	accounts := s.session.Accounts()
	if len(accounts) > 0 {
		return accounts, nil
	}
	s.showWarning("No accounts found. Please add an account first.")
	ok, err := s.confirm(ctx, "\nDo you want to add an account now?")
	if err != nil || !ok {
		return nil, err
	}
	if err := s.addAccount(ctx); err != nil {
		return nil, err
	}
	return s.session.Accounts(), nil
}
