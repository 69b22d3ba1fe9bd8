// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package store

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"cf-worker-cli/internal/logger"
)

// Paths locates the two record files.
type Paths struct {
	Accounts string
	Scripts  string
}

// Session owns the in-memory account and script-source collections for the
// lifetime of one process and persists them after every mutation.
//
// Mutators either return a validation error, in which case nothing changed,
// or apply the change and then try to save it. A failed save is returned as
// *SaveError; the change is kept in memory regardless.
//
// Session does no locking. Callers that share one across goroutines must
// serialize access themselves.
type Session struct {
	paths       Paths
	fallbackURL string

	accounts Accounts
	scripts  ScriptSources

	warnings []error
}

// Open loads both collections. Load problems never fail the session; they
// are collected in Warnings.
func Open(paths Paths, defaultScriptURL string) *Session {
	s := &Session{paths: paths, fallbackURL: defaultScriptURL}

	accounts, err := LoadAccounts(paths.Accounts)
	if err != nil {
		s.warnings = append(s.warnings, err)
	}
	s.accounts = accounts

	scripts, err := LoadScripts(paths.Scripts, defaultScriptURL)
	if err != nil {
		s.warnings = append(s.warnings, err)
	}
	s.scripts = scripts

	return s
}

// Warnings returns the problems encountered while loading.
func (s *Session) Warnings() []error { return s.warnings }

func (s *Session) Paths() Paths { return s.paths }

// Accounts returns a copy of the account collection.
func (s *Session) Accounts() Accounts { return slices.Clone(s.accounts) }

// Scripts returns a copy of the script-source collection.
func (s *Session) Scripts() ScriptSources { return slices.Clone(s.scripts) }

// DefaultScriptURL is the URL used when the operator does not pick one.
func (s *Session) DefaultScriptURL() string { return s.scripts.DefaultURL(s.fallbackURL) }

func (s *Session) AddAccount(email, apiKey string) (Account, error) {
	a, err := NewAccount(email, apiKey)
	if err != nil {
		return Account{}, err
	}
	s.accounts = append(s.accounts, a)
	logger.Info("Account added", "email", a.Email)
	return a, s.saveAccounts()
}

// RemoveAccount deletes the account at the zero-based index.
func (s *Session) RemoveAccount(index int) (Account, error) {
	out, removed, err := s.accounts.Remove(index)
	if err != nil {
		return Account{}, err
	}
	s.accounts = out
	logger.Info("Account removed", "email", removed.Email)
	return removed, s.saveAccounts()
}

func (s *Session) AddScript(name, url string, makeDefault bool) (ScriptSource, error) {
	out, err := s.scripts.Add(name, url, makeDefault)
	if err != nil {
		return ScriptSource{}, err
	}
	s.scripts = out
	added := out[len(out)-1]
	logger.Info("Script source added", "name", added.Name, "default", added.IsDefault)
	return added, s.saveScripts()
}

// RemoveScript deletes the script source at the zero-based index. If the
// default moved, newDefault points at the promoted entry.
func (s *Session) RemoveScript(index int) (removed ScriptSource, newDefault *ScriptSource, err error) {
	out, removed, promoted, err := s.scripts.Remove(index)
	if err != nil {
		return ScriptSource{}, nil, err
	}
	s.scripts = out
	if promoted {
		d := out[0]
		newDefault = &d
	}
	logger.Info("Script source removed", "name", removed.Name)
	return removed, newDefault, s.saveScripts()
}

// SetDefaultScript marks the zero-based index as the only default entry.
func (s *Session) SetDefaultScript(index int) (ScriptSource, error) {
	out, err := s.scripts.SetDefault(index)
	if err != nil {
		return ScriptSource{}, err
	}
	s.scripts = out
	logger.Info("Default script source changed", "name", out[index].Name)
	return out[index], s.saveScripts()
}

// LookupAccount resolves a 1-based number or an email (case-insensitive).
func (s *Session) LookupAccount(ref string) (Account, error) {
	i, err := s.AccountIndex(ref)
	if err != nil {
		return Account{}, err
	}
	return s.accounts[i], nil
}

// AccountIndex is LookupAccount returning the zero-based position. An email
// shared by several accounts resolves to the first.
func (s *Session) AccountIndex(ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(s.accounts) {
			return -1, fmt.Errorf("account %d: %w", n, ErrIndexOutOfRange)
		}
		return n - 1, nil
	}
	for i, a := range s.accounts {
		if strings.EqualFold(a.Email, ref) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("account %q: %w", ref, ErrNotFound)
}

// LookupScript resolves a 1-based number or a script name (case-insensitive).
func (s *Session) LookupScript(ref string) (ScriptSource, error) {
	i, err := s.ScriptIndex(ref)
	if err != nil {
		return ScriptSource{}, err
	}
	return s.scripts[i], nil
}

// ScriptIndex is LookupScript returning the zero-based position.
func (s *Session) ScriptIndex(ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(s.scripts) {
			return -1, fmt.Errorf("script %d: %w", n, ErrIndexOutOfRange)
		}
		return n - 1, nil
	}
	if i, ok := s.scripts.Find(ref); ok {
		return i, nil
	}
	return -1, fmt.Errorf("script %q: %w", ref, ErrNotFound)
}

func (s *Session) saveAccounts() error {
	if err := SaveAccounts(s.paths.Accounts, s.accounts); err != nil {
		logger.Error("Failed to save accounts", "path", s.paths.Accounts, "error", err)
		return err
	}
	return nil
}

func (s *Session) saveScripts() error {
	if err := SaveScripts(s.paths.Scripts, s.scripts); err != nil {
		logger.Error("Failed to save script sources", "path", s.paths.Scripts, "error", err)
		return err
	}
	return nil
}
