// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cf-worker-cli/internal/logger"
)

// SaveError reports a failed write. The in-memory state that produced it is
// still valid and remains in use.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("error saving %s: %v", filepath.Base(e.Path), e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// SkippedError reports records dropped on load because a required field
// was empty. The remaining records are usable; the dropped ones disappear
// from the file on the next save.
type SkippedError struct {
	Path    string
	Kind    string
	Skipped []string
}

func (e *SkippedError) Error() string {
	return fmt.Sprintf("%s: skipped %d incomplete %s record(s) (%s); they will be removed on the next save",
		filepath.Base(e.Path), len(e.Skipped), e.Kind, strings.Join(e.Skipped, ", "))
}

// skipped returns nil when nothing was dropped, so callers can return it
// directly as the load error.
func skipped(path, kind string, labels []string) error {
	if len(labels) == 0 {
		return nil
	}
	return &SkippedError{Path: path, Kind: kind, Skipped: labels}
}

// recordLabel names a record in a warning, falling back to its position.
func recordLabel(name string, index int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("#%d", index+1)
}

// readJSON decodes a JSON array file. exists is false when the file is absent.
func readJSON[T any](path string) (items []T, exists bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, true, fmt.Errorf("error loading %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, true, fmt.Errorf("error loading %s: %w", filepath.Base(path), err)
	}
	return items, true, nil
}

// writeJSON writes items as an indented JSON array. The files hold
// credentials, so they are private to the user.
func writeJSON[T any](path string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return &SaveError{Path: path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return &SaveError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return &SaveError{Path: path, Err: err}
	}
	return nil
}

// LoadAccounts reads the accounts file. A missing file is an empty
// collection; a malformed one is an empty collection plus the error.
// Entries without an email or key are dropped and reported as a
// *SkippedError alongside the rest.
func LoadAccounts(path string) (Accounts, error) {
	items, _, err := readJSON[Account](path)
	if err != nil {
		logger.Warn("Accounts file unreadable, starting empty", "path", path, "error", err)
		return Accounts{}, err
	}

	out := make(Accounts, 0, len(items))
	var dropped []string
	for i, a := range items {
		if a.Email == "" || a.APIKey == "" {
			logger.Warn("Skipping incomplete account record", "path", path, "email", a.Email)
			dropped = append(dropped, recordLabel(a.Email, i))
			continue
		}
		out = append(out, a)
	}
	return out, skipped(path, "account", dropped)
}

func SaveAccounts(path string, accounts Accounts) error {
	return writeJSON(path, accounts)
}

// LoadScripts reads the script-source file. A missing file is replaced by
// the seed collection, which is written to disk immediately; a malformed file
// yields the seed in memory only, together with the load error.
func LoadScripts(path, defaultURL string) (ScriptSources, error) {
	items, exists, err := readJSON[ScriptSource](path)
	if err != nil {
		logger.Warn("Script source file unreadable, using built-in default", "path", path, "error", err)
		return SeedScripts(defaultURL), err
	}
	if !exists {
		seed := SeedScripts(defaultURL)
		if err := SaveScripts(path, seed); err != nil {
			logger.Error("Failed to create script source file", "path", path, "error", err)
			return seed, err
		}
		logger.Info("Created default script source file", "path", path)
		return seed, nil
	}

	out := make(ScriptSources, 0, len(items))
	var dropped []string
	for i, s := range items {
		if s.Name == "" || s.URL == "" {
			logger.Warn("Skipping incomplete script source record", "path", path, "name", s.Name)
			dropped = append(dropped, recordLabel(s.Name, i))
			continue
		}
		out = append(out, s)
	}
	out.normalize()
	return out, skipped(path, "script source", dropped)
}

func SaveScripts(path string, scripts ScriptSources) error {
	return writeJSON(path, scripts)
}
