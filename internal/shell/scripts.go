// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"cf-worker-cli/internal/store"
)

func (s *Shell) scriptsMenu(ctx context.Context) error {
	for {
		s.header("GITHUB URL MANAGEMENT", "Manage Worker Scripts")

		menuColor.Fprintln(s.out, "1. 📋 List GitHub URLs")
		menuColor.Fprintln(s.out, "2. ➕ Add GitHub URL")
		menuColor.Fprintln(s.out, "3. 🗑️ Remove GitHub URL")
		menuColor.Fprintln(s.out, "4. ⭐ Set Default URL")
		menuColor.Fprintln(s.out, "5. 🔙 Back to Main Menu")
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
			err = s.listScripts(ctx)
		case 2:
			err = s.addScript(ctx)
		case 3:
			err = s.removeScript(ctx)
		case 4:
			err = s.setDefaultScript(ctx)
		case 5:
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

func (s *Shell) listScripts(ctx context.Context) error {
	s.header("GITHUB URL LIST", "Available Worker Scripts")

	scripts := s.session.Scripts()
	if len(scripts) == 0 {
		s.showWarning("No GitHub URLs found. Add a URL first.")
		return s.pause(ctx)
	}
	s.scriptTable(scripts)
	return s.pause(ctx)
}

func (s *Shell) addScript(ctx context.Context) error {
	s.header("ADD GITHUB URL", "Add Custom Worker Script URL")

	name, err := s.readLine(ctx, "📝 Script Name (e.g., 'Custom Worker v2'): ")
	if err != nil {
		return err
	}
	if name == "" {
		s.showError("Script name is required")
		return s.pause(ctx)
	}

	url, err := s.readLine(ctx, "🔗 GitHub URL: ")
	if err != nil {
		return err
	}

	added, err := s.session.AddScript(name, url, false)
	if errors.Is(err, store.ErrDuplicateName) {
		s.showError(fmt.Sprintf("Script name '%s' already exists", name))
		return s.pause(ctx)
	}
	if s.rejected(err) {
		return s.pause(ctx)
	}
	s.showSuccess(fmt.Sprintf("GitHub URL '%s' added successfully!", added.Name))

	if added.IsDefault {
		s.showInfo("Automatically set as default URL")
		return s.pause(ctx)
	}

	ok, err := s.confirm(ctx, "\nSet as default URL?")
	if err != nil {
		return err
	}
	if ok {
		if _, err := s.session.SetDefaultScript(len(s.session.Scripts()) - 1); !s.rejected(err) {
			s.showSuccess("Set as default URL!")
		}
	}
	return s.pause(ctx)
}

func (s *Shell) removeScript(ctx context.Context) error {
	s.header("REMOVE GITHUB URL", "Delete Worker Script")

	scripts := s.session.Scripts()
	if len(scripts) == 0 {
		s.showWarning("No GitHub URLs to remove.")
		return s.pause(ctx)
	}

	fmt.Fprintln(s.out, "Select GitHub URL to remove:")
	s.rule()
	for i, src := range scripts {
		fmt.Fprintf(s.out, "%d. %s%s\n", i+1, src.Name, defaultMark(src))
	}
	fmt.Fprintf(s.out, "%d. Cancel\n", len(scripts)+1)
	s.rule()

	choice, err := s.readNumber(ctx, "\nSelect URL to remove: ")
	switch {
	case errors.Is(err, errNotNumber):
		s.showError("Invalid choice")
	case err != nil:
		return err
	case choice < 1 || choice > len(scripts):
		s.showInfo("Cancelled")
	default:
		removed, newDefault, err := s.session.RemoveScript(choice - 1)
		if !s.rejected(err) {
			s.showSuccess(fmt.Sprintf("GitHub URL '%s' removed successfully!", removed.Name))
			if newDefault != nil {
				s.showInfo("Default URL set to: " + newDefault.Name)
			}
		}
	}
	return s.pause(ctx)
}

func (s *Shell) setDefaultScript(ctx context.Context) error {
	s.header("SET DEFAULT GITHUB URL", "Choose Default Worker Script")

	scripts := s.session.Scripts()
	if len(scripts) == 0 {
		s.showWarning("No GitHub URLs found. Add a URL first.")
		return s.pause(ctx)
	}

	fmt.Fprintln(s.out, "Select default GitHub URL:")
	s.rule()
	for i, src := range scripts {
		mark := ""
		if src.IsDefault {
			mark = " ← CURRENT DEFAULT"
		}
		fmt.Fprintf(s.out, "%d. %s%s\n", i+1, src.Name, mark)
	}
	fmt.Fprintf(s.out, "%d. Cancel\n", len(scripts)+1)
	s.rule()

	choice, err := s.readNumber(ctx, "\nSelect default URL: ")
	switch {
	case errors.Is(err, errNotNumber):
		s.showError("Invalid choice")
	case err != nil:
		return err
	case choice < 1 || choice > len(scripts):
		s.showInfo("Cancelled")
	default:
		chosen, err := s.session.SetDefaultScript(choice - 1)
		if !s.rejected(err) {
			s.showSuccess("Default GitHub URL set to: " + chosen.Name)
		}
	}
	return s.pause(ctx)
}

// selectScript asks which source to deploy. Enter picks the default, as
// does any invalid answer after a notice.
func (s *Shell) selectScript(ctx context.Context) (string, error) {
	scripts := s.session.Scripts()
	if len(scripts) == 0 {
		return s.session.DefaultScriptURL(), nil
	}

	fmt.Fprintln(s.out, "\n📦 Select GitHub URL:")
	s.rule()
	for i, src := range scripts {
		fmt.Fprintf(s.out, "%d. %s%s\n", i+1, src.Name, defaultMark(src))
	}
	s.rule()

	line, err := s.readLine(ctx, fmt.Sprintf("\nSelect URL [1-%d or Enter for default]: ", len(scripts)))
	if err != nil {
		return "", err
	}
	if line == "" {
		return s.session.DefaultScriptURL(), nil
	}

	choice, err := strconv.Atoi(line)
	if err != nil {
		s.showError("Invalid input, using default")
		return s.session.DefaultScriptURL(), nil
	}
	if choice < 1 || choice > len(scripts) {
		s.showError("Invalid choice, using default")
		return s.session.DefaultScriptURL(), nil
	}
	return scripts[choice-1].URL, nil
}
