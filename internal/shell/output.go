// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package shell

import (
	"errors"
	"fmt"
	"strings"

	"cf-worker-cli/internal/store"
	"cf-worker-cli/internal/util"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

// screenWidth is the width banners and rules are laid out in.
const screenWidth = 53

var (
	titleColor    = color.New(color.FgHiCyan, color.Bold)
	subtitleColor = color.New(color.FgHiYellow)
	successColor  = color.New(color.FgHiGreen)
	errorColor    = color.New(color.FgHiRed)
	warnColor     = color.New(color.FgHiYellow)
	infoColor     = color.New(color.FgHiBlue)
	menuColor     = color.New(color.FgHiWhite)
	dimColor      = color.New(color.Faint)

	heavyLine = strings.Repeat("━", screenWidth)
	lightLine = strings.Repeat("─", screenWidth)
)

func centered(text string) string {
	return lipgloss.PlaceHorizontal(screenWidth, lipgloss.Center, text)
}

const (
	defaultTitle    = "CF Worker CLI"
	defaultSubtitle = "Cloudflare Worker Deployment Tool"
)

// header clears the screen on a terminal and prints a framed banner.
func (s *Shell) header(title, subtitle string) {
	if s.interactive {
		fmt.Fprint(s.out, "\033[H\033[2J")
	}
	fmt.Fprintln(s.out)
	s.heavyRule()
	titleColor.Fprintln(s.out, centered("🚀 "+title))
	if subtitle != "" {
		subtitleColor.Fprintln(s.out, centered(subtitle))
	}
	s.heavyRule()
	fmt.Fprintln(s.out)
}

// Status lines are centered like the banner.
func (s *Shell) showSuccess(msg string) { successColor.Fprintln(s.out, centered("✅ "+msg)) }
func (s *Shell) showError(msg string)   { errorColor.Fprintln(s.out, centered("❌ "+msg)) }
func (s *Shell) showWarning(msg string) { warnColor.Fprintln(s.out, centered("⚠️ "+msg)) }
func (s *Shell) showInfo(msg string)    { infoColor.Fprintln(s.out, centered("💡 "+msg)) }
func (s *Shell) showNote(msg string)    { subtitleColor.Fprintln(s.out, centered(msg)) }

func (s *Shell) rule()      { dimColor.Fprintln(s.out, lightLine) }
func (s *Shell) heavyRule() { fmt.Fprintln(s.out, heavyLine) }

// rejected reports err to the operator and tells whether the change was
// refused. A failed save is reported but the change stands in memory.
func (s *Shell) rejected(err error) bool {
	if err == nil {
		return false
	}
	var saveErr *store.SaveError
	if errors.As(err, &saveErr) {
		s.showError(util.Capitalize(saveErr.Error()))
		return false
	}
	s.showError(util.Capitalize(err.Error()))
	return true
}

func (s *Shell) accountTable(accounts store.Accounts) {
	dimColor.Fprintln(s.out, util.PadRight("No.  Email", 40)+"API Key")
	s.rule()
	for i, a := range accounts {
		fmt.Fprintln(s.out, util.PadRight(fmt.Sprintf("%2d.  %s", i+1, a.Email), 40)+a.MaskedKey())
	}
}

func (s *Shell) scriptTable(scripts store.ScriptSources) {
	dimColor.Fprintln(s.out, util.PadRight("No.  Name", 30)+"URL")
	s.rule()
	for i, src := range scripts {
		line := util.PadRight(fmt.Sprintf("%2d.  %s", i+1, src.Name), 30) + src.URL
		if src.IsDefault {
			line += successColor.Sprint(" ← DEFAULT")
		}
		fmt.Fprintln(s.out, line)
	}
}

func defaultMark(src store.ScriptSource) string {
	if src.IsDefault {
		return " (default)"
	}
	return ""
}
