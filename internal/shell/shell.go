// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package shell implements the numbered-menu console: account and script
// management, single and bulk deployments, and a status screen. All input is
// line based; every prompt result is returned explicitly so that EOF and
// interrupts unwind the session cleanly.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"cf-worker-cli/internal/deploy"
	"cf-worker-cli/internal/logger"
	"cf-worker-cli/internal/store"
	"cf-worker-cli/internal/util"

	"github.com/briandowns/spinner"
)

const spinnerInterval = 100 * time.Millisecond

// BulkRunner executes a bulk run and returns its summary. It is swapped for
// the live progress view on terminals.
type BulkRunner func(ctx context.Context, d deploy.Deployer, accounts []store.Account, workerNames []string, scriptURL string) *deploy.Summary

// Options wires a Shell to its collaborators. Session and Deployer are
// required.
type Options struct {
	In       io.Reader
	Out      io.Writer
	Session  *store.Session
	Deployer deploy.Deployer
	// Endpoint is shown on the status screen.
	Endpoint string
	// Interactive enables screen clearing and the spinner.
	Interactive bool
	// ReadSecret reads a line without echo and returns early when ctx ends.
	// Nil reads a plain line.
	ReadSecret func(ctx context.Context) (string, error)
	// CopyToClipboard is offered after a successful deployment when set.
	CopyToClipboard func(string) error
	// Bulk replaces the line-by-line bulk output.
	Bulk BulkRunner
}

// Shell is one console session. It is not safe for concurrent use.
type Shell struct {
	in          *bufio.Reader
	out         io.Writer
	session     *store.Session
	deployer    deploy.Deployer
	endpoint    string
	interactive bool
	secret      func(ctx context.Context) (string, error)
	clipboard   func(string) error
	bulk        BulkRunner
}

// New creates a Shell. Nil In and Out default to stdin and stdout.
func New(opts Options) *Shell {
	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	s := &Shell{
		in:          bufio.NewReader(in),
		out:         out,
		session:     opts.Session,
		deployer:    opts.Deployer,
		endpoint:    opts.Endpoint,
		interactive: opts.Interactive,
		secret:      opts.ReadSecret,
		clipboard:   opts.CopyToClipboard,
		bulk:        opts.Bulk,
	}
	if s.bulk == nil {
		s.bulk = s.lineBulk
	}
	return s
}

// Run shows the main menu until the operator exits, input ends or ctx is
// cancelled. Only unexpected failures are returned.
func (s *Shell) Run(ctx context.Context) error {
	logger.Info("Console session started")
	err := s.mainLoop(ctx)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		fmt.Fprintln(s.out)
		logger.Info("Console input closed")
		return nil
	case errors.Is(err, errInterrupted):
		fmt.Fprintln(s.out)
		s.showInfo("Program interrupted by user")
		logger.Info("Console interrupted")
		return nil
	default:
		logger.Error("Console session failed", "error", err)
		return err
	}
}

func (s *Shell) mainLoop(ctx context.Context) error {
	if warnings := s.session.Warnings(); len(warnings) > 0 {
		for _, w := range warnings {
			s.showError(util.Capitalize(w.Error()))
		}
		if err := s.pause(ctx); err != nil {
			return err
		}
	}

	for {
		s.header(defaultTitle, defaultSubtitle)
		s.mainMenu()

		choice, err := s.readNumber(ctx, "Select action (1-6): ")
		if errors.Is(err, errNotNumber) {
			s.showError("Please enter a number")
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
			err = s.singleDeploy(ctx)
		case 2:
			err = s.bulkDeploy(ctx)
		case 3:
			err = s.accountsMenu(ctx)
		case 4:
			err = s.scriptsMenu(ctx)
		case 5:
			err = s.status(ctx)
		case 6:
			s.goodbye()
			return nil
		default:
			s.showError("Please select option 1-6")
			err = s.pause(ctx)
		}
		if fatal(err) {
			return err
		}
	}
}

func (s *Shell) mainMenu() {
	fmt.Fprintln(s.out, "Please select an option:")
	items := []string{
		"🚀 Single Deployment",
		"📦 Bulk Deployment",
		"👥 Manage Accounts",
		"🔗 Manage GitHub URLs",
		"📊 System Status",
		"❌ Exit",
	}
	for i, item := range items {
		menuColor.Fprintf(s.out, "%d. %s\n", i+1, item)
	}
	fmt.Fprintln(s.out)
}

func (s *Shell) status(ctx context.Context) error {
	s.header("SYSTEM STATUS", "Current Configuration Overview")

	paths := s.session.Paths()
	accounts := s.session.Accounts()
	scripts := s.session.Scripts()

	fmt.Fprintln(s.out, "📊 SYSTEM STATUS")
	s.heavyRule()
	fmt.Fprintf(s.out, "📁 Accounts File: %s\n", paths.Accounts)
	fmt.Fprintf(s.out, "📁 GitHub URLs File: %s\n", paths.Scripts)
	fmt.Fprintf(s.out, "🔗 Default GitHub URL: %s\n", s.session.DefaultScriptURL())
	if s.endpoint != "" {
		fmt.Fprintf(s.out, "🌐 API Endpoint: %s\n", s.endpoint)
	}
	fmt.Fprintf(s.out, "👥 Accounts Count: %d\n", len(accounts))
	fmt.Fprintf(s.out, "📦 GitHub URLs Count: %d\n", len(scripts))

	if len(accounts) > 0 {
		fmt.Fprintln(s.out, "\n📋 REGISTERED ACCOUNTS:")
		for _, a := range accounts {
			fmt.Fprintf(s.out, "  • %s\n", a.Email)
		}
	}
	if len(scripts) > 0 {
		fmt.Fprintln(s.out, "\n📦 GITHUB URLS:")
		for _, src := range scripts {
			fmt.Fprintf(s.out, "  • %s%s\n", src.Name, defaultMark(src))
		}
	}
	s.heavyRule()

	return s.pause(ctx)
}

func (s *Shell) goodbye() {
	s.header("GOODBYE", "Thank you for using CF Worker CLI")
	successColor.Fprintln(s.out, centered("👋 Thank you for using CF Worker CLI!"))
	s.heavyRule()
}

// newSpinner returns a spinner that writes to the shell output, or nil when
// the output is not a terminal.
func (s *Shell) newSpinner(suffix string) *spinner.Spinner {
	if !s.interactive {
		return nil
	}
	sp := spinner.New(spinner.CharSets[14], spinnerInterval, spinner.WithWriter(s.out))
	sp.Suffix = suffix
	return sp
}
