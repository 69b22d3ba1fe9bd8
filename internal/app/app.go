// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package app assembles the pieces every entry point needs: configuration,
// logging, the record session and the deployment client.
package app

import (
	"context"
	"fmt"
	"os"

	"cf-worker-cli/internal/config"
	"cf-worker-cli/internal/deploy"
	"cf-worker-cli/internal/logger"
	"cf-worker-cli/internal/store"

	"github.com/atotto/clipboard"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Options selects the config file and overrides. Zero values mean the
// defaults.
type Options struct {
	ConfigPath string
	DataDir    string
	// Interactive keeps log output off the terminal.
	Interactive bool
}

// App is a loaded, ready-to-use environment.
type App struct {
	Config     config.Config
	ConfigPath string
	Session    *store.Session
	Client     *deploy.Client
}

// New loads configuration, initializes logging and opens the record files.
// Problems with the record files are not fatal; they are available from
// Session.Warnings.
func New(opts Options) (*App, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		var err error
		configPath, err = config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}

	logger.InitLogger(opts.Interactive, cfg.LogLevel)

	accountsPath, err := cfg.AccountsPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve accounts file: %w", err)
	}
	scriptsPath, err := cfg.ScriptsPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scripts file: %w", err)
	}

	session := store.Open(store.Paths{Accounts: accountsPath, Scripts: scriptsPath}, cfg.DefaultScriptURL)
	logger.Debug("Application initialized",
		"config", configPath,
		"accounts_file", accountsPath,
		"scripts_file", scriptsPath,
		"api_url", cfg.APIURL)

	return &App{
		Config:     cfg,
		ConfigPath: configPath,
		Session:    session,
		Client:     deploy.NewClient(cfg.APIURL, cfg.Timeout()),
	}, nil
}

// StdoutIsTerminal reports whether stdout is attached to a terminal.
func StdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// StdinIsTerminal reports whether stdin is attached to a terminal.
func StdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// SecretReader returns a no-echo line reader for stdin, or nil when stdin is
// not a terminal. Cancelling ctx returns immediately and puts echo back on.
func SecretReader() func(ctx context.Context) (string, error) {
	if !StdinIsTerminal() {
		return nil
	}
	fd := int(os.Stdin.Fd())
	return func(ctx context.Context) (string, error) {
		state, err := term.GetState(fd)
		if err != nil {
			return "", fmt.Errorf("error reading secret: %w", err)
		}
		read := func() (string, error) {
			b, err := term.ReadPassword(fd)
			return string(b), err
		}
		restore := func() { _ = term.Restore(fd, state) }
		return readUntilDone(ctx, read, restore)
	}
}

// readUntilDone runs read in the background. If ctx ends first, restore is
// called and the context error returned; the abandoned read is left to
// finish on its own.
func readUntilDone(ctx context.Context, read func() (string, error), restore func()) (string, error) {
	type result struct {
		v   string
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := read()
		ch <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		restore()
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return "", fmt.Errorf("error reading secret: %w", r.err)
		}
		return r.v, nil
	}
}

// Clipboard returns a clipboard writer, or nil when no clipboard utility is
// available.
func Clipboard() func(string) error {
	if clipboard.Unsupported {
		return nil
	}
	return clipboard.WriteAll
}
