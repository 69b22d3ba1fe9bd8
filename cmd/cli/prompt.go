// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cf-worker-cli/internal/app"

	"github.com/spf13/cobra"
)

// prompter reads answers from the command's input stream.
type prompter struct {
	reader *bufio.Reader
	out    io.Writer
	ctx    context.Context
	secret func(ctx context.Context) (string, error)
}

func newPrompter(cmd *cobra.Command) *prompter {
	p := &prompter{
		reader: bufio.NewReader(cmd.InOrStdin()),
		out:    cmd.OutOrStdout(),
		ctx:    cmd.Context(),
	}
	if cmd.InOrStdin() == os.Stdin {
		p.secret = app.SecretReader()
	}
	return p
}

func (p *prompter) promptString(prompt string, required bool) (string, error) {
	fmt.Fprint(p.out, prompt+" ")
	input, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	input = strings.TrimSpace(input)
	if required && input == "" {
		return "", fmt.Errorf("input is required")
	}
	return input, nil
}

// promptSecret reads without echo on a terminal.
func (p *prompter) promptSecret(prompt string) (string, error) {
	if p.secret == nil {
		return p.promptString(prompt, true)
	}
	fmt.Fprint(p.out, prompt+" ")
	v, err := p.secret(p.ctx)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("input is required")
	}
	return v, nil
}

func (p *prompter) promptConfirm(prompt string) (bool, error) {
	fmt.Fprint(p.out, prompt+" (y/N): ")
	input, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return false, err
	}
	input = strings.ToLower(strings.TrimSpace(input))
	return input == "y" || input == "yes", nil
}
