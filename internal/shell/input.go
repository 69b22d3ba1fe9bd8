// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	// errInterrupted ends the session after an interrupt signal.
	errInterrupted = errors.New("interrupted")
	errNotNumber   = errors.New("not a number")
)

type lineResult struct {
	line string
	err  error
}

// readLine prints prompt and reads one trimmed line. It returns io.EOF once
// input is exhausted and errInterrupted when ctx is cancelled while waiting.
func (s *Shell) readLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)

	ch := make(chan lineResult, 1)
	go func() {
		line, err := s.in.ReadString('\n')
		ch <- lineResult{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", errInterrupted
	case r := <-ch:
		line := strings.TrimSpace(r.line)
		if r.err != nil {
			// A final line without a newline still counts.
			if errors.Is(r.err, io.EOF) && line != "" {
				return line, nil
			}
			return "", r.err
		}
		return line, nil
	}
}

// readSecret reads a value without echo when a terminal reader is
// configured, and as a plain line otherwise.
func (s *Shell) readSecret(ctx context.Context, prompt string) (string, error) {
	if s.secret == nil {
		return s.readLine(ctx, prompt)
	}
	fmt.Fprint(s.out, prompt)
	v, err := s.secret(ctx)
	fmt.Fprintln(s.out)
	if ctx.Err() != nil {
		return "", errInterrupted
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

// readNumber reads a line and parses it as an integer. Blank or non-numeric
// input yields errNotNumber; the range is checked by the caller.
func (s *Shell) readNumber(ctx context.Context, prompt string) (int, error) {
	line, err := s.readLine(ctx, prompt)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		return 0, errNotNumber
	}
	return n, nil
}

// confirm asks a y/n question. Only "y" (any case) is a yes.
func (s *Shell) confirm(ctx context.Context, prompt string) (bool, error) {
	line, err := s.readLine(ctx, prompt+" (y/n): ")
	if err != nil {
		return false, err
	}
	return strings.EqualFold(line, "y"), nil
}

func (s *Shell) pause(ctx context.Context) error {
	_, err := s.readLine(ctx, "\n⏎ Press Enter to continue...")
	return err
}

// fatal reports whether err must end the session rather than the current
// action.
func fatal(err error) bool {
	return err != nil && !errors.Is(err, errNotNumber)
}
