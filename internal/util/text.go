// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package util

import (
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// PadRight pads s with spaces to the given display width. Wide runes such as
// emoji count as two columns. Strings already that wide are returned as-is.
func PadRight(s string, width int) string {
	if runewidth.StringWidth(s) >= width {
		return s
	}
	return runewidth.FillRight(s, width)
}

// Truncate shortens s to at most width display columns, ending with "...".
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "...")
}

// Capitalize upper-cases the first rune of s. Error values are lower-case by
// convention; this turns them into operator-facing sentences.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
