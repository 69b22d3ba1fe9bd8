// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// accountCompletionFunc offers account emails, with their numbers as the
// description.
func accountCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	a, err := loadApp()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var completions []string
	for i, acc := range a.Session.Accounts() {
		if strings.HasPrefix(strings.ToLower(acc.Email), strings.ToLower(toComplete)) {
			completions = append(completions, fmt.Sprintf("%s\taccount %d", acc.Email, i+1))
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

// scriptCompletionFunc offers script source names, the default one marked.
func scriptCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	a, err := loadApp()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var completions []string
	for _, s := range a.Session.Scripts() {
		if !strings.HasPrefix(strings.ToLower(s.Name), strings.ToLower(toComplete)) {
			continue
		}
		desc := s.URL
		if s.IsDefault {
			desc = "default: " + desc
		}
		completions = append(completions, s.Name+"\t"+desc)
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}
