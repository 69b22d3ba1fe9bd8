// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"cf-worker-cli/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newConfigCmd is the parent command for all configuration-related subcommands.
// Its children read and write the config file directly, so a file that fails
// validation can still be repaired.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cfw configuration",
		Long: `Provides subcommands to inspect and change the cfw configuration file.
Environment variables (CFW_API_URL, CFW_DATA_DIR, CFW_LOG_LEVEL, CFW_TIMEOUT_SECONDS) override the file at run time.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	}
	configCmd.AddCommand(newConfigShowCmd(), newConfigSetAPIURLCmd(), newConfigSetDataDirCmd(), newConfigSetTimeoutCmd())
	return configCmd
}

func configPath() (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	return config.DefaultConfigPath()
}

// updateConfig loads the file, applies change, validates and saves.
func updateConfig(change func(*config.Config)) (string, error) {
	path, err := configPath()
	if err != nil {
		return "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return "", err
	}
	change(&cfg)
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if err := config.Save(path, cfg); err != nil {
		return "", fmt.Errorf("error saving configuration: %w", err)
	}
	return path, nil
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			cfg, err := config.LoadConfig(path)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config to YAML: %w", err)
			}
			dimColor.Fprintf(cmd.OutOrStdout(), "# %s\n", path)
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newConfigSetAPIURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-api-url <url>",
		Short: "Set the deployment API endpoint",
		Long: `Sets the URL deployments are POSTed to. Must be an http or https URL.
To revert to the built-in endpoint: cfw config set-api-url ""`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiURL := strings.TrimSpace(args[0])
			if apiURL == "" {
				apiURL = config.DefaultAPIURL
			}
			if _, err := updateConfig(func(c *config.Config) { c.APIURL = apiURL }); err != nil {
				return err
			}
			successColor.Fprintf(cmd.OutOrStdout(), "API endpoint set to: %s\n", apiURL)
			return nil
		},
	}
}

func newConfigSetDataDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-data-dir <path>",
		Short: "Set the directory holding the record files",
		Long: `Sets where accounts.json and github_urls.json are kept.
Use an absolute path or a path starting with '~/'.
To revert to the working directory: cfw config set-data-dir ""`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := strings.TrimSpace(args[0])
			if dir != "" && !strings.HasPrefix(dir, "/") && !strings.HasPrefix(dir, "~/") {
				return fmt.Errorf("path must be absolute or start with '~/'")
			}
			if _, err := updateConfig(func(c *config.Config) { c.DataDir = dir }); err != nil {
				return err
			}
			if dir == "" {
				successColor.Fprintln(cmd.OutOrStdout(), "Data directory reset to the working directory.")
			} else {
				successColor.Fprintf(cmd.OutOrStdout(), "Data directory set to: %s\n", dir)
			}
			return nil
		},
	}
}

func newConfigSetTimeoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-timeout <seconds>",
		Short: "Set the per-deployment timeout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid timeout %q: must be a whole number of seconds", args[0])
			}
			if _, err := updateConfig(func(c *config.Config) { c.TimeoutSeconds = seconds }); err != nil {
				return err
			}
			successColor.Fprintf(cmd.OutOrStdout(), "Deployment timeout set to: %ds\n", seconds)
			return nil
		},
	}
}
