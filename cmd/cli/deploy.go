// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cf-worker-cli/internal/app"
	"cf-worker-cli/internal/deploy"
	"cf-worker-cli/internal/ui"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

// resolveScriptURL turns the --script value into a URL. Full http(s) URLs are
// used as given; anything else names a stored source by number or name.
func resolveScriptURL(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return application.Session.DefaultScriptURL(), nil
	}
	if strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "http://") {
		return ref, nil
	}
	script, err := application.Session.LookupScript(ref)
	if err != nil {
		return "", err
	}
	return script.URL, nil
}

// isTerminal reports whether w is stdout attached to a terminal.
func isTerminal(w io.Writer) bool {
	return w == os.Stdout && app.StdoutIsTerminal()
}

func newDeployCmd() *cobra.Command {
	var accountRef, workerName, scriptRef string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy one worker to one account",
		Long: `Deploys a worker script to a single Cloudflare account through the deployment API.
--script takes a stored source number or name, or a full URL. The default source is used when omitted.`,
		Example: `  cfw deploy --account 1 --worker edge-1
  cfw deploy --account ops@example.com --worker edge-1 --script "Default Worker"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := application.Session.LookupAccount(accountRef)
			if err != nil {
				return err
			}
			workerName = strings.TrimSpace(workerName)
			if workerName == "" {
				return fmt.Errorf("worker name is required")
			}
			scriptURL, err := resolveScriptURL(scriptRef)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var sp *spinner.Spinner
			if !asJSON && isTerminal(out) {
				sp = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
				sp.Suffix = fmt.Sprintf(" Deploying %s to %s...", workerName, account.Email)
				sp.Start()
			} else if !asJSON {
				stepColor.Fprintf(out, "Deploying %s to %s...\n", workerName, account.Email)
			}

			res := application.Client.Deploy(context.WithoutCancel(cmd.Context()), account, workerName, scriptURL)
			if sp != nil {
				sp.Stop()
			}

			if asJSON {
				view := struct {
					deploy.Result
					ScriptURL string       `json:"script_url"`
					Links     deploy.Links `json:"links"`
				}{res, scriptURL, deploy.ParseLinks(res.Data)}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(view); err != nil {
					return err
				}
				if !res.Success {
					return errDeploymentsFailed
				}
				return nil
			}

			if !res.Success {
				errorColor.Fprintf(out, "Failed: %s\n", res.Error)
				return errDeploymentsFailed
			}
			successColor.Fprintf(out, "Worker %s deployed to %s.\n",
				identifierColor.Sprint(res.WorkerName), identifierColor.Sprint(res.AccountEmail))
			printLinks(out, deploy.ParseLinks(res.Data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&accountRef, "account", "a", "", "account number or email")
	cmd.Flags().StringVarP(&workerName, "worker", "w", "", "worker name")
	cmd.Flags().StringVarP(&scriptRef, "script", "s", "", "script source number, name or URL")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("worker")
	_ = cmd.RegisterFlagCompletionFunc("account", accountCompletionFunc)
	_ = cmd.RegisterFlagCompletionFunc("script", scriptCompletionFunc)
	return cmd
}

func printLinks(out io.Writer, l deploy.Links) {
	if l.Empty() {
		return
	}
	fmt.Fprintln(out)
	if l.Sub != "" {
		fmt.Fprintf(out, "  Subscription: %s\n", l.Sub)
	}
	if l.VLESS != "" {
		fmt.Fprintf(out, "  VLESS:        %s\n", l.VLESS)
	}
	if l.UUID != "" {
		fmt.Fprintf(out, "  UUID:         %s\n", l.UUID)
	}
	if l.Trojan != "" {
		fmt.Fprintf(out, "  Trojan:       %s\n", l.Trojan)
	}
	if l.Password != "" {
		fmt.Fprintf(out, "  Password:     %s\n", l.Password)
	}
}

func newBulkCmd() *cobra.Command {
	var workers, scriptRef string
	var yes bool

	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Deploy every worker to every account",
		Long: `Deploys each comma-separated worker name to each registered account, one call at a time.
Failures do not stop the run. Interrupting stops after the deployment in progress.`,
		Example: `  cfw bulk --workers edge-1,edge-2
  cfw bulk --workers edge-1 --script 2 --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts := application.Session.Accounts()
			if len(accounts) == 0 {
				return fmt.Errorf("no accounts registered")
			}
			names, err := deploy.SplitWorkerNames(workers)
			if err != nil {
				return err
			}
			scriptURL, err := resolveScriptURL(scriptRef)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			total := len(accounts) * len(names)
			fmt.Fprintf(out, "Accounts:   %d\n", len(accounts))
			fmt.Fprintf(out, "Workers:    %s\n", strings.Join(names, ", "))
			fmt.Fprintf(out, "Script:     %s\n", scriptURL)
			fmt.Fprintf(out, "Total:      %d deployments\n", total)

			if !yes {
				ok, err := newPrompter(cmd).promptConfirm("\nProceed with bulk deployment?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
			}

			var summary *deploy.Summary
			if isTerminal(out) && !application.Config.DisableProgressUI {
				summary, err = ui.RunBulk(cmd.Context(), application.Client, accounts, names, scriptURL, ui.RunOptions{ReadKeys: true})
				if err != nil {
					errorColor.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
				}
			} else {
				summary = deploy.Run(cmd.Context(), application.Client, accounts, names, scriptURL, lineObserver(out))
			}

			printBulkSummary(out, summary)
			if summary.Interrupted {
				return fmt.Errorf("bulk deployment interrupted after %d of %d deployments", summary.Attempted, summary.Planned)
			}
			if summary.Failed > 0 {
				return errDeploymentsFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&workers, "workers", "w", "", "comma-separated worker names")
	cmd.Flags().StringVarP(&scriptRef, "script", "s", "", "script source number, name or URL")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	_ = cmd.MarkFlagRequired("workers")
	_ = cmd.RegisterFlagCompletionFunc("script", scriptCompletionFunc)
	return cmd
}

func lineObserver(out io.Writer) deploy.Observer {
	return deploy.ObserverFuncs{
		OnStart: func(i, total int, t deploy.Target) {
			stepColor.Fprintf(out, "[%d/%d] Deploying %s to %s\n", i, total, t.WorkerName, t.Account.Email)
		},
		OnFinish: func(i, total int, r deploy.Result) {
			if r.Success {
				successColor.Fprintln(out, "  Success")
			} else {
				errorColor.Fprintf(out, "  Failed: %s\n", r.Error)
			}
		},
	}
}

func printBulkSummary(out io.Writer, s *deploy.Summary) {
	fmt.Fprintln(out)
	statusColor.Fprintln(out, "Bulk deployment summary")
	fmt.Fprintf(out, "  Successful: %s\n", successColor.Sprint(s.Succeeded))
	fmt.Fprintf(out, "  Failed:     %s\n", errorColor.Sprint(s.Failed))
	fmt.Fprintf(out, "  Total:      %d\n", s.Attempted)
	if s.Interrupted {
		stepColor.Fprintf(out, "  Skipped:    %d (interrupted)\n", s.Planned-s.Attempted)
	}

	if failures := s.Failures(); len(failures) > 0 {
		fmt.Fprintln(out)
		errorColor.Fprintln(out, "Failed deployments:")
		for _, r := range failures {
			fmt.Fprintf(out, "  - %s on %s: %s\n", r.WorkerName, r.AccountEmail, r.Error)
		}
	}
	dimColor.Fprintf(out, "\nRun ID: %s\n", s.RunID)
}
