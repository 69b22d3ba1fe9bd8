// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cf-worker-cli/internal/deploy"
	"cf-worker-cli/internal/store"
)

func (s *Shell) singleDeploy(ctx context.Context) error {
	s.header("SINGLE DEPLOYMENT", "Deploy Single Worker")

	accounts, err := s.ensureAccounts(ctx)
	if err != nil || len(accounts) == 0 {
		return err
	}

	fmt.Fprintln(s.out, "Select account:")
	s.rule()
	for i, a := range accounts {
		fmt.Fprintf(s.out, "%d. %s\n", i+1, a.Email)
	}
	s.rule()

	choice, err := s.readNumber(ctx, "\nSelect account: ")
	if errors.Is(err, errNotNumber) {
		s.showError("Invalid input")
		return s.pause(ctx)
	}
	if err != nil {
		return err
	}
	if choice < 1 || choice > len(accounts) {
		s.showError("Invalid choice")
		return s.pause(ctx)
	}
	account := accounts[choice-1]

	workerName, err := s.readLine(ctx, "\n🔧 Worker name: ")
	if err != nil {
		return err
	}
	if workerName == "" {
		s.showError("Worker name is required")
		return s.pause(ctx)
	}

	scriptURL, err := s.selectScript(ctx)
	if err != nil {
		return err
	}

	s.header("DEPLOYMENT CONFIRMATION", "Review Deployment Details")
	fmt.Fprintln(s.out, "📊 DEPLOYMENT SUMMARY")
	s.rule()
	fmt.Fprintf(s.out, "📧 Account: %s\n", account.Email)
	fmt.Fprintf(s.out, "🔧 Worker: %s\n", workerName)
	fmt.Fprintf(s.out, "📦 GitHub URL: %s\n", scriptURL)
	s.rule()

	ok, err := s.confirm(ctx, "\nProceed with deployment?")
	if err != nil {
		return err
	}
	if !ok {
		s.showInfo("Cancelled")
		return s.pause(ctx)
	}

	res := s.deployOne(ctx, account, workerName, scriptURL)
	if res.Success {
		if err := s.displayResult(ctx, res); err != nil {
			return err
		}
	}
	return s.pause(ctx)
}

// deployOne performs one call with progress feedback and reports the
// outcome. The call is never cancelled once started.
func (s *Shell) deployOne(ctx context.Context, account store.Account, workerName, scriptURL string) deploy.Result {
	sp := s.newSpinner(fmt.Sprintf(" Deploying %s...", workerName))
	if sp != nil {
		sp.Start()
	} else {
		fmt.Fprintf(s.out, "🔄 Deploying %s...\n", workerName)
	}

	res := s.deployer.Deploy(context.WithoutCancel(ctx), account, workerName, scriptURL)

	if sp != nil {
		sp.Stop()
	}
	if res.Success {
		s.showSuccess("Worker deployed successfully!")
	} else {
		s.showError(res.Error)
	}
	return res
}

func (s *Shell) displayResult(ctx context.Context, res deploy.Result) error {
	s.header("DEPLOYMENT RESULT", "Worker Successfully Deployed")

	s.heavyRule()
	successColor.Fprintln(s.out, centered("🎉 DEPLOYMENT SUCCESSFUL"))
	s.heavyRule()

	links := deploy.ParseLinks(res.Data)
	if links.Sub != "" {
		fmt.Fprintln(s.out, "\n📋 SUBSCRIPTION LINK")
		fmt.Fprintln(s.out, "🔗 "+links.Sub)
	}
	if links.VLESS != "" {
		fmt.Fprintln(s.out, "\n🔰 VLESS CONFIG")
		fmt.Fprintln(s.out, "🔗 "+links.VLESS)
		if links.UUID != "" {
			fmt.Fprintln(s.out, "🔑 UUID: "+links.UUID)
		}
	}
	if links.Trojan != "" {
		fmt.Fprintln(s.out, "\n⚡ TROJAN CONFIG")
		fmt.Fprintln(s.out, "🔗 "+links.Trojan)
		if links.Password != "" {
			fmt.Fprintln(s.out, "🔑 Password: "+links.Password)
		}
	}

	fmt.Fprintln(s.out)
	s.heavyRule()
	s.showNote("💡 Copy URLs above and use in your client apps")
	s.heavyRule()

	if links.Sub == "" || s.clipboard == nil {
		return nil
	}
	ok, err := s.confirm(ctx, "\nCopy subscription link to clipboard?")
	if err != nil || !ok {
		return err
	}
	if err := s.clipboard(links.Sub); err != nil {
		s.showError(fmt.Sprintf("Could not copy to clipboard: %v", err))
		return nil
	}
	s.showSuccess("Subscription link copied to clipboard")
	return nil
}

func (s *Shell) bulkDeploy(ctx context.Context) error {
	s.header("BULK DEPLOYMENT", "Deploy Multiple Workers")

	accounts := s.session.Accounts()
	if len(accounts) == 0 {
		s.showWarning("No accounts found. Please add accounts first.")
		return s.pause(ctx)
	}

	input, err := s.readLine(ctx, "🔧 Worker names (separate with comma): ")
	if err != nil {
		return err
	}
	workerNames, err := deploy.SplitWorkerNames(input)
	if err != nil {
		s.showError("Please enter at least one worker name")
		return s.pause(ctx)
	}

	scriptURL, err := s.selectScript(ctx)
	if err != nil {
		return err
	}

	s.header("BULK DEPLOYMENT CONFIRMATION", "Review Bulk Deployment")
	fmt.Fprintln(s.out, "📊 BULK DEPLOYMENT SUMMARY")
	s.rule()
	fmt.Fprintf(s.out, "🔧 Workers: %s\n", strings.Join(workerNames, ", "))
	fmt.Fprintf(s.out, "👥 Accounts: %d accounts\n", len(accounts))
	fmt.Fprintf(s.out, "📦 GitHub URL: %s\n", scriptURL)
	fmt.Fprintf(s.out, "📊 Total deployments: %d\n", len(workerNames)*len(accounts))
	s.rule()

	ok, err := s.confirm(ctx, "\nProceed with bulk deployment?")
	if err != nil {
		return err
	}
	if !ok {
		s.showInfo("Cancelled")
		return s.pause(ctx)
	}

	s.header("BULK DEPLOYMENT IN PROGRESS", "Deploying Workers...")
	summary := s.bulk(ctx, s.deployer, accounts, workerNames, scriptURL)

	s.printSummary(summary)
	if summary.Interrupted {
		return errInterrupted
	}
	return s.pause(ctx)
}

// lineBulk prints one progress block per pair.
func (s *Shell) lineBulk(ctx context.Context, d deploy.Deployer, accounts []store.Account, workerNames []string, scriptURL string) *deploy.Summary {
	obs := deploy.ObserverFuncs{
		OnStart: func(i, total int, t deploy.Target) {
			fmt.Fprintf(s.out, "\n🔄 [%d/%d] Deploying %s to %s\n", i, total, t.WorkerName, t.Account.Email)
		},
		OnFinish: func(i, total int, r deploy.Result) {
			if r.Success {
				successColor.Fprintln(s.out, "✅ Success")
			} else {
				errorColor.Fprintf(s.out, "❌ Failed: %s\n", r.Error)
			}
		},
	}
	return deploy.Run(ctx, d, accounts, workerNames, scriptURL, obs)
}

func (s *Shell) printSummary(summary *deploy.Summary) {
	s.header("BULK DEPLOYMENT COMPLETE", "Deployment Summary")

	fmt.Fprintln(s.out, "📊 BULK DEPLOYMENT SUMMARY")
	s.heavyRule()
	successColor.Fprintln(s.out, centered(fmt.Sprintf("✅ Successful: %d", summary.Succeeded)))
	errorColor.Fprintln(s.out, centered(fmt.Sprintf("❌ Failed: %d", summary.Failed)))
	infoColor.Fprintln(s.out, centered(fmt.Sprintf("📊 Total: %d", summary.Attempted)))
	if summary.Interrupted {
		warnColor.Fprintln(s.out, centered(fmt.Sprintf("⚠️ Not attempted: %d", summary.Planned-summary.Attempted)))
	}
	s.heavyRule()

	if ok := summary.Successes(); len(ok) > 0 {
		fmt.Fprintln(s.out, "\n✅ SUCCESSFUL DEPLOYMENTS:")
		for _, r := range ok {
			fmt.Fprintf(s.out, "• %s on %s\n", r.WorkerName, r.AccountEmail)
		}
	}
	if failed := summary.Failures(); len(failed) > 0 {
		fmt.Fprintln(s.out, "\n❌ FAILED DEPLOYMENTS:")
		for _, r := range failed {
			fmt.Fprintf(s.out, "• %s on %s: %s\n", r.WorkerName, r.AccountEmail, r.Error)
		}
	}
}
