// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package deploy

import (
	"context"
	"errors"
	"strings"

	"cf-worker-cli/internal/logger"
	"cf-worker-cli/internal/store"

	"github.com/google/uuid"
)

// ErrNoWorkerNames is returned when worker-name input contains no names.
var ErrNoWorkerNames = errors.New("please enter at least one worker name")

// Target is one (account, worker name) pair of a bulk run.
type Target struct {
	Account    store.Account
	WorkerName string
}

// SplitWorkerNames splits comma-separated operator input, trimming each name
// and dropping empty ones.
func SplitWorkerNames(input string) ([]string, error) {
	var names []string
	for _, part := range strings.Split(input, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, ErrNoWorkerNames
	}
	return names, nil
}

// Plan returns the Cartesian product of accounts and worker names in
// account-major order: every worker for the first account, then every worker
// for the second, and so on.
func Plan(accounts []store.Account, workerNames []string) []Target {
	targets := make([]Target, 0, len(accounts)*len(workerNames))
	for _, account := range accounts {
		for _, name := range workerNames {
			targets = append(targets, Target{Account: account, WorkerName: name})
		}
	}
	return targets
}

// Summary aggregates the results of a bulk run.
// Succeeded + Failed always equals Attempted. Attempted is below Planned only
// when the run was interrupted.
type Summary struct {
	RunID       string   `json:"run_id"`
	Planned     int      `json:"planned"`
	Attempted   int      `json:"attempted"`
	Succeeded   int      `json:"succeeded"`
	Failed      int      `json:"failed"`
	Interrupted bool     `json:"interrupted,omitempty"`
	Results     []Result `json:"results"`
}

// NewSummary starts an empty summary with a fresh run ID.
func NewSummary() *Summary {
	return &Summary{RunID: uuid.NewString(), Results: []Result{}}
}

// Record adds one result and updates the counters.
func (s *Summary) Record(r Result) {
	s.Attempted++
	if r.Success {
		s.Succeeded++
	} else {
		s.Failed++
	}
	s.Results = append(s.Results, r)
}

// Successes returns the successful results in run order.
func (s *Summary) Successes() []Result { return s.filter(true) }

// Failures returns the failed results in run order.
func (s *Summary) Failures() []Result { return s.filter(false) }

func (s *Summary) filter(success bool) []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Success == success {
			out = append(out, r)
		}
	}
	return out
}

// Begin plans a bulk run and logs its start. Callers dispatch the returned
// targets in order, Record each result and call Finish.
func Begin(accounts []store.Account, workerNames []string, scriptURL string) (*Summary, []Target) {
	targets := Plan(accounts, workerNames)
	summary := NewSummary()
	summary.Planned = len(targets)

	l := logger.With("bulk")
	l.Info().
		Str("run_id", summary.RunID).
		Int("accounts", len(accounts)).
		Int("workers", len(workerNames)).
		Int("total", len(targets)).
		Str("script_url", scriptURL).
		Msg("Bulk deployment started")

	return summary, targets
}

// Finish logs the final counters of the run.
func (s *Summary) Finish() {
	l := logger.With("bulk")
	l.Info().
		Str("run_id", s.RunID).
		Int("attempted", s.Attempted).
		Int("succeeded", s.Succeeded).
		Int("failed", s.Failed).
		Bool("interrupted", s.Interrupted).
		Msg("Bulk deployment finished")
}

// Observer is notified around every call of a bulk run. index is 1-based.
type Observer interface {
	Started(index, total int, target Target)
	Finished(index, total int, result Result)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnStart  func(index, total int, target Target)
	OnFinish func(index, total int, result Result)
}

func (o ObserverFuncs) Started(index, total int, target Target) {
	if o.OnStart != nil {
		o.OnStart(index, total, target)
	}
}

func (o ObserverFuncs) Finished(index, total int, result Result) {
	if o.OnFinish != nil {
		o.OnFinish(index, total, result)
	}
}

// Run deploys scriptURL to every planned target, one call at a time. A
// failed deployment never stops the run. Cancelling ctx stops dispatch of
// the remaining targets; a call already in flight runs to completion.
// obs may be nil.
func Run(ctx context.Context, d Deployer, accounts []store.Account, workerNames []string, scriptURL string, obs Observer) *Summary {
	if obs == nil {
		obs = ObserverFuncs{}
	}

	summary, targets := Begin(accounts, workerNames, scriptURL)
	callCtx := context.WithoutCancel(ctx)

	for i, t := range targets {
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}
		obs.Started(i+1, len(targets), t)
		r := d.Deploy(callCtx, t.Account, t.WorkerName, scriptURL)
		summary.Record(r)
		obs.Finished(i+1, len(targets), r)
	}

	summary.Finish()
	return summary
}
