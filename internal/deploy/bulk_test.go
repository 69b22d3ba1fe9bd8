// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package deploy

import (
	"context"
	"fmt"
	"testing"

	"cf-worker-cli/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	email, worker, url string
}

// fakeDeployer records every call and fails the pairs listed in fail.
type fakeDeployer struct {
	calls    []call
	inFlight int
	maxSeen  int
	fail     map[string]bool
}

func (f *fakeDeployer) Deploy(ctx context.Context, a store.Account, worker, url string) Result {
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	defer func() { f.inFlight-- }()

	f.calls = append(f.calls, call{a.Email, worker, url})
	res := Result{AccountEmail: a.Email, WorkerName: worker}
	if f.fail[a.Email+"/"+worker] {
		res.Error = "HTTP 500: boom"
		return res
	}
	res.Success = true
	res.Data = map[string]any{"success": true}
	return res
}

func accounts(n int) []store.Account {
	out := make([]store.Account, n)
	for i := range out {
		out[i] = store.Account{Email: fmt.Sprintf("acct%d@example.com", i+1), APIKey: "k"}
	}
	return out
}

func TestSplitWorkerNames(t *testing.T) {
	names, err := SplitWorkerNames(" w1, w2 ,,w3 ")
	require.NoError(t, err)
	assert.Equal(t, []string{"w1", "w2", "w3"}, names)

	_, err = SplitWorkerNames(" , ,")
	assert.ErrorIs(t, err, ErrNoWorkerNames)
	_, err = SplitWorkerNames("")
	assert.ErrorIs(t, err, ErrNoWorkerNames)
}

func TestPlanIsAccountMajor(t *testing.T) {
	targets := Plan(accounts(2), []string{"a", "b", "c"})
	var got []string
	for _, tg := range targets {
		got = append(got, tg.Account.Email+"/"+tg.WorkerName)
	}
	assert.Equal(t, []string{
		"acct1@example.com/a", "acct1@example.com/b", "acct1@example.com/c",
		"acct2@example.com/a", "acct2@example.com/b", "acct2@example.com/c",
	}, got)
}

func TestRunIssuesNTimesMCalls(t *testing.T) {
	for _, n := range []int{0, 1, 3} {
		for _, m := range []int{0, 1, 4} {
			t.Run(fmt.Sprintf("%dx%d", n, m), func(t *testing.T) {
				names := make([]string, m)
				for i := range names {
					names[i] = fmt.Sprintf("w%d", i+1)
				}
				f := &fakeDeployer{}

				summary := Run(context.Background(), f, accounts(n), names, "https://src", nil)

				assert.Len(t, f.calls, n*m)
				assert.Equal(t, n*m, summary.Attempted)
				assert.Equal(t, summary.Attempted, summary.Succeeded+summary.Failed)
				assert.Len(t, summary.Results, n*m)

				seen := map[string]bool{}
				for _, c := range f.calls {
					key := c.email + "/" + c.worker
					assert.False(t, seen[key], "pair %s dispatched twice", key)
					seen[key] = true
				}
				if n*m > 0 {
					assert.Equal(t, 1, f.maxSeen, "calls must not overlap")
				}
			})
		}
	}
}

func TestRunSingleAccountTwoWorkers(t *testing.T) {
	f := &fakeDeployer{}
	names, err := SplitWorkerNames("w1,w2")
	require.NoError(t, err)

	summary := Run(context.Background(), f, accounts(1), names, "https://src", nil)

	assert.Equal(t, []call{
		{"acct1@example.com", "w1", "https://src"},
		{"acct1@example.com", "w2", "https://src"},
	}, f.calls)
	assert.Equal(t, 2, summary.Planned)
	assert.Equal(t, 2, summary.Attempted)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.False(t, summary.Interrupted)
	assert.NotEmpty(t, summary.RunID)
}

func TestRunContinuesAfterFailure(t *testing.T) {
	f := &fakeDeployer{fail: map[string]bool{"acct1@example.com/w1": true}}

	summary := Run(context.Background(), f, accounts(2), []string{"w1", "w2"}, "https://src", nil)

	assert.Len(t, f.calls, 4)
	assert.Equal(t, 4, summary.Attempted)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)

	failures := summary.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "w1", failures[0].WorkerName)
	assert.Equal(t, "HTTP 500: boom", failures[0].Error)
	assert.Len(t, summary.Successes(), 3)
}

func TestRunStopsDispatchWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := &fakeDeployer{}
	obs := ObserverFuncs{
		OnFinish: func(i, total int, r Result) {
			if i == 2 {
				cancel()
			}
		},
	}

	summary := Run(ctx, f, accounts(1), []string{"a", "b", "c", "d"}, "https://src", obs)

	assert.Len(t, f.calls, 2)
	assert.Equal(t, 4, summary.Planned)
	assert.Equal(t, 2, summary.Attempted)
	assert.True(t, summary.Interrupted)
	assert.Equal(t, summary.Attempted, summary.Succeeded+summary.Failed)
}

func TestRunNotifiesObserver(t *testing.T) {
	var events []string
	obs := ObserverFuncs{
		OnStart: func(i, total int, tg Target) {
			events = append(events, fmt.Sprintf("start %d/%d %s", i, total, tg.WorkerName))
		},
		OnFinish: func(i, total int, r Result) {
			events = append(events, fmt.Sprintf("done %d/%d %v", i, total, r.Success))
		},
	}

	Run(context.Background(), &fakeDeployer{}, accounts(1), []string{"a", "b"}, "https://src", obs)

	assert.Equal(t, []string{
		"start 1/2 a", "done 1/2 true",
		"start 2/2 b", "done 2/2 true",
	}, events)
}

func TestSummaryRecord(t *testing.T) {
	s := NewSummary()
	s.Record(Result{Success: true})
	s.Record(Result{Success: false, Error: "x"})
	s.Record(Result{Success: false, Error: "y"})

	assert.Equal(t, 3, s.Attempted)
	assert.Equal(t, 1, s.Succeeded)
	assert.Equal(t, 2, s.Failed)
	assert.Len(t, s.Failures(), 2)
}
