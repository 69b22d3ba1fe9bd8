// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package ui

import (
	"context"
	"io"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"testing"
	"time"

	"cf-worker-cli/internal/deploy"
	"cf-worker-cli/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowDeployer takes delay per call and runs onCall with the 1-based call
// number before sleeping.
type slowDeployer struct {
	mu     sync.Mutex
	calls  int
	delay  time.Duration
	onCall func(n int)
}

func (d *slowDeployer) Deploy(ctx context.Context, a store.Account, worker, url string) deploy.Result {
	d.mu.Lock()
	d.calls++
	n := d.calls
	d.mu.Unlock()

	if d.onCall != nil {
		d.onCall(n)
	}
	time.Sleep(d.delay)
	return deploy.Result{Success: ctx.Err() == nil, AccountEmail: a.Email, WorkerName: worker}
}

func (d *slowDeployer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func TestRunBulkCancelRecordsInFlightCall(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d := &slowDeployer{delay: 50 * time.Millisecond, onCall: func(n int) {
		if n == 2 {
			cancel()
		}
	}}

	summary, err := RunBulk(ctx, d, testAccounts, []string{"w1", "w2", "w3"}, "https://src", RunOptions{Output: io.Discard})
	require.NoError(t, err)

	assert.Equal(t, 2, d.count())
	assert.Equal(t, 6, summary.Planned)
	assert.Equal(t, d.count(), summary.Attempted)
	assert.True(t, summary.Interrupted)
	assert.Equal(t, 2, summary.Succeeded, "the in-flight call keeps an uncancelled context")
}

func TestRunBulkInterruptSignal(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("os.Process.Signal cannot deliver os.Interrupt on windows")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := &slowDeployer{delay: 100 * time.Millisecond, onCall: func(n int) {
		if n == 2 {
			p, err := os.FindProcess(os.Getpid())
			if err == nil {
				_ = p.Signal(os.Interrupt)
			}
		}
	}}

	summary, err := RunBulk(ctx, d, testAccounts, []string{"w1", "w2", "w3"}, "https://src", RunOptions{Output: io.Discard})
	require.NoError(t, err)

	assert.Equal(t, 2, d.count())
	assert.Equal(t, d.count(), summary.Attempted)
	assert.Equal(t, summary.Attempted, summary.Succeeded+summary.Failed)
	assert.True(t, summary.Interrupted)
	assert.Len(t, summary.Results, summary.Attempted)
}

func TestRunBulkCompletesWithoutInterrupt(t *testing.T) {
	d := &slowDeployer{}

	summary, err := RunBulk(context.Background(), d, testAccounts, []string{"w1"}, "https://src", RunOptions{Output: io.Discard})
	require.NoError(t, err)

	assert.Equal(t, 2, d.count())
	assert.Equal(t, 2, summary.Succeeded)
	assert.False(t, summary.Interrupted)
}
