// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUsesConfigFileAndDataDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("CFW_API_URL", "")
	t.Setenv("CFW_DATA_DIR", "")
	t.Setenv("CFW_TIMEOUT_SECONDS", "")
	t.Setenv("CFW_LOG_LEVEL", "")

	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("api_url: https://deploy.example.com/\ntimeout_seconds: 5\n"), 0o600))
	dataDir := filepath.Join(dir, "data")

	a, err := New(Options{ConfigPath: configPath, DataDir: dataDir})
	require.NoError(t, err)

	assert.Equal(t, configPath, a.ConfigPath)
	assert.Equal(t, "https://deploy.example.com/", a.Client.Endpoint())
	assert.Equal(t, 5*time.Second, a.Config.Timeout())
	assert.Equal(t, filepath.Join(dataDir, "accounts.json"), a.Session.Paths().Accounts)
	assert.Equal(t, filepath.Join(dataDir, "github_urls.json"), a.Session.Paths().Scripts)
	assert.Empty(t, a.Session.Warnings())

	_, err = os.Stat(a.Session.Paths().Scripts)
	assert.NoError(t, err, "scripts file is seeded on first open")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("CFW_API_URL", "")

	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("api_url: ftp://nope\n"), 0o600))

	_, err := New(Options{ConfigPath: configPath})
	assert.ErrorContains(t, err, "failed to load configuration")
}

func TestReadUntilDoneReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	restored := false
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := readUntilDone(ctx, func() (string, error) {
		<-block
		return "late", nil
	}, func() { restored = true })

	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, restored, "terminal state is restored when the read is abandoned")
	assert.Less(t, time.Since(start), time.Second)
}

func TestReadUntilDoneReturnsValueAndErrors(t *testing.T) {
	v, err := readUntilDone(context.Background(), func() (string, error) { return "key", nil }, func() {
		t.Error("restore must not run after a completed read")
	})
	require.NoError(t, err)
	assert.Equal(t, "key", v)

	_, err = readUntilDone(context.Background(), func() (string, error) { return "", errors.New("tty gone") }, func() {})
	assert.ErrorContains(t, err, "error reading secret: tty gone")
}
