// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package ui's messages.go file defines the message types that drive the
// bulk deployment view.

package ui

import "cf-worker-cli/internal/deploy"

// deployFinishedMsg carries the result of the deployment at index.
type deployFinishedMsg struct {
	index  int
	result deploy.Result
}
