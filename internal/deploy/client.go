// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package deploy talks to the remote Worker deployment API. It issues one
// synchronous request per deployment, runs bulk batches sequentially, and
// pulls the client connection links out of successful responses.
package deploy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cf-worker-cli/internal/logger"
	"cf-worker-cli/internal/store"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single deployment call.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// Request is the JSON body sent to the deployment API.
type Request struct {
	Email        string `json:"email"`
	GlobalAPIKey string `json:"globalAPIKey"`
	WorkerName   string `json:"workerName"`
	GitHubURL    string `json:"githubUrl"`
}

// Result is the outcome of one deployment. On success Data holds the full
// decoded response payload; on failure Error holds a readable reason.
type Result struct {
	Success      bool           `json:"success"`
	Data         map[string]any `json:"data,omitempty"`
	Error        string         `json:"error,omitempty"`
	AccountEmail string         `json:"account"`
	WorkerName   string         `json:"worker"`
}

// Deployer deploys one worker for one account. Implementations never return
// remote failures as errors; they are reported inside the Result.
type Deployer interface {
	Deploy(ctx context.Context, account store.Account, workerName, scriptURL string) Result
}

// Client is the HTTP Deployer.
type Client struct {
	endpoint   string
	httpClient *http.Client
	log        zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, including its timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for per-call records.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a Client posting to endpoint. A non-positive timeout
// means DefaultTimeout.
func NewClient(endpoint string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("deploy"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL deployments are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

// Deploy posts one deployment request and interprets the response. It blocks
// until the call completes or the timeout expires. No retries are made.
func (c *Client) Deploy(ctx context.Context, account store.Account, workerName, scriptURL string) Result {
	res := Result{AccountEmail: account.Email, WorkerName: workerName}
	start := time.Now()

	status := c.post(ctx, Request{
		Email:        account.Email,
		GlobalAPIKey: account.APIKey,
		WorkerName:   workerName,
		GitHubURL:    scriptURL,
	}, &res)

	event := c.log.Info()
	if !res.Success {
		event = c.log.Warn().Str("error", res.Error)
	}
	event.
		Str("worker", workerName).
		Str("account", account.Email).
		Int("status", status).
		Dur("duration", time.Since(start)).
		Bool("success", res.Success).
		Msg("Deployment attempt")

	return res
}

// post performs the request, fills res and returns the HTTP status (0 when
// no response arrived).
func (c *Client) post(ctx context.Context, body Request, res *Result) int {
	payload, err := json.Marshal(body)
	if err != nil {
		res.Error = fmt.Sprintf("failed to encode request: %v", err)
		return 0
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		res.Error = fmt.Sprintf("failed to build request: %v", err)
		return 0
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "cf-worker-cli")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		res.Error = err.Error()
		return 0
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		res.Error = fmt.Sprintf("failed to read response: %v", err)
		return resp.StatusCode
	}

	if resp.StatusCode != http.StatusOK {
		res.Error = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(raw))
		return resp.StatusCode
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		res.Error = fmt.Sprintf("invalid response: %v", err)
		return resp.StatusCode
	}

	if !truthy(data["success"]) {
		res.Error = "Deployment failed: " + errorText(data["error"])
		return resp.StatusCode
	}

	res.Success = true
	res.Data = data
	return resp.StatusCode
}

// truthy applies JSON truthiness: false, null, 0, "" and empty containers
// are false; everything else is true.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

func errorText(v any) string {
	switch t := v.(type) {
	case nil:
		return "Unknown error"
	case string:
		if t == "" {
			return "Unknown error"
		}
		return t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
