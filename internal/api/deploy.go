// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"cf-worker-cli/internal/deploy"
	"cf-worker-cli/internal/store"
)

// DeployRequest is the body of POST /api/deploy. Account is a 1-based
// number or an email; Script is a number or name and defaults to the
// default script source.
type DeployRequest struct {
	Account    string `json:"account"`
	WorkerName string `json:"worker_name"`
	Script     string `json:"script,omitempty"`
}

// DeployResponse is a Result plus the links parsed from its payload.
type DeployResponse struct {
	deploy.Result
	ScriptURL string        `json:"script_url"`
	Links     *deploy.Links `json:"links,omitempty"`
}

// BulkRequest is the body of POST /api/bulk. Names are trimmed and empty
// ones dropped.
type BulkRequest struct {
	WorkerNames []string `json:"worker_names"`
	Script      string   `json:"script,omitempty"`
}

// resolveScript picks the URL for ref, or the default URL when ref is empty.
func (s *Server) resolveScript(ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return s.session.DefaultScriptURL(), nil
	}
	src, err := s.session.LookupScript(ref)
	if err != nil {
		return "", err
	}
	return src.URL, nil
}

func (s *Server) deployHandler(w http.ResponseWriter, r *http.Request) {
	var req DeployRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	workerName := strings.TrimSpace(req.WorkerName)
	if workerName == "" {
		writeError(w, http.StatusBadRequest, "worker name is required")
		return
	}
	account, err := s.session.LookupAccount(req.Account)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	scriptURL, err := s.resolveScript(req.Script)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	res := s.deployer.Deploy(context.WithoutCancel(r.Context()), account, workerName, scriptURL)
	resp := DeployResponse{Result: res, ScriptURL: scriptURL}
	if res.Success {
		links := deploy.ParseLinks(res.Data)
		resp.Links = &links
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

// bulkInputs validates a bulk request against the current records.
func (s *Server) bulkInputs(names []string, script string) ([]store.Account, []string, string, int, error) {
	accounts := s.session.Accounts()
	if len(accounts) == 0 {
		return nil, nil, "", http.StatusBadRequest, fmt.Errorf("no accounts registered")
	}
	workerNames, err := deploy.SplitWorkerNames(strings.Join(names, ","))
	if err != nil {
		return nil, nil, "", http.StatusBadRequest, err
	}
	scriptURL, err := s.resolveScript(script)
	if err != nil {
		return nil, nil, "", http.StatusNotFound, err
	}
	return accounts, workerNames, scriptURL, 0, nil
}

func (s *Server) bulkHandler(w http.ResponseWriter, r *http.Request) {
	var req BulkRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	accounts, workerNames, scriptURL, status, err := s.bulkInputs(req.WorkerNames, req.Script)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	summary := deploy.Run(r.Context(), s.deployer, accounts, workerNames, scriptURL, nil)
	writeJSONResponse(w, http.StatusOK, summary)
}

// streamBulkHandler runs a bulk deployment and streams progress using
// Server-Sent Events. Query parameters: workers (comma-separated) and
// optionally script. A dropped client stops dispatch after the in-flight
// call.
func (s *Server) streamBulkHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	accounts, workerNames, scriptURL, status, err := s.bulkInputs([]string{q.Get("workers")}, q.Get("script"))
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Set headers for Server-Sent Events
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	obs := deploy.ObserverFuncs{
		OnStart: func(i, total int, t deploy.Target) {
			fmt.Fprintf(w, "event: step\ndata: [%d/%d] Deploying %s to %s\n\n", i, total, t.WorkerName, t.Account.Email)
			flusher.Flush()
		},
		OnFinish: func(i, total int, res deploy.Result) {
			writeEvent(w, "result", res)
			flusher.Flush()
		},
	}

	summary := deploy.Run(r.Context(), s.deployer, accounts, workerNames, scriptURL, obs)
	writeEvent(w, "done", summary)
	flusher.Flush()
}

func writeEvent(w http.ResponseWriter, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(w, "event: error\ndata: %s\n\n", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
