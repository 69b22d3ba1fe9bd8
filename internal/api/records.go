// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package api

import (
	"net/http"

	"cf-worker-cli/internal/store"
)

// accountView is an account as exposed over HTTP. The key is always masked.
type accountView struct {
	Index  int    `json:"index"`
	Email  string `json:"email"`
	APIKey string `json:"api_key"`
}

type addAccountRequest struct {
	Email  string `json:"email"`
	APIKey string `json:"api_key"`
}

type scriptView struct {
	Index int `json:"index"`
	store.ScriptSource
}

type addScriptRequest struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Default bool   `json:"default"`
}

// mutationResponse carries the affected record and a warning when the
// change could not be written to disk.
type mutationResponse struct {
	Account    *accountView        `json:"account,omitempty"`
	Script     *store.ScriptSource `json:"script,omitempty"`
	NewDefault *store.ScriptSource `json:"new_default,omitempty"`
	Warning    string              `json:"warning,omitempty"`
}

func viewAccount(i int, a store.Account) accountView {
	return accountView{Index: i + 1, Email: a.Email, APIKey: a.MaskedKey()}
}

func (s *Server) listAccountsHandler(w http.ResponseWriter, r *http.Request) {
	accounts := s.session.Accounts()
	views := make([]accountView, 0, len(accounts))
	for i, a := range accounts {
		views = append(views, viewAccount(i, a))
	}
	writeJSONResponse(w, http.StatusOK, views)
}

func (s *Server) addAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req addAccountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := s.session.AddAccount(req.Email, req.APIKey)
	warning, ok := saveWarning(err)
	if !ok {
		writeStoreError(w, err)
		return
	}
	v := viewAccount(len(s.session.Accounts())-1, a)
	writeJSONResponse(w, http.StatusCreated, mutationResponse{Account: &v, Warning: warning})
}

func (s *Server) removeAccountHandler(w http.ResponseWriter, r *http.Request) {
	index, err := indexVar(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := s.session.RemoveAccount(index)
	warning, ok := saveWarning(err)
	if !ok {
		writeStoreError(w, err)
		return
	}
	v := viewAccount(index, a)
	writeJSONResponse(w, http.StatusOK, mutationResponse{Account: &v, Warning: warning})
}

func (s *Server) listScriptsHandler(w http.ResponseWriter, r *http.Request) {
	scripts := s.session.Scripts()
	views := make([]scriptView, 0, len(scripts))
	for i, src := range scripts {
		views = append(views, scriptView{Index: i + 1, ScriptSource: src})
	}
	writeJSONResponse(w, http.StatusOK, views)
}

func (s *Server) addScriptHandler(w http.ResponseWriter, r *http.Request) {
	var req addScriptRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	added, err := s.session.AddScript(req.Name, req.URL, req.Default)
	warning, ok := saveWarning(err)
	if !ok {
		writeStoreError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, mutationResponse{Script: &added, Warning: warning})
}

func (s *Server) removeScriptHandler(w http.ResponseWriter, r *http.Request) {
	index, err := indexVar(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	removed, newDefault, err := s.session.RemoveScript(index)
	warning, ok := saveWarning(err)
	if !ok {
		writeStoreError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, mutationResponse{Script: &removed, NewDefault: newDefault, Warning: warning})
}

func (s *Server) setDefaultScriptHandler(w http.ResponseWriter, r *http.Request) {
	index, err := indexVar(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	chosen, err := s.session.SetDefaultScript(index)
	warning, ok := saveWarning(err)
	if !ok {
		writeStoreError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, mutationResponse{Script: &chosen, Warning: warning})
}
