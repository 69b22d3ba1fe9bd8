// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package api implements the local HTTP API: JSON endpoints over the same
// record store and deployment client the console uses. Every handler runs
// under one mutex, so deployments stay sequential across requests.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"cf-worker-cli/internal/deploy"
	"cf-worker-cli/internal/logger"
	"cf-worker-cli/internal/store"

	"github.com/gorilla/mux"
)

// Server holds the state shared by all handlers.
type Server struct {
	mu       sync.Mutex
	session  *store.Session
	deployer deploy.Deployer
	endpoint string
}

// NewServer wires a Server. endpoint is reported by the status route only.
func NewServer(session *store.Session, deployer deploy.Deployer, endpoint string) *Server {
	return &Server{session: session, deployer: deployer, endpoint: endpoint}
}

// RegisterRoutes registers every API route on router.
func (s *Server) RegisterRoutes(router *mux.Router) {
	router.Use(sameOriginOnly, requireJSON)

	router.HandleFunc("/api/status", s.locked(s.statusHandler)).Methods("GET")

	router.HandleFunc("/api/accounts", s.locked(s.listAccountsHandler)).Methods("GET")
	router.HandleFunc("/api/accounts", s.locked(s.addAccountHandler)).Methods("POST")
	router.HandleFunc("/api/accounts/{index}", s.locked(s.removeAccountHandler)).Methods("DELETE")

	router.HandleFunc("/api/scripts", s.locked(s.listScriptsHandler)).Methods("GET")
	router.HandleFunc("/api/scripts", s.locked(s.addScriptHandler)).Methods("POST")
	router.HandleFunc("/api/scripts/{index}", s.locked(s.removeScriptHandler)).Methods("DELETE")
	router.HandleFunc("/api/scripts/{index}/default", s.locked(s.setDefaultScriptHandler)).Methods("PUT")

	router.HandleFunc("/api/deploy", s.locked(s.deployHandler)).Methods("POST")
	router.HandleFunc("/api/bulk", s.locked(s.bulkHandler)).Methods("POST")
	// Streaming variant of /api/bulk using Server-Sent Events
	router.HandleFunc("/api/bulk/stream", s.locked(s.streamBulkHandler)).Methods("GET")
}

// NewRouter returns a router with every API route registered.
func (s *Server) NewRouter() *mux.Router {
	router := mux.NewRouter()
	s.RegisterRoutes(router)
	return router
}

func (s *Server) locked(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		h(w, r)
	}
}

// statusResponse mirrors the console status screen.
type statusResponse struct {
	AccountsFile     string   `json:"accounts_file"`
	ScriptsFile      string   `json:"scripts_file"`
	APIURL           string   `json:"api_url"`
	DefaultScriptURL string   `json:"default_script_url"`
	AccountsCount    int      `json:"accounts_count"`
	ScriptsCount     int      `json:"scripts_count"`
	Accounts         []string `json:"accounts"`
	Scripts          []string `json:"scripts"`
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	accounts := s.session.Accounts()
	scripts := s.session.Scripts()

	resp := statusResponse{
		AccountsFile:     s.session.Paths().Accounts,
		ScriptsFile:      s.session.Paths().Scripts,
		APIURL:           s.endpoint,
		DefaultScriptURL: s.session.DefaultScriptURL(),
		AccountsCount:    len(accounts),
		ScriptsCount:     len(scripts),
		Accounts:         make([]string, 0, len(accounts)),
		Scripts:          make([]string, 0, len(scripts)),
	}
	for _, a := range accounts {
		resp.Accounts = append(resp.Accounts, a.Email)
	}
	for _, src := range scripts {
		resp.Scripts = append(resp.Scripts, src.Name)
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

// writeJSONResponse writes a JSON response. No CORS headers are sent: the API
// is for same-origin and non-browser clients only.
func writeJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSONResponse(w, status, errorResponse{Error: msg})
}

// writeStoreError maps store sentinels to status codes.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrIndexOutOfRange), errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrDuplicateName):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

// saveWarning tells a failed save, which keeps the change in memory, from a
// rejected change. ok is false only for rejections.
func saveWarning(err error) (warning string, ok bool) {
	if err == nil {
		return "", true
	}
	var saveErr *store.SaveError
	if errors.As(err, &saveErr) {
		logger.Warn("Change kept in memory only", "error", saveErr)
		return saveErr.Error(), true
	}
	return "", false
}

// indexVar parses the 1-based {index} route variable into a 0-based index.
func indexVar(r *http.Request) (int, error) {
	n, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", mux.Vars(r)["index"])
	}
	return n - 1, nil
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
