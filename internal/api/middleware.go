// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package api

import (
	"mime"
	"net/http"
	"net/url"
	"strings"

	"cf-worker-cli/internal/logger"
)

// sameOriginOnly rejects requests a browser sends on behalf of another site.
// Browsers always set Sec-Fetch-Site, and set Origin on scripted and form
// requests; clients such as curl send neither and pass.
func sameOriginOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Sec-Fetch-Site") {
		case "", "same-origin", "none":
		default:
			rejectRequest(w, r, http.StatusForbidden, "cross-site requests are not allowed")
			return
		}

		if origin := r.Header.Get("Origin"); origin != "" {
			u, err := url.Parse(origin)
			if err != nil || u.Host == "" || !strings.EqualFold(u.Host, r.Host) {
				rejectRequest(w, r, http.StatusForbidden, "cross-origin requests are not allowed")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireJSON only admits application/json bodies on state-changing methods.
// POST always carries a body here; PUT and DELETE are checked when they do.
func requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
		case http.MethodPut, http.MethodDelete:
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}
		default:
			next.ServeHTTP(w, r)
			return
		}

		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "application/json" {
			rejectRequest(w, r, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func rejectRequest(w http.ResponseWriter, r *http.Request, status int, msg string) {
	logger.Warn("API request rejected",
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"status", status)
	writeError(w, status, msg)
}
