// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cf-worker-cli/internal/api"
	"cf-worker-cli/internal/logger"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API for cfw",
		Long: `Starts an HTTP server exposing the accounts, script sources and deployments as a JSON API.
There is no authentication; the default address only listens on loopback.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			router := api.NewServer(application.Session, application.Client, application.Client.Endpoint()).NewRouter()
			return runWebServer(cmd.Context(), cmd, addr, router)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	return cmd
}

// runWebServer serves until ctx is cancelled, then shuts down gracefully.
func runWebServer(ctx context.Context, cmd *cobra.Command, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	statusColor.Fprintf(cmd.OutOrStdout(), "Starting web server on %s\n", identifierColor.Sprint("http://"+addr))
	logger.Info("API server listening", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web server shutdown: %w", err)
	}
	return nil
}
