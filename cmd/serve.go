package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/crossview/internal/config"
	"github.com/lehigh-university-libraries/crossview/internal/handlers"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var (
		port           string
		threshold      string
		dropSingletons string
		clusterAttr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API server",
		Long: `Loads the dataset once and serves dashboard sessions over a JSON API.

Each POST to /api/sessions creates an independent dashboard. Interactions are
posted to /api/sessions/{id}/actions and answered with the state of every panel.`,
		Example: `  # Start server on default port 8888
  crossview serve --dataset artworks.csv

  # Start server on custom port, folding categories under 10% into "Other"
  crossview serve --dataset artworks.parquet --port 3000 --threshold 0.1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, settings, err := flags.resolve(config.ResolveOptions{
				CLIPort:             port,
				CLIThreshold:        threshold,
				CLIDropSingletons:   dropSingletons,
				CLIClusterAttribute: clusterAttr,
			})
			if err != nil {
				return err
			}

			records, err := loadDataset(settings, -1)
			if err != nil {
				return err
			}

			handler := handlers.New(records, dashboardOptions(settings))

			// Set up routes
			mux := http.NewServeMux()
			handler.Routes(mux)

			addr := ":" + settings.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Crossview API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default 8888)")
	cmd.Flags().StringVar(&threshold, "threshold", "", "Fraction of artworks at or below which a category joins \"Other\" (default 0.05)")
	cmd.Flags().StringVar(&dropSingletons, "drop-singletons", "", "Hide subjects depicted only once (true|false)")
	cmd.Flags().StringVar(&clusterAttr, "cluster-attribute", "", "Attribute the cluster panel groups by (default movement)")

	return cmd
}
