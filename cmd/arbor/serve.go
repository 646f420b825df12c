package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/presentation/tui"
	httpAdapter "github.com/aretw0/arbor/pkg/adapters/http"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long:  `Serves the tree as a JSON API over HTTP. Every change is written through to the configured store.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			port, _ := cmd.Flags().GetString("port")
			withMetrics, _ := cmd.Flags().GetBool("metrics")

			sigCtx := cli.NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()

			s, err := cli.Open(sigCtx, optionsFrom(cmd))
			if err != nil {
				return err
			}
			defer s.Close()

			opts := []httpAdapter.Option{httpAdapter.WithLogger(s.Logger)}
			if withMetrics {
				opts = append(opts, httpAdapter.WithMetricsHandler(promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{})))
			}

			srv := &http.Server{
				Addr:              ":" + port,
				Handler:           httpAdapter.NewHandler(s.Engine, opts...),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Channel to listen for errors coming from the listener.
			serverErrors := make(chan error, 1)

			go func() {
				tui.PrintBanner(cmd.ErrOrStderr(), termenv.NewOutput(os.Stderr).Profile, strings.TrimSpace(arbor.Version))
				s.Logger.Info("Starting arbor server", "address", srv.Addr, "store", s.Config.Store.Backend, "key", s.Config.Store.Key)
				serverErrors <- srv.ListenAndServe()
			}()

			// Blocking main and waiting for shutdown.
			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server error: %w", err)

			case <-sigCtx.Done():
				s.Logger.Info("Start shutdown", "signal", sigCtx.Signal())

				// Give outstanding requests a deadline for completion.
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := srv.Shutdown(ctx); err != nil {
					s.Logger.Warn("Graceful shutdown did not complete", "timeout", 5*time.Second, "error", err)
					if err := srv.Close(); err != nil {
						return fmt.Errorf("error killing server: %w", err)
					}
				}
				if err := s.Engine.Sync(ctx); err != nil {
					s.Logger.Warn("Final sync failed", "error", err)
				}
				s.Logger.Info("Arbor server stopped gracefully")
				return nil
			}
		},
	}
	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("metrics", false, "Expose Prometheus metrics on /metrics")
	return cmd
}
