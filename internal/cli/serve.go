package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gptbridge/internal/httpapi"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(opts *Options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = opts.cfg.Addr
			}
			a, closeAdapter, err := opts.newAdapter()
			if err != nil {
				return err
			}
			defer closeAdapter()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			httpapi.SetLogger(opts.log)
			httpapi.SetCORSOrigins(opts.cfg.CORSOrigins)
			httpapi.SetBaseContext(ctx)
			mux := httpapi.NewMux(httpapi.NewBatchService(a, opts.cfg.MaxOutLen))
			srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
			return serveUntilDone(ctx, srv, opts)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (defaults to config addr or :8080)")
	return cmd
}

// serveUntilDone runs srv until ctx ends, then shuts it down gracefully.
func serveUntilDone(ctx context.Context, srv *http.Server, opts *Options) error {
	errCh := make(chan error, 1)
	go func() {
		opts.log.Info().Str("addr", srv.Addr).Str("tool", opts.cfg.Tool).Msg("gptbridge listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		opts.log.Warn().Err(err).Msg("graceful shutdown error")
		return err
	}
	opts.log.Info().Msg("server stopped")
	return nil
}
