package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsheet/pkg/renderers/web"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *cli) *cobra.Command {
	var addr string
	var templates string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve every configured form over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, err := web.New(a.app.Engine, a.cfg.Definitions(),
				web.WithLogger(a.logger),
				web.WithTemplatesDir(templates),
			)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			return listen(cmd.Context(), a.logger, addr, srv.Handler())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to server.addr)")
	cmd.Flags().StringVar(&templates, "templates", "", "directory overriding the built-in page templates")
	return cmd
}

// listen serves handler until ctx is cancelled, then drains open requests.
func listen(ctx context.Context, logger *zap.Logger, addr string, handler http.Handler) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	return httpSrv.Shutdown(shutdownCtx)
}
