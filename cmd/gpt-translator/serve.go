package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/hpn/gpt-translator/internal/config"
	"github.com/hpn/gpt-translator/internal/handler"
	"github.com/hpn/gpt-translator/internal/translator"
	"github.com/hpn/gpt-translator/internal/ui"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve translations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithTranslator(cmd, opts, func(ctx context.Context, cfg *config.Configuration, logger *slog.Logger, tr *translator.ChatGPTTranslator) error {
				ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				if cfg.Logging.Level != "debug" && !opts.verbose {
					gin.SetMode(gin.ReleaseMode)
				}

				logger.Info("serving translations",
					slog.String("source", tr.Source()),
					slog.String("target", tr.Target()),
					slog.String("model", tr.Model()),
				)

				srv := newServer(cfg, logger, tr)
				ui.PrintSettings(cmd.OutOrStdout(), tr.Source(), tr.Target(), tr.Model(), tr.BaseURL())
				ui.PrintServerInfo(cmd.OutOrStdout(), srv.Addr)

				err := serve(ctx, srv, cmd.OutOrStdout(), logger, time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
				if err == nil {
					ui.PrintGoodbye(cmd.OutOrStdout())
				}
				return err
			})
		},
	}
}

// newServer builds the HTTP server for tr.
func newServer(cfg *config.Configuration, logger *slog.Logger, tr translator.Translator) *http.Server {
	h := handler.NewTranslateHandler(tr, handler.WithLogger(logger))

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler.NewRouter(h, logger),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, out io.Writer, logger *slog.Logger, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	ui.PrintShutdown(out)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
