package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httpapi "storefront/internal/http"
	"storefront/internal/kv"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	return withApp(ctx, func(a *app) error {
		srv := httpapi.NewServer(a.svc, logger.Named("http"))
		httpServer := &http.Server{
			Addr:    addr,
			Handler: srv.Engine(),
		}

		var watcher *kv.Watcher
		f, isFile := a.backend.(*kv.File)
		if isFile && cfg.Storage.Watch {
			w, err := f.Watch()
			if err != nil {
				return err
			}
			watcher = w
		}

		g, gctx := errgroup.WithContext(ctx)
		if watcher != nil {
			g.Go(func() error {
				return watcher.Run(gctx, func() {
					// no coordination: our next write still overwrites theirs
					logger.Warn("store modified by another process", zap.String("path", f.Path()))
				})
			})
		}
		g.Go(func() error {
			logger.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.Bool("assistant_online", a.svc.Assistant.Online()))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
			defer cancel()
			logger.Info("shutting down")
			return httpServer.Shutdown(shutdownCtx)
		})

		return g.Wait()
	})
}
