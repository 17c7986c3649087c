package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/booklet/internal/handlers"
	"github.com/spf13/cobra"
)

const sceneTTL = 2 * time.Hour

func newServeCmd() *cobra.Command {
	var (
		port        string
		extra       string
		uploadLimit int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for the booklet editor",
		Long: `Starts the booklet editor and catalog on the specified port.

Scenes live in memory only. A scene not touched for two hours is dropped,
and restarting the server drops them all.`,
		Example: `  # Start server on default port 8888
  booklet serve

  # Start server on custom port with extra catalog books
  booklet serve --port 3000 --catalog ./more-books.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalog(extra)
			if err != nil {
				return err
			}
			handler, err := handlers.New(handlers.Config{
				Catalog:     c,
				UploadLimit: int64(uploadLimit) << 20,
			})
			if err != nil {
				return err
			}

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			go expireScenes(cmd.Context(), handler)

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Booklet editor available", "addr", addr, "url", "http://localhost"+addr)
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

	cmd.Flags().StringVarP(&port, "port", "p", envOr("BOOKLET_PORT", "8888"), "Port to listen on")
	cmd.Flags().IntVar(&uploadLimit, "upload-limit", envInt("BOOKLET_UPLOAD_LIMIT_MB", handlers.DefaultUploadLimit>>20), "Maximum image upload size in MiB")
	addCatalogFlag(cmd, &extra)

	return cmd
}

func expireScenes(ctx context.Context, h *handlers.Handler) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := h.Scenes().Expire(sceneTTL); n > 0 {
				slog.Info("Expired idle scenes", "count", n, "open", h.Scenes().Len())
			}
		}
	}
}
