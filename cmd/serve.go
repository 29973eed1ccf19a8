package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ginjaninja78/po-export/internal/supplier"
	"github.com/ginjaninja78/po-export/internal/web"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `The serve command exposes supplier search, order preview and order export over
HTTP. It stops gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}

func runServe(ctx context.Context) error {
	dir, closeDir, err := supplier.Open(ctx, appConfig.Suppliers)
	if err != nil {
		return fmt.Errorf("failed to open supplier directory: %w", err)
	}
	defer closeDir()

	server := web.NewServer(newConverter(), dir, appConfig.ExportOptions(), appConfig.Server)

	addr := appConfig.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	logger.Info("server stopped")
	return nil
}
