package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/address-precision/internal/batch"
	"github.com/sells-group/address-precision/internal/rowio"
	"github.com/sells-group/address-precision/internal/server"
)

var (
	servePort    int
	serveMapping string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP upload and processing service",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		mapping := rowio.ColumnMapping{}
		if serveMapping != "" {
			m, err := rowio.LoadMapping(serveMapping)
			if err != nil {
				return err
			}
			mapping = m
		}

		rules, err := loadRules()
		if err != nil {
			return err
		}
		client, cleanup, err := newGeocodeClient()
		if err != nil {
			return err
		}
		defer cleanup()

		orch := batch.New(client, rules, batch.Config{
			Concurrency:      cfg.Batch.Concurrency,
			CheckConsistency: cfg.Batch.CheckConsistency,
		})

		workDir := cfg.Server.WorkDir
		if workDir == "" {
			workDir = os.TempDir()
		}
		if err := os.MkdirAll(workDir, 0o755); err != nil {
			return eris.Wrap(err, "creating work dir")
		}

		port := cfg.Server.Port
		if servePort > 0 {
			port = servePort
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           server.New(orch, mapping, workDir).Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Error("shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("listening", zap.Int("port", port), zap.String("work_dir", workDir))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "http server")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default from config)")
	serveCmd.Flags().StringVar(&serveMapping, "mapping", "", "YAML column-mapping file for uploads")
	rootCmd.AddCommand(serveCmd)
}
