package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuemby/syncd/pkg/api"
	"github.com/cuemby/syncd/pkg/auth"
	"github.com/cuemby/syncd/pkg/crdt"
	"github.com/cuemby/syncd/pkg/fanout"
	"github.com/cuemby/syncd/pkg/health"
	"github.com/cuemby/syncd/pkg/log"
	"github.com/cuemby/syncd/pkg/metrics"
	"github.com/cuemby/syncd/pkg/rbac"
	"github.com/cuemby/syncd/pkg/store"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "syncd",
	Short:   "syncd - real-time document synchronization hub",
	Long:    `syncd accepts websocket connections from collaborative editing clients, gates them by vault role, and fans out incremental CRDT updates to every other subscriber of the same document.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("syncd version %s\nCommit: %s\nBuilt: %s\n", Version, Commit, BuildTime))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(serveCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sync hub",
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr, _ := cmd.Flags().GetString("listen")
		dbPath, _ := cmd.Flags().GetString("db-path")
		jwtSecret, _ := cmd.Flags().GetString("jwt-secret")

		if jwtSecret == "" {
			return fmt.Errorf("--jwt-secret (or SYNCD_JWT_SECRET) is required")
		}

		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}

		srv := api.NewServer(api.Config{
			Store:      st,
			Registry:   fanout.NewRegistry(),
			Resolver:   rbac.NewResolver(st),
			Verifier:   auth.NewVerifier(jwtSecret),
			DocFactory: crdt.New,
			Metrics:    metrics.NewRecorder(),
			Logger:     log.WithComponent("api"),
		}, health.NewStoreChecker(st, 2*time.Second))

		errCh := make(chan error, 1)
		go func() {
			if err := srv.Start(listenAddr); err != nil {
				errCh <- fmt.Errorf("server error: %w", err)
			}
		}()

		log.Logger.Info().Str("addr", listenAddr).Msg("syncd listening")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			log.Logger.Info().Msg("shutting down")
		case err := <-errCh:
			log.Logger.Error().Err(err).Msg("server error, shutting down")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Stop(ctx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		if err := st.Close(); err != nil {
			return fmt.Errorf("close store: %w", err)
		}

		log.Logger.Info().Msg("shutdown complete")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("listen", ":8443", "Address to listen on")
	serveCmd.Flags().String("db-path", envOr("SYNCD_DB_PATH", "./syncd.db"), "SQLite database path")
	serveCmd.Flags().String("jwt-secret", os.Getenv("SYNCD_JWT_SECRET"), "HS256 secret for bearer token verification")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
