// Entry point for the portfolio backend: the chat gateway HTTP server and
// the vector sync batch job.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zohaibasghar/portfolio-server/internal/domain/content"
	"github.com/zohaibasghar/portfolio-server/internal/domain/syncer"
	"github.com/zohaibasghar/portfolio-server/internal/infra/config"
	"github.com/zohaibasghar/portfolio-server/internal/infra/embedding"
	"github.com/zohaibasghar/portfolio-server/internal/infra/qdrant"
	"github.com/zohaibasghar/portfolio-server/internal/infra/sqlite"
	"github.com/zohaibasghar/portfolio-server/internal/server"
	"github.com/zohaibasghar/portfolio-server/internal/version"
)

func main() {
	log.SetOutput(os.Stderr)

	var configPath string

	rootCmd := &cobra.Command{
		Use:   "portfolio-server",
		Short: "Backend for the portfolio website: content API and AI chat gateway",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file (optional)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Embed all content rows and upsert them into the vector index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(configPath)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.String())
		},
	}

	rootCmd.AddCommand(serveCmd, syncCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig applies .env (when present) before reading the environment.
func loadConfig(configPath string) (config.Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("skipping .env: %v", err)
	}
	return config.Load(configPath)
}

func runServe(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	db, err := sqlite.NewDB(cfg.ContentDBPath)
	if err != nil {
		return err
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Host = cfg.Host
	srvCfg.Port = cfg.Port

	srv, err := server.New(db, cfg, srvCfg)
	if err != nil {
		db.Close()
		return err
	}

	// Serve until interrupted, then drain in-flight requests.
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(context.Background())
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

func runSync(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.QdrantURL == "" || cfg.MistralAPIKey == "" {
		return fmt.Errorf("sync requires QDRANT_URL and MISTRAL_API_KEY")
	}

	db, err := sqlite.NewDB(cfg.ContentDBPath)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	store := content.NewStore(db)
	if err := store.Init(context.Background()); err != nil {
		return err
	}

	embedder := embedding.NewClient(cfg.MistralAPIKey, "", "")
	vectors := qdrant.NewClient(cfg.QdrantURL, cfg.QdrantAPIKey, cfg.QdrantCollection)

	report, err := syncer.NewService(store, embedder, vectors).Sync(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("synced %d points across %d tables\n", report.Points, report.Tables)
	if len(report.FailedTables) > 0 {
		fmt.Printf("failed tables: %v\n", report.FailedTables)
	}
	return nil
}
