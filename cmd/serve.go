package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vkadlec/photogate/internal/config"
	"github.com/vkadlec/photogate/internal/database/postgres"
	"github.com/vkadlec/photogate/internal/facedetect"
	"github.com/vkadlec/photogate/internal/pipeline"
	"github.com/vkadlec/photogate/internal/storage"
	"github.com/vkadlec/photogate/internal/web"
	"github.com/vkadlec/photogate/internal/web/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Photogate web server.
The server exposes the upload endpoint, the image gallery API and serves
locally stored files from the fallback tier.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// app bundles the wired dependencies shared by the serve and ingest commands.
type app struct {
	cfg          *config.Config
	pool         *postgres.Pool
	images       *postgres.ImageRepository
	writer       *storage.Writer
	orchestrator *pipeline.Orchestrator
	coordinator  *pipeline.Coordinator
}

func (a *app) close() {
	if err := a.pool.Close(); err != nil {
		fmt.Printf("Warning: failed to close database pool: %v\n", err)
	}
}

// missingEnv lists the unset environment variables a run needs. The
// database and face API back the validation checks themselves; S3 is only
// needed when uploads are actually stored.
func missingEnv(cfg *config.Config, withStorage bool) []string {
	var missing []string
	if cfg.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.FaceAPI.URL == "" {
		missing = append(missing, "FACE_API_URL")
	}
	if withStorage && cfg.S3.Endpoint == "" {
		missing = append(missing, "S3_ENDPOINT")
	}
	return missing
}

// buildApp loads the configuration and wires the database, the face
// detection client and the validation pipeline. With withStorage it also
// wires both storage tiers and the ingestion coordinator; without it the
// app can validate but not store.
func buildApp(ctx context.Context, withStorage bool) (*app, error) {
	cfg := config.Load()

	if missing := missingEnv(cfg, withStorage); len(missing) > 0 {
		return nil, fmt.Errorf("%s environment variable is required", missing[0])
	}

	fmt.Printf("Connecting to PostgreSQL database...\n")
	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	images := postgres.NewImageRepository(pool)

	detector, err := facedetect.NewHTTPDetector(cfg.FaceAPI.URL, cfg.FaceAPI.APIKey)
	if err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to initialize face detection client: %w", err)
	}
	orchestrator := pipeline.NewOrchestrator(detector, images, cfg.Checks.Checks)

	application := &app{
		cfg:          cfg,
		pool:         pool,
		images:       images,
		orchestrator: orchestrator,
	}
	if !withStorage {
		return application, nil
	}

	primary, err := storage.NewS3Store(&cfg.S3)
	if err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
	}
	if err := primary.EnsureBucket(ctx); err != nil {
		// The primary tier being down at startup is not fatal, the
		// fallback tier keeps uploads working.
		fmt.Printf("Warning: could not ensure S3 bucket %q: %v\n", cfg.S3.Bucket, err)
	}

	fallback, err := storage.NewLocalStore(cfg.Storage.UploadDir, "/uploads")
	if err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to initialize local storage: %w", err)
	}

	application.writer = storage.NewWriter(primary, fallback)
	application.coordinator = pipeline.NewCoordinator(orchestrator, application.writer)
	return application, nil
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		// An unparsable WEB_PORT keeps the flag value.
		if n, err := strconv.Atoi(envPort); err == nil && n > 0 {
			port = n
		}
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	application, err := buildApp(context.Background(), true)
	if err != nil {
		return err
	}
	defer application.close()

	port, host := resolveServeHostPort(cmd)

	imagesHandler := handlers.NewImagesHandler(application.images, application.coordinator, application.writer)
	server := web.NewServer(port, host, imagesHandler, application.cfg.Storage.UploadDir)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Photogate on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
