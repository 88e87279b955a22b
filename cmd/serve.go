package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/adproof/internal/compositor"
	"github.com/kozaktomas/adproof/internal/config"
	"github.com/kozaktomas/adproof/internal/database"
	"github.com/kozaktomas/adproof/internal/database/postgres"
	"github.com/kozaktomas/adproof/internal/generate"
	"github.com/kozaktomas/adproof/internal/httpclient"
	"github.com/kozaktomas/adproof/internal/logging"
	"github.com/kozaktomas/adproof/internal/storage"
	"github.com/kozaktomas/adproof/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Adproof web server.
The server exposes the JSON API, the public review endpoints, the stored
files and the browser editor used to position ad images.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8085, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to (overrides WEB_HOST)")
	serveCmd.Flags().Bool("ipv4", false, "Prefer IPv4 for outbound image and webhook requests")
}

// applyServeFlags lets explicitly set flags win over the environment.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("port") {
		cfg.Web.Port = mustGetInt(cmd, "port")
	}
	if cmd.Flags().Changed("host") {
		cfg.Web.Host = mustGetString(cmd, "host")
	}
}

// seedAdSizes upserts the embedded size presets into the catalog.
func seedAdSizes(ctx context.Context, store database.CatalogStore, presets []config.AdSizePreset) (int, error) {
	for i, p := range presets {
		px := p.Pixels()
		size := &database.AdSize{
			SizeID:   p.SizeID,
			Fraction: p.Fraction,
			Words:    p.Words,
			WidthIn:  p.WidthIn,
			HeightIn: p.HeightIn,
			DPI:      p.DPI,
			WidthPx:  px.Width,
			HeightPx: px.Height,
		}
		if err := store.UpsertAdSize(ctx, size); err != nil {
			return i, fmt.Errorf("seeding ad size %s: %w", p.SizeID, err)
		}
	}
	return len(presets), nil
}

// buildServeDeps creates the storage, image and webhook dependencies of the server.
func buildServeDeps(cfg *config.Config, preferIPv4 bool) (web.Deps, error) {
	store, err := storage.NewFileStore(cfg.Storage.Path, cfg.Storage.PublicURL)
	if err != nil {
		return web.Deps{}, fmt.Errorf("opening file storage: %w", err)
	}

	client := httpclient.New(httpclient.Options{
		PreferIPv4: preferIPv4,
		Timeout:    time.Duration(cfg.Generate.TimeoutSeconds) * time.Second,
	})
	loader := compositor.NewLoader(client, store)

	return web.Deps{
		Store:    store,
		Loader:   loader,
		Exporter: compositor.NewExporter(loader, cfg.Editor.MaxBox()),
		Generator: generate.NewClient(client, generate.Options{
			GenerateURL: cfg.Generate.WebhookURL,
			ExpandURL:   cfg.Generate.ExpandWebhookURL,
			Provider:    cfg.Generate.Provider,
		}),
	}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	applyServeFlags(cmd, cfg)
	log := logging.New(cfg.AppEnv)

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	fmt.Printf("Connecting to PostgreSQL database...\n")
	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	catalog, err := database.GetCatalogStore(ctx)
	if err != nil {
		return err
	}
	n, err := seedAdSizes(ctx, catalog, cfg.Presets.AdSizes)
	if err != nil {
		return err
	}
	log.Info().Int("count", n).Msg("ad size presets seeded")

	if !cfg.Generate.Enabled() {
		log.Warn().Msg("GENERATE_WEBHOOK_URL is not set, image generation is disabled")
	}

	deps, err := buildServeDeps(cfg, mustGetBool(cmd, "ipv4"))
	if err != nil {
		return err
	}
	server := web.NewServer(cfg, log, deps)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go shutdownOnSignal(ctx, sigChan, server, log)

	fmt.Printf("Starting Adproof on http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}

func shutdownOnSignal(ctx context.Context, sigChan <-chan os.Signal, server *web.Server, log zerolog.Logger) {
	<-sigChan
	fmt.Println("\nShutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}
