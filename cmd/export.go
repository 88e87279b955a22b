package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kozaktomas/adproof/internal/compositor"
	"github.com/kozaktomas/adproof/internal/config"
	"github.com/kozaktomas/adproof/internal/constants"
	"github.com/kozaktomas/adproof/internal/database"
	"github.com/kozaktomas/adproof/internal/database/postgres"
	"github.com/kozaktomas/adproof/internal/httpclient"
	"github.com/kozaktomas/adproof/internal/storage"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export print composites for ads",
	Long: `Render the selected version of every matching ad at print resolution and
write the composite next to the untouched original image.

Ads without a selected version are skipped. A failing ad is reported and
does not stop the batch.

Examples:
  adproof export --out ./print
  adproof export --out ./print --status approved,exported --format jpeg
  adproof export --out ./print --issue 7f3c... --mark-exported --json`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("out", "", "Output directory (required)")
	exportCmd.Flags().StringSlice("status", []string{string(database.AdStatusApproved)}, "Ad statuses to export")
	exportCmd.Flags().String("issue", "", "Only export ads of this publication issue")
	exportCmd.Flags().String("format", "png", "Composite format: png or jpeg")
	exportCmd.Flags().Int("concurrency", 0, "Parallel exports (default EXPORT_CONCURRENCY)")
	exportCmd.Flags().Bool("mark-exported", false, "Move exported ads to the exported status")
	exportCmd.Flags().Bool("json", false, "Output as JSON instead of progress bar")
	_ = exportCmd.MarkFlagRequired("out")
}

// ExportItem is the outcome for one ad
type ExportItem struct {
	AdID      string `json:"ad_id"`
	VersionID string `json:"version_id,omitempty"`
	Composite string `json:"composite,omitempty"`
	Original  string `json:"original,omitempty"`
	Skipped   bool   `json:"skipped,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ExportResult summarizes a batch export
type ExportResult struct {
	Success       bool         `json:"success"`
	AdsMatched    int          `json:"ads_matched"`
	Exported      int          `json:"exported"`
	Skipped       int          `json:"skipped"`
	Errors        int          `json:"errors"`
	Items         []ExportItem `json:"items"`
	DurationMs    int64        `json:"duration_ms"`
	DurationHuman string       `json:"duration_human,omitempty"`
}

// adExporter renders and writes the export artifacts of single ads.
type adExporter struct {
	catalog      database.CatalogStore
	ads          database.AdStore
	versions     database.VersionStore
	exporter     *compositor.Exporter
	dir          string
	format       compositor.Format
	markExported bool
}

func parseStatuses(values []string) ([]database.AdStatus, error) {
	statuses := make([]database.AdStatus, 0, len(values))
	for _, v := range values {
		s := database.AdStatus(v)
		if !s.IsValid() {
			return nil, fmt.Errorf("invalid status %q", v)
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

// originalExtension maps an image content type to a file extension.
func originalExtension(contentType string) string {
	format, ok := strings.CutPrefix(contentType, "image/")
	switch {
	case !ok || format == "":
		return "bin"
	case format == "jpeg":
		return "jpg"
	}
	return format
}

func (e *adExporter) exportAd(ctx context.Context, ad database.Ad) (ExportItem, error) {
	item := ExportItem{AdID: ad.ID}

	version, err := e.versions.GetSelectedVersion(ctx, ad.ID)
	if err != nil {
		return item, fmt.Errorf("getting selected version: %w", err)
	}
	if version == nil || version.PreviewURL == "" {
		item.Skipped = true
		return item, nil
	}
	item.VersionID = version.ID

	var pub *database.Publication
	if ad.PublicationID != "" {
		if pub, err = e.catalog.GetPublication(ctx, ad.PublicationID); err != nil {
			return item, fmt.Errorf("getting publication: %w", err)
		}
	}

	res, err := e.exporter.Export(ctx, compositor.Request{
		PreviewURL: version.PreviewURL,
		Doc:        ad.DocumentSpec(pub),
		Transform:  version.ImageTransform,
		Format:     e.format,
	})
	if err != nil {
		return item, err
	}

	item.Composite = filepath.Join(e.dir, compositor.Filename(ad.ClientName, ad.AdName, version.ID, constants.CompositeSuffix, e.format.Extension()))
	item.Original = filepath.Join(e.dir, compositor.Filename(ad.ClientName, ad.AdName, version.ID, constants.OriginalSuffix, originalExtension(res.OriginalContentType)))
	if err := os.WriteFile(item.Composite, res.Composite, 0o644); err != nil {
		return item, fmt.Errorf("writing composite: %w", err)
	}
	if err := os.WriteFile(item.Original, res.Original, 0o644); err != nil {
		return item, fmt.Errorf("writing original: %w", err)
	}

	if e.markExported && ad.Status != database.AdStatusExported {
		if err := e.ads.UpdateAdStatus(ctx, ad.ID, database.AdStatusExported); err != nil {
			return item, fmt.Errorf("updating status: %w", err)
		}
	}
	return item, nil
}

// run exports every ad with the given parallelism. Per-ad failures are
// recorded on the item; only context cancellation stops the batch.
func (e *adExporter) run(ctx context.Context, ads []database.Ad, concurrency int, bar *progressbar.ProgressBar) ([]ExportItem, error) {
	items := make([]ExportItem, len(ads))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for i, ad := range ads {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			item, err := e.exportAd(egCtx, ad)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				item.Error = err.Error()
			}
			items[i] = item
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return items, err
	}
	return items, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	startTime := time.Now()
	jsonOutput := mustGetBool(cmd, "json")
	dir := mustGetString(cmd, "out")

	cfg := config.Load()
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	statuses, err := parseStatuses(mustGetStringSlice(cmd, "status"))
	if err != nil {
		return err
	}
	format, err := compositor.ParseFormat(mustGetString(cmd, "format"))
	if err != nil {
		return err
	}
	concurrency := mustGetInt(cmd, "concurrency")
	if concurrency <= 0 {
		concurrency = cfg.Export.Concurrency
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	ctx := context.Background()
	e, err := newAdExporter(ctx, cfg, dir, format, mustGetBool(cmd, "mark-exported"))
	if err != nil {
		return err
	}

	ads, err := e.ads.ListAds(ctx, database.AdFilter{
		Statuses:           statuses,
		PublicationIssueID: mustGetString(cmd, "issue"),
	})
	if err != nil {
		return fmt.Errorf("listing ads: %w", err)
	}

	if len(ads) == 0 {
		result := ExportResult{Success: true, Items: []ExportItem{}}
		if jsonOutput {
			return outputJSON(result)
		}
		fmt.Println("No ads match the given filters.")
		return nil
	}

	if !jsonOutput {
		fmt.Printf("Exporting %d ads to %s\n\n", len(ads), dir)
	}

	var bar *progressbar.ProgressBar
	if !jsonOutput {
		bar = progressbar.NewOptions(len(ads),
			progressbar.OptionSetDescription("Exporting"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("ads"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}

	items, err := e.run(ctx, ads, concurrency, bar)
	if err != nil {
		return fmt.Errorf("export interrupted: %w", err)
	}
	if bar != nil {
		fmt.Println()
	}

	result := summarizeExport(items, time.Since(startTime))
	if jsonOutput {
		result.DurationHuman = ""
		return outputJSON(result)
	}
	printExportResult(result)
	return nil
}

func newAdExporter(ctx context.Context, cfg *config.Config, dir string, format compositor.Format, markExported bool) (*adExporter, error) {
	catalog, err := database.GetCatalogStore(ctx)
	if err != nil {
		return nil, err
	}
	ads, err := database.GetAdStore(ctx)
	if err != nil {
		return nil, err
	}
	versions, err := database.GetVersionStore(ctx)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewFileStore(cfg.Storage.Path, cfg.Storage.PublicURL)
	if err != nil {
		return nil, fmt.Errorf("opening file storage: %w", err)
	}
	client := httpclient.New(httpclient.Options{Timeout: time.Duration(cfg.Generate.TimeoutSeconds) * time.Second})
	loader := compositor.NewLoader(client, store)

	return &adExporter{
		catalog:      catalog,
		ads:          ads,
		versions:     versions,
		exporter:     compositor.NewExporter(loader, cfg.Editor.MaxBox()),
		dir:          dir,
		format:       format,
		markExported: markExported,
	}, nil
}

func summarizeExport(items []ExportItem, duration time.Duration) ExportResult {
	var exported, skipped, failed int
	for _, item := range items {
		switch {
		case item.Error != "":
			failed++
		case item.Skipped:
			skipped++
		default:
			exported++
		}
	}
	return ExportResult{
		Success:       failed == 0,
		AdsMatched:    len(items),
		Exported:      exported,
		Skipped:       skipped,
		Errors:        failed,
		Items:         items,
		DurationMs:    duration.Milliseconds(),
		DurationHuman: formatDuration(duration),
	}
}

func printExportResult(result ExportResult) {
	for _, item := range result.Items {
		if item.Error != "" {
			fmt.Printf("  FAILED %s: %s\n", item.AdID, item.Error)
		}
	}
	fmt.Printf("\nExport complete in %s\n", result.DurationHuman)
	fmt.Printf("  Ads matched: %d\n", result.AdsMatched)
	fmt.Printf("  Exported:    %d\n", result.Exported)
	fmt.Printf("  Skipped:     %d (no selected version)\n", result.Skipped)
	if result.Errors > 0 {
		fmt.Printf("  Errors:      %d\n", result.Errors)
	}
}
