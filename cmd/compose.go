package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/adproof/internal/canvas"
	"github.com/kozaktomas/adproof/internal/compositor"
	"github.com/kozaktomas/adproof/internal/config"
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Render a print composite from a local image",
	Long: `Render a print-resolution composite from a local image file without a
database. The transform is given in the editor's zoom 1 box; omit --scale
to place the image the way the editor auto-fits it.

Examples:
  adproof compose --image ad.png --width 2550 --height 3300 --out proof.png
  adproof compose --image ad.jpg --width 1000 --height 500 --x 20 --y -10 --scale 1.5 --format jpeg`,
	RunE: runCompose,
}

func init() {
	rootCmd.AddCommand(composeCmd)

	composeCmd.Flags().String("image", "", "Source image file (required)")
	composeCmd.Flags().Int("width", 0, "Document width in pixels (required)")
	composeCmd.Flags().Int("height", 0, "Document height in pixels (required)")
	composeCmd.Flags().Int("dpi", 300, "Document resolution")
	composeCmd.Flags().Int("bleed", 0, "Bleed margin in pixels")
	composeCmd.Flags().Int("safe", 0, "Safe margin in pixels")
	composeCmd.Flags().Float64("x", 0, "Horizontal offset in editor pixels")
	composeCmd.Flags().Float64("y", 0, "Vertical offset in editor pixels")
	composeCmd.Flags().Float64("scale", 0, "Image scale; 0 uses the editor auto-fit")
	composeCmd.Flags().Float64("display-width", 0, "Editor box width at zoom 1; 0 derives it from EDITOR_MAX_WIDTH/HEIGHT")
	composeCmd.Flags().String("format", "", "Output format: png or jpeg (default from --out extension, else png)")
	composeCmd.Flags().String("out", "", "Output file (default <image>-composite.<ext>)")
	composeCmd.Flags().Bool("json", false, "Output the result as JSON")
	_ = composeCmd.MarkFlagRequired("image")
	_ = composeCmd.MarkFlagRequired("width")
	_ = composeCmd.MarkFlagRequired("height")
}

// ComposeResult describes a written composite
type ComposeResult struct {
	Output    string           `json:"output"`
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	Format    string           `json:"format"`
	Transform canvas.Transform `json:"transform"`
	Bytes     int              `json:"bytes"`
}

// composeFormat picks the format from the flag, then the output extension.
func composeFormat(flag, out string) (compositor.Format, error) {
	if flag == "" && out != "" {
		flag = strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
	}
	return compositor.ParseFormat(flag)
}

// composeOutput derives the output path next to the source image.
func composeOutput(image string, format compositor.Format) string {
	base := strings.TrimSuffix(image, filepath.Ext(image))
	return fmt.Sprintf("%s-composite.%s", base, format.Extension())
}

func runCompose(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	imagePath := mustGetString(cmd, "image")
	out := mustGetString(cmd, "out")
	jsonOutput := mustGetBool(cmd, "json")

	format, err := composeFormat(mustGetString(cmd, "format"), out)
	if err != nil {
		return err
	}
	if out == "" {
		out = composeOutput(imagePath, format)
	}

	doc := canvas.DocumentSpec{
		WidthPx:  mustGetInt(cmd, "width"),
		HeightPx: mustGetInt(cmd, "height"),
		DPI:      mustGetInt(cmd, "dpi"),
		BleedPx:  mustGetInt(cmd, "bleed"),
		SafePx:   mustGetInt(cmd, "safe"),
	}
	if err := doc.Validate(); err != nil {
		return err
	}

	req := compositor.Request{
		Doc:          doc,
		DisplayWidth: mustGetFloat64(cmd, "display-width"),
		Format:       format,
	}
	if scale := mustGetFloat64(cmd, "scale"); scale > 0 {
		req.Transform = &canvas.Transform{
			X:     mustGetFloat64(cmd, "x"),
			Y:     mustGetFloat64(cmd, "y"),
			Scale: scale,
		}
	} else if scale < 0 {
		return errors.New("--scale must not be negative")
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}
	src, err := compositor.Decode(data)
	if err != nil {
		return err
	}

	exporter := compositor.NewExporter(nil, cfg.Editor.MaxBox())
	res, err := exporter.Render(context.Background(), src, req)
	if err != nil {
		return fmt.Errorf("rendering composite: %w", err)
	}
	if err := os.WriteFile(out, res.Composite, 0o644); err != nil {
		return fmt.Errorf("writing composite: %w", err)
	}

	result := ComposeResult{
		Output:    out,
		Width:     res.Width,
		Height:    res.Height,
		Format:    string(format),
		Transform: res.Transform,
		Bytes:     len(res.Composite),
	}
	if jsonOutput {
		return outputJSON(result)
	}
	fmt.Printf("Wrote %s (%dx%d %s, %d bytes)\n", result.Output, result.Width, result.Height, result.Format, result.Bytes)
	fmt.Printf("  Transform: x=%.2f y=%.2f scale=%.3f\n", res.Transform.X, res.Transform.Y, res.Transform.Scale)
	return nil
}
