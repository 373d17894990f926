package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/colortune/internal/grading"
	"github.com/jmylchreest/colortune/internal/image"
	"github.com/jmylchreest/colortune/internal/params"
	"github.com/jmylchreest/colortune/internal/processor"
)

var (
	// Grade command flags
	gradeParams  string
	gradePreset  string
	gradeRegions string
	gradeOutput  string
	gradeFormat  string
	gradeQuality int

	// Preview command flags
	previewParams  string
	previewPreset  string
	previewRegions string
	previewOutput  string
	previewWidth   int
)

// gradeCmd represents the grade command
var gradeCmd = &cobra.Command{
	Use:   "grade <image>",
	Short: "Apply a colour grade to an image at full resolution",
	Long: `Apply a colour grade to an image and export the result.

The grade comes from a JSON parameter file or a named preset. Parameter
files are validated strictly: an out-of-range value is an error, never
silently clamped. Local adjustments may be layered on top from a JSON list
of regions with their own parameters; later regions win where they overlap.

Without --output the result is stored under the configured storage
directory and its path is printed. When the argument is a directory every
image directly inside it is graded, and --output names a directory.

Examples:
  # Grade with a built-in preset and write a JPEG
  colortune grade --preset golden-hour -o out.jpg photo.jpg

  # Grade with parameters from a file and export a 16-bit TIFF
  colortune grade --params grade.json --format tiff -o out.tif photo.png

  # Add local adjustments
  colortune grade --params grade.json --regions sky.json -o out.jpg photo.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runGrade,
}

// previewCmd represents the preview command
var previewCmd = &cobra.Command{
	Use:   "preview <image>",
	Short: "Render a downscaled preview of a colour grade",
	Long: `Render a colour grade onto a downscaled copy of an image.

Previews are never upscaled. The default width comes from the
preview_max_width setting.

Examples:
  colortune preview --preset noir photo.jpg
  colortune preview --params grade.json --width 400 -o preview.jpg photo.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	gradeCmd.Flags().StringVarP(&gradeParams, "params", "p", "", "parameter JSON file ('-' for stdin)")
	gradeCmd.Flags().StringVar(&gradePreset, "preset", "", "named preset (see 'colortune presets')")
	gradeCmd.Flags().StringVar(&gradeRegions, "regions", "", "local adjustments JSON file")
	gradeCmd.Flags().StringVarP(&gradeOutput, "output", "o", "", "output file (default: store under storage_dir)")
	gradeCmd.Flags().StringVarP(&gradeFormat, "format", "f", "", "export format (jpeg, png, tiff; default: from output extension)")
	gradeCmd.Flags().IntVar(&gradeQuality, "quality", 0, "JPEG quality 1-100 (default: jpeg_quality setting)")

	previewCmd.Flags().StringVarP(&previewParams, "params", "p", "", "parameter JSON file ('-' for stdin)")
	previewCmd.Flags().StringVar(&previewPreset, "preset", "", "named preset")
	previewCmd.Flags().StringVar(&previewRegions, "regions", "", "local adjustments JSON file")
	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "", "output file (default: store under storage_dir)")
	previewCmd.Flags().IntVarP(&previewWidth, "width", "w", 0, "maximum preview width (default: preview_max_width setting)")
}

// exportFormat picks the format from the flag, then the output extension,
// then JPEG.
func exportFormat(flag, output string) (image.Format, error) {
	if flag != "" {
		return image.ParseFormat(flag)
	}
	if output != "" && filepath.Ext(output) != "" {
		return image.FormatFromPath(output)
	}
	return image.FormatJPEG, nil
}

// runGrade executes the grade command.
func runGrade(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	cp, err := loadParams(gradeParams, gradePreset, a.cfg.PresetDir)
	if err != nil {
		return err
	}
	regions, err := loadRegions(gradeRegions)
	if err != nil {
		return err
	}
	output := gradeOutput
	if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
		output = ""
	}
	format, err := exportFormat(gradeFormat, output)
	if err != nil {
		return err
	}

	opts := image.EncodeOptions{Format: format, Quality: gradeQuality}
	if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
		return gradeDirectory(cmd, a, args[0], cp, regions, opts)
	}

	progress("Loading image: %s", args[0])
	img, err := a.loadImage(ctx, args[0])
	if err != nil {
		return err
	}
	progress("Grading %dx%d image", img.Width, img.Height)

	if gradeOutput == "" {
		out, err := a.service.Export(ctx, img, cp, regions, opts)
		if err != nil {
			return err
		}
		return reportOutput(cmd, a, out)
	}

	graded, data, err := a.service.Render(img, cp, regions, opts)
	if err != nil {
		return err
	}
	if err := writeFile(gradeOutput, data); err != nil {
		return err
	}
	progress("Wrote %s (%dx%d, %s)", gradeOutput, graded.Width, graded.Height, humanize.Bytes(uint64(len(data))))
	return nil
}

// gradeDirectory grades every image directly inside dir. With --output the
// results are written into that directory under their original base names.
func gradeDirectory(cmd *cobra.Command, a *app, dir string, cp params.ColorParams, regions []processor.LocalAdjustment, opts image.EncodeOptions) error {
	ctx := cmd.Context()
	files, err := image.ScanDirectoryForImages(dir)
	if err != nil {
		return err
	}
	progress("Grading %d images in %s", len(files), dir)

	for _, file := range files {
		img, err := a.loadImage(ctx, file)
		if err != nil {
			return err
		}
		if gradeOutput == "" {
			out, err := a.service.Export(ctx, img, cp, regions, opts)
			if err != nil {
				return fmt.Errorf("failed to grade %s: %w", file, err)
			}
			if err := reportOutput(cmd, a, out); err != nil {
				return err
			}
			continue
		}

		_, data, err := a.service.Render(img, cp, regions, opts)
		if err != nil {
			return fmt.Errorf("failed to grade %s: %w", file, err)
		}
		base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		target := filepath.Join(gradeOutput, base+opts.Format.Extension())
		if err := writeFile(target, data); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), target)
	}
	return nil
}

// runPreview executes the preview command.
func runPreview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	cp, err := loadParams(previewParams, previewPreset, a.cfg.PresetDir)
	if err != nil {
		return err
	}
	regions, err := loadRegions(previewRegions)
	if err != nil {
		return err
	}
	img, err := a.loadImage(ctx, args[0])
	if err != nil {
		return err
	}

	out, err := a.service.Preview(ctx, img, cp, regions, previewWidth)
	if err != nil {
		return err
	}
	if previewOutput == "" {
		return reportOutput(cmd, a, out)
	}

	data, err := a.store.Load(ctx, out.Key)
	if err != nil {
		return err
	}
	if err := writeFile(previewOutput, data); err != nil {
		return err
	}
	progress("Wrote %s (%dx%d, %s)", previewOutput, out.Width, out.Height, humanize.Bytes(uint64(out.Bytes)))
	return nil
}

// reportOutput prints where a stored render landed.
func reportOutput(cmd *cobra.Command, a *app, out grading.Output) error {
	path, err := a.store.Path(out.Key)
	if err != nil {
		return err
	}
	progress("Stored %s (%dx%d, %s)", out.Format, out.Width, out.Height, humanize.Bytes(uint64(out.Bytes)))
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
