package cli

import (
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/colortune/internal/samples"
)

var samplesOutput string

// samplesCmd represents the samples command
var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Render the synthetic sample scenes used for style discovery",
	Long: `Render the built-in sample scenes to JPEG files. Scenes are painted
procedurally from a small palette and are identical on every run, so
existing files are reused.

Examples:
  colortune samples
  colortune samples --out ./samples`,
	Args: cobra.NoArgs,
	RunE: runSamples,
}

func init() {
	samplesCmd.Flags().StringVarP(&samplesOutput, "out", "o", "", "output directory (default: <storage_dir>/samples)")
}

// runSamples executes the samples command.
func runSamples(cmd *cobra.Command, _ []string) error {
	dir := samplesOutput
	if dir == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir = filepath.Join(cfg.StorageDir, "samples")
	}

	cache := samples.NewCache(dir, newLogger().Named("samples"))
	paths, err := cache.EnsureAll()
	if err != nil {
		return err
	}

	table := NewTable("ID", "LABEL", "SIZE", "PATH")
	for i, s := range samples.Scenes() {
		size := "-"
		if info, err := os.Stat(paths[i]); err == nil {
			size = humanize.Bytes(uint64(info.Size())) // #nosec G115 - file sizes are non-negative
		}
		table.AddRow(s.ID, s.Label, size, paths[i])
	}
	_, err = table.WriteTo(cmd.OutOrStdout())
	return err
}
