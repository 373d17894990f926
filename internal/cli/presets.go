package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/colortune/internal/preset"
)

// presetsCmd represents the presets command
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List and inspect grading presets",
	Long: `Presets are named parameter sets written in HCL. The built-in presets
are always available; files ending in .hcl in the preset_dir directory
add to them and replace built-ins of the same name.

Example preset file:
  preset "warm-matte" {
    description = "Lifted blacks with a warm cast"
    color {
      temperature = 7200
    }
    effects {
      fade = 20
    }
  }`,
	RunE: runPresetsList,
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available presets",
	Args:  cobra.NoArgs,
	RunE:  runPresetsList,
}

var presetsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a preset's parameters as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresetsShow,
}

func init() {
	presetsCmd.AddCommand(presetsListCmd)
	presetsCmd.AddCommand(presetsShowCmd)
}

func loadPresets() (*preset.Library, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return preset.Load(cfg.PresetDir)
}

// runPresetsList executes the presets list command.
func runPresetsList(cmd *cobra.Command, _ []string) error {
	lib, err := loadPresets()
	if err != nil {
		return err
	}

	table := NewTable("NAME", "SOURCE", "DESCRIPTION")
	table.WrapColumn(2, 60)
	for _, p := range lib.List() {
		table.AddRow(p.Name, p.Source, p.Description)
	}
	_, err = table.WriteTo(cmd.OutOrStdout())
	return err
}

// runPresetsShow executes the presets show command.
func runPresetsShow(cmd *cobra.Command, args []string) error {
	lib, err := loadPresets()
	if err != nil {
		return err
	}
	p, err := lib.Get(args[0])
	if err != nil {
		return fmt.Errorf("%w (available: %v)", err, lib.Names())
	}
	return writeJSON(cmd.OutOrStdout(), p.Params)
}
