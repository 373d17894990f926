package cli

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/colortune/internal/config"
	"github.com/jmylchreest/colortune/internal/provider"
	"github.com/jmylchreest/colortune/internal/provider/registry"
)

// providersCmd represents the providers command
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List vision providers and whether they are configured",
	Long: `List the vision providers colortune can use, their default models and
whether credentials are configured. The active provider is marked with *.

Keys are read from COLORTUNE_<NAME>_API_KEY or the vendor's usual variable
(OPENAI_API_KEY, ANTHROPIC_API_KEY, GOOGLE_API_KEY, DEEPSEEK_API_KEY,
GLM_API_KEY, DASHSCOPE_API_KEY). The plugin provider runs an external
executable set with --plugin-path or COLORTUNE_PLUGIN_PATH.`,
	Args: cobra.NoArgs,
	RunE: runProviders,
}

// runProviders executes the providers command.
func runProviders(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	_, err = providerTable(cfg).WriteTo(cmd.OutOrStdout())
	return err
}

func providerTable(cfg *config.Config) *Table {
	keys := cfg.APIKeys()
	table := NewTable("", "NAME", "DEFAULT MODEL", "STATUS")
	for _, name := range registry.AvailableProviders() {
		active := ""
		if name == cfg.Provider {
			active = "*"
		}

		status := "no API key"
		switch {
		case name == provider.NamePlugin && cfg.PluginPath != "":
			status = cfg.PluginPath
		case name == provider.NamePlugin:
			status = "no plugin path"
		case keys[name] != "":
			status = "ready"
		}

		model := registry.DefaultModel(name)
		if name == cfg.Provider && cfg.Model != "" {
			model = cfg.Model
		}
		if model == "" {
			model = "-"
		}
		table.AddRow(active, name, model, status)
	}
	return table
}
