// Package cli provides the command-line interface for colortune.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/colortune/internal/config"
	"github.com/jmylchreest/colortune/internal/version"
)

var (
	// Global flags
	globalConfigFile string
	globalProvider   string
	globalModel      string
	globalPluginPath string
	globalVerbose    bool
	globalQuiet      bool

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "colortune",
		Short: "AI-assisted colour grading for photographs",
		Long: `colortune grades photographs with a fixed, deterministic pipeline of
tone, colour, curve, HSL, split toning and effect adjustments.

Parameters come from JSON files, HCL presets, or a vision model that
analyses the photograph and proposes several distinct styles. Model
output is sanitised and validated before it ever touches pixels.`,
		Version:      version.Version,
		SilenceUsage: true,
	}
)

// NewRootCmd returns the configured command tree.
func NewRootCmd() *cobra.Command {
	return rootCmd
}

// normalizeFlagName accepts config-file spellings such as --plugin_path.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalVerbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&globalQuiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&globalConfigFile, "config", "", "config file (yaml, toml or json)")
	rootCmd.PersistentFlags().StringVar(&globalProvider, "provider", "", "vision provider (overrides COLORTUNE_PROVIDER)")
	rootCmd.PersistentFlags().StringVar(&globalModel, "model", "", "model name (default: the provider's default)")
	rootCmd.PersistentFlags().StringVar(&globalPluginPath, "plugin-path", "", "provider plugin executable, used with --provider plugin")

	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)
	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(sanitizeCmd)
	rootCmd.AddCommand(sceneCmd)
	rootCmd.AddCommand(stylesCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(samplesCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(promptsCmd)
}

// newLogger builds the root logger from the global verbosity flags.
func newLogger() hclog.Logger {
	level := hclog.Info
	switch {
	case globalQuiet:
		level = hclog.Error
	case globalVerbose:
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   version.Name,
		Output: os.Stderr,
		Level:  level,
	})
}

// loadConfig reads configuration with the global flag overrides applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Options{
		ConfigFile: globalConfigFile,
		Overrides: map[string]string{
			"provider":    globalProvider,
			"model":       globalModel,
			"plugin_path": globalPluginPath,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// progress prints a status line to stderr unless --quiet is set.
func progress(format string, args ...any) {
	if globalQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including build date, commit hash, and Go version.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), version.GetInfo())
		}
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("json", false, "print version information as JSON")
}
