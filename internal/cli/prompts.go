package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/colortune/internal/prompts"
)

var (
	promptsDumpDir   string
	promptsDumpForce bool
)

// promptsCmd represents the prompts command
var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Inspect and customise the prompt templates sent to providers",
	Long: `colortune builds provider prompts from Go text/templates. A file with
the same name in prompt_dir (default ~/.config/colortune/prompts)
replaces the built-in template. Use 'prompts dump' to start from a copy.`,
	RunE: runPromptsList,
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the prompt templates",
	Args:  cobra.NoArgs,
	RunE:  runPromptsList,
}

var promptsDumpCmd = &cobra.Command{
	Use:   "dump [name...]",
	Short: "Copy built-in prompt templates into the override directory",
	Long: `Copy built-in prompt templates into the override directory so they can be
edited. With no names every template is copied. Existing files are kept
unless --force is set.`,
	RunE: runPromptsDump,
}

func init() {
	promptsDumpCmd.Flags().StringVar(&promptsDumpDir, "dir", "", "target directory (default: prompt_dir setting)")
	promptsDumpCmd.Flags().BoolVar(&promptsDumpForce, "force", false, "overwrite existing files")

	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsDumpCmd)
}

// runPromptsList executes the prompts list command.
func runPromptsList(cmd *cobra.Command, _ []string) error {
	names, err := prompts.List()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}

// runPromptsDump executes the prompts dump command.
func runPromptsDump(cmd *cobra.Command, args []string) error {
	dir := promptsDumpDir
	if dir == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir = cfg.PromptDir
	}
	if dir == "" {
		dir = prompts.DefaultCustomDir()
	}
	if dir == "" {
		return fmt.Errorf("no prompt directory: set --dir or prompt_dir")
	}

	names := args
	if len(names) == 0 {
		var err error
		if names, err = prompts.List(); err != nil {
			return err
		}
	}

	for _, name := range names {
		path, err := prompts.Dump(dir, name, promptsDumpForce)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}
