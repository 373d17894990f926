package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/colortune/internal/grading"
	"github.com/jmylchreest/colortune/internal/provider"
)

var (
	// Styles command flags
	stylesCount    int
	stylesAvoid    []string
	stylesNoRender bool

	// Suggest command flags
	suggestProfile  string
	suggestCount    int
	suggestPrompt   string
	suggestNoRender bool
)

// sceneCmd represents the scene command
var sceneCmd = &cobra.Command{
	Use:   "scene <image>",
	Short: "Describe a photograph with the vision provider",
	Long: `Ask the configured vision provider to describe a photograph: scene
type, time of day, weather, dominant colours, mood, subjects and
composition. The image is downscaled to the preview width before sending.`,
	Args: cobra.ExactArgs(1),
	RunE: runScene,
}

// stylesCmd represents the styles command
var stylesCmd = &cobra.Command{
	Use:   "styles <image>",
	Short: "Generate distinct colour grading styles for a photograph",
	Long: `Analyse a photograph and ask the vision provider for several colour
grades that differ along temperature, tonal character, chroma strategy
and split-tone harmony.

Every candidate is sanitised and validated. Candidates that still fail
validation are listed under "rejected". A preview of each surviving
candidate is stored under the storage directory unless --no-render is set.

Examples:
  colortune styles photo.jpg
  colortune styles -n 3 --avoid "Golden Hour,Teal & Orange" photo.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runStyles,
}

// profileCmd represents the profile command
var profileCmd = &cobra.Command{
	Use:   "profile <selections.json>",
	Short: "Summarise a user's taste from past style selections",
	Long: `Read a JSON list of style discovery rounds, each with the offered
options and the one the user picked, and ask the provider for a style
profile. The call sends no image.`,
	Args: cobra.ExactArgs(1),
	RunE: runProfile,
}

// suggestCmd represents the suggest command
var suggestCmd = &cobra.Command{
	Use:   "suggest <image>",
	Short: "Generate grading suggestions personalised to a style profile",
	Long: `Ask the vision provider for grades suited to a photograph and to a
style profile produced by 'colortune profile'. Without --profile the
suggestions are not personalised.

Examples:
  colortune profile selections.json > profile.json
  colortune suggest --profile profile.json --prompt "keep skin tones natural" photo.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func init() {
	stylesCmd.Flags().IntVarP(&stylesCount, "count", "n", 0, "number of styles (default: style_count setting)")
	stylesCmd.Flags().StringSliceVar(&stylesAvoid, "avoid", nil, "style names to steer away from")
	stylesCmd.Flags().BoolVar(&stylesNoRender, "no-render", false, "skip rendering candidate previews")

	suggestCmd.Flags().StringVar(&suggestProfile, "profile", "", "style profile JSON file")
	suggestCmd.Flags().IntVarP(&suggestCount, "count", "n", 0, "number of suggestions (default: suggestion_count setting)")
	suggestCmd.Flags().StringVar(&suggestPrompt, "prompt", "", "extra instructions for the provider")
	suggestCmd.Flags().BoolVar(&suggestNoRender, "no-render", false, "skip rendering suggestion previews")
}

// withProvider builds an app with the configured provider and closes it
// when fn returns.
func withProvider(ctx context.Context, fn func(a *app) error) error {
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}

// runScene executes the scene command.
func runScene(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withProvider(ctx, func(a *app) error {
		img, err := a.loadImage(ctx, args[0])
		if err != nil {
			return err
		}
		progress("Analysing scene with %s...", a.cfg.Provider)
		scene, err := a.service.AnalyzeScene(ctx, img)
		if err != nil {
			return explainAIError(a, err)
		}
		return writeJSON(cmd.OutOrStdout(), scene)
	})
}

// runStyles executes the styles command.
func runStyles(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withProvider(ctx, func(a *app) error {
		img, err := a.loadImage(ctx, args[0])
		if err != nil {
			return err
		}

		count := stylesCount
		if count == 0 {
			count = a.cfg.StyleCount
		}
		progress("Generating %d styles with %s...", count, a.cfg.Provider)
		result, err := a.service.GenerateStyles(ctx, img, grading.StyleRequest{
			Count:  count,
			Avoid:  stylesAvoid,
			Render: !stylesNoRender,
		})
		if err != nil {
			return explainAIError(a, err)
		}
		if !result.Diversity.Passed {
			progress("Warning: styles are not very different (%s)", result.Diversity)
		}
		return writeJSON(cmd.OutOrStdout(), result)
	})
}

// runProfile executes the profile command.
func runProfile(cmd *cobra.Command, args []string) error {
	var selections []provider.Selection
	if err := readJSON(args[0], &selections); err != nil {
		return err
	}

	ctx := cmd.Context()
	return withProvider(ctx, func(a *app) error {
		progress("Analysing %d selections with %s...", len(selections), a.cfg.Provider)
		profile, err := a.service.AnalyzePreferences(ctx, selections)
		if err != nil {
			return explainAIError(a, err)
		}
		return writeJSON(cmd.OutOrStdout(), profile)
	})
}

// runSuggest executes the suggest command.
func runSuggest(cmd *cobra.Command, args []string) error {
	var profile *provider.StyleProfile
	if suggestProfile != "" {
		profile = &provider.StyleProfile{}
		if err := readJSON(suggestProfile, profile); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	return withProvider(ctx, func(a *app) error {
		img, err := a.loadImage(ctx, args[0])
		if err != nil {
			return err
		}

		count := suggestCount
		if count == 0 {
			count = a.cfg.SuggestionCount
		}
		progress("Generating %d suggestions with %s...", count, a.cfg.Provider)
		result, err := a.service.GenerateSuggestions(ctx, img, profile, provider.SuggestionOptions{
			Count:        count,
			CustomPrompt: suggestPrompt,
		}, !suggestNoRender)
		if err != nil {
			return explainAIError(a, err)
		}
		return writeJSON(cmd.OutOrStdout(), result)
	})
}

// explainAIError logs the raw response preview of an unparseable reply
// before returning the error.
func explainAIError(a *app, err error) error {
	var aerr *provider.AIResponseError
	if errors.As(err, &aerr) {
		a.logger.Debug("unparseable provider response", "preview", aerr.Preview)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		a.logger.Error("provider call timed out", "timeout", a.cfg.AITimeout)
	}
	return err
}
