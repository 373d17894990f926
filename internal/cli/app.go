package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/term"

	"github.com/jmylchreest/colortune/internal/config"
	"github.com/jmylchreest/colortune/internal/grading"
	"github.com/jmylchreest/colortune/internal/image"
	"github.com/jmylchreest/colortune/internal/params"
	"github.com/jmylchreest/colortune/internal/preset"
	"github.com/jmylchreest/colortune/internal/processor"
	"github.com/jmylchreest/colortune/internal/prompts"
	"github.com/jmylchreest/colortune/internal/provider"
	"github.com/jmylchreest/colortune/internal/provider/registry"
	"github.com/jmylchreest/colortune/internal/raster"
	"github.com/jmylchreest/colortune/internal/security"
	"github.com/jmylchreest/colortune/internal/storage"
	httputil "github.com/jmylchreest/colortune/internal/util/http"
	"github.com/jmylchreest/colortune/internal/util/imagecache"
)

// app carries what a command needs once configuration is loaded.
type app struct {
	cfg     *config.Config
	logger  hclog.Logger
	store   *storage.FileStore
	service *grading.Service
	close   func()
}

// newApp loads configuration and wires the grading service. When withAI is
// set the configured provider is created too; otherwise provider calls are
// unavailable and only local grading works.
func newApp(ctx context.Context, withAI bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger()

	store, err := storage.NewFileStore(cfg.StorageDir)
	if err != nil {
		return nil, err
	}

	proc := processor.New(
		processor.WithLogger(logger.Named("processor")),
		processor.WithPreviewWidth(cfg.PreviewMaxWidth),
	)

	a := &app{cfg: cfg, logger: logger, store: store, close: func() {}}

	var analyzer *provider.Analyzer
	if withAI {
		regCfg := cfg.Registry()
		regCfg.Logger = logger.Named("provider")
		prov, err := registry.New(ctx, regCfg)
		if err != nil {
			return nil, err
		}
		if c, ok := prov.(interface{ Close() }); ok {
			a.close = c.Close
		}
		logger.Debug("using provider", "name", prov.Name(), "model", cfg.Model)

		promptDir := cfg.PromptDir
		if promptDir == "" {
			promptDir = prompts.DefaultCustomDir()
		}
		analyzer = provider.NewAnalyzer(prov,
			provider.WithLogger(logger.Named("analyzer")),
			provider.WithPrompts(prompts.New(
				prompts.WithCustomDir(promptDir),
				prompts.WithLogger(logger.Named("prompts")),
			)),
		)
	}

	a.service = grading.New(analyzer, proc, store,
		grading.WithLogger(logger.Named("grading")),
		grading.WithMaxParallel(cfg.MaxParallel),
		grading.WithAITimeout(cfg.AITimeout),
		grading.WithJPEGQuality(cfg.JPEGQuality),
	)
	return a, nil
}

// loadImage reads a photograph from a file or URL. Downloads are cached
// in storage so repeated runs against one URL fetch it once.
func (a *app) loadImage(ctx context.Context, path string) (*raster.Image, error) {
	if image.IsURL(path) {
		if err := security.ValidateImageURL(path, a.cfg.AllowPrivateURLs); err != nil {
			return nil, err
		}
	} else if err := image.ValidateImagePath(path); err != nil {
		return nil, fmt.Errorf("invalid image path: %w", err)
	}

	cache := imagecache.New(a.store, httputil.FetchOptions{Timeout: time.Minute})
	img, err := image.NewSmartLoaderWithFetcher(cache).Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	a.logger.Debug("loaded image", "path", path, "width", img.Width, "height", img.Height)
	return img, nil
}

// loadParams resolves the grade to apply: a JSON file, a preset, or the
// identity when neither is given. File parameters are validated strictly
// and never sanitised.
func loadParams(paramsFile, presetName, presetDir string) (params.ColorParams, error) {
	switch {
	case paramsFile != "" && presetName != "":
		return params.ColorParams{}, fmt.Errorf("--params and --preset are mutually exclusive")
	case paramsFile != "":
		data, err := readInput(paramsFile)
		if err != nil {
			return params.ColorParams{}, err
		}
		p, err := params.Parse(data)
		if err != nil {
			return params.ColorParams{}, fmt.Errorf("invalid parameters in %s: %w", paramsFile, err)
		}
		return p, nil
	case presetName != "":
		lib, err := preset.Load(presetDir)
		if err != nil {
			return params.ColorParams{}, err
		}
		p, err := lib.Get(presetName)
		if err != nil {
			return params.ColorParams{}, err
		}
		return p.Params, nil
	default:
		return params.Identity(), nil
	}
}

// loadRegions decodes a JSON list of local adjustments.
func loadRegions(path string) ([]processor.LocalAdjustment, error) {
	if path == "" {
		return nil, nil
	}
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	var adjs []processor.LocalAdjustment
	if err := json.Unmarshal(data, &adjs); err != nil {
		return nil, fmt.Errorf("invalid local adjustments in %s: %w", path, err)
	}
	return adjs, nil
}

// readInput reads a file, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 - user supplied input file
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// readJSON decodes a JSON file into v.
func readJSON(path string, v any) error {
	data, err := readInput(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// writeJSON writes v to w, indented when w is a terminal.
func writeJSON(w io.Writer, v any) error {
	var (
		data []byte
		err  error
	)
	if isTerminal(w) {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 - file descriptors fit in int
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 - images are not secret
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
