// Package app assembles the pipeline and its collaborators from a
// config.Config. Both binaries share it.
package app

import (
	"fmt"
	"image"

	"github.com/ironsheep/signboard-mcp/internal/config"
	"github.com/ironsheep/signboard-mcp/internal/detection"
	"github.com/ironsheep/signboard-mcp/internal/httpx"
	"github.com/ironsheep/signboard-mcp/internal/langdetect"
	"github.com/ironsheep/signboard-mcp/internal/ocr"
	"github.com/ironsheep/signboard-mcp/internal/overlay"
	"github.com/ironsheep/signboard-mcp/internal/pipeline"
	"github.com/ironsheep/signboard-mcp/internal/server"
	"github.com/ironsheep/signboard-mcp/internal/speech"
	"github.com/ironsheep/signboard-mcp/internal/translate"
)

// App holds the wired components.
type App struct {
	Config     *config.Config
	Pipeline   *pipeline.Pipeline
	Options    pipeline.Options
	Extractor  *ocr.Extractor
	Compositor *overlay.Compositor
}

// New builds every component named by cfg. It fails if a provider is
// misconfigured (e.g. openai without an API key); it does not probe the
// network or Tesseract.
func New(cfg *config.Config) (*App, error) {
	strategy, err := detection.FromConfig(cfg.Pipeline.Region)
	if err != nil {
		return nil, fmt.Errorf("region detector: %w", err)
	}

	compositor, err := overlay.New(overlay.FromConfig(cfg.Pipeline.Overlay))
	if err != nil {
		return nil, fmt.Errorf("overlay: %w", err)
	}

	translator, err := translate.New(cfg.Translation, httpx.NewClient(cfg.Timeouts.Translation))
	if err != nil {
		return nil, fmt.Errorf("translator: %w", err)
	}

	synthesizer, err := speech.New(cfg.Speech, httpx.NewClient(cfg.Timeouts.Speech))
	if err != nil {
		return nil, fmt.Errorf("speech synthesizer: %w", err)
	}

	extractor := ocr.New(ocr.FromConfig(cfg.OCR))
	detector := langdetect.New()

	fb := cfg.Pipeline.Region.FallbackOrigin
	opts := pipeline.Options{
		Strategy:       strategy,
		FallbackOrigin: image.Pt(fb.X, fb.Y),
		BlurKernel:     cfg.Pipeline.Preprocess.BlurKernel,
		Timeouts: pipeline.Timeouts{
			Extraction:  cfg.Timeouts.Extraction,
			Detection:   cfg.Timeouts.Detection,
			Translation: cfg.Timeouts.Translation,
			Speech:      cfg.Timeouts.Speech,
		},
	}

	p, err := pipeline.New(opts, pipeline.Collaborators{
		Extractor:   extractor,
		Detector:    detector,
		Translator:  translator,
		Compositor:  compositor,
		Synthesizer: synthesizer,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		Config:     cfg,
		Pipeline:   p,
		Options:    opts,
		Extractor:  extractor,
		Compositor: compositor,
	}, nil
}

// OCRInfo reports the Tesseract status.
func (a *App) OCRInfo() interface{} {
	return a.Extractor.Info()
}

// ServerDeps returns the MCP server dependencies.
func (a *App) ServerDeps(version string) server.Deps {
	return server.Deps{
		Pipeline:       a.Pipeline,
		Strategy:       a.Options.Strategy,
		FallbackOrigin: a.Options.FallbackOrigin,
		BlurKernel:     a.Options.BlurKernel,
		Extractor:      a.Extractor,
		Compositor:     a.Compositor,
		OCRInfo:        a.OCRInfo,
		Version:        version,
	}
}
