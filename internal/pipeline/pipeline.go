// Package pipeline sequences a sign photograph through region detection,
// OCR preparation, text extraction, language detection, translation, overlay
// and speech synthesis.
//
// A run is all-or-nothing: Run returns either a complete *Outcome or a
// *Failure naming the reason and the last state reached. Nothing is retried.
// Only language detection may fail without ending the run; its result is
// then recorded as "unknown".
//
// Each collaborator call gets its own deadline derived from the caller's
// context. Collaborators must honour context cancellation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/ironsheep/signboard-mcp/internal/detection"
	"github.com/ironsheep/signboard-mcp/internal/imaging"
	"github.com/ironsheep/signboard-mcp/internal/logging"
	"github.com/ironsheep/signboard-mcp/internal/metrics"
	"github.com/ironsheep/signboard-mcp/internal/translate"
)

// UnknownLanguage is recorded when language detection fails.
const UnknownLanguage = "unknown"

// TextExtractor recognizes text in a prepared single-channel image. An empty
// result is not an error.
type TextExtractor interface {
	ExtractText(ctx context.Context, img *image.Gray) (string, error)
}

// LanguageDetector identifies the language of text.
type LanguageDetector interface {
	DetectLanguage(ctx context.Context, text string) (string, error)
}

// Translator translates text into a target language code.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// SpeechSynthesizer produces MP3 audio of text spoken in lang.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// Compositor draws text onto a copy of an image.
type Compositor interface {
	Render(original image.Image, origin image.Point, text string) (*image.NRGBA, error)
}

// Timeouts bounds each collaborator call. Zero means no extra deadline
// beyond the caller's context.
type Timeouts struct {
	Extraction  time.Duration
	Detection   time.Duration
	Translation time.Duration
	Speech      time.Duration
}

// Options holds the local image-stage settings.
type Options struct {
	Strategy       detection.Strategy
	FallbackOrigin image.Point
	BlurKernel     int
	Timeouts       Timeouts
}

// Collaborators are the external capabilities a Pipeline drives.
type Collaborators struct {
	Extractor   TextExtractor
	Detector    LanguageDetector
	Translator  Translator
	Compositor  Compositor
	Synthesizer SpeechSynthesizer
}

// ExtractionResult is what was read from the sign.
type ExtractionResult struct {
	Text     string                `json:"text"`
	Bounds   detection.BoundingBox `json:"bounds"`
	Origin   image.Point           `json:"origin"`
	Fallback bool                  `json:"fallback"`
}

// TranslationResult pairs the source text with its translation.
type TranslationResult struct {
	SourceText       string `json:"source_text"`
	DetectedLanguage string `json:"detected_language"`
	TargetLanguage   string `json:"target_language"`
	TranslatedText   string `json:"translated_text"`
}

// Outcome is the complete result of a successful run.
type Outcome struct {
	Extraction  ExtractionResult
	Translation TranslationResult
	Overlay     *image.NRGBA
	Audio       []byte
	AudioFormat string
}

// Report renders the plain-text summary offered for download.
func (o *Outcome) Report() string {
	return fmt.Sprintf("Extracted: %s\nTranslated: %s", o.Extraction.Text, o.Translation.TranslatedText)
}

// Pipeline runs the signboard state machine. It holds no per-run state and is
// safe for concurrent use if its collaborators are.
type Pipeline struct {
	opts Options
	c    Collaborators
}

// New validates opts and c and returns a Pipeline.
func New(opts Options, c Collaborators) (*Pipeline, error) {
	if opts.Strategy == nil {
		return nil, errors.New("region strategy is required")
	}
	if opts.BlurKernel < 1 || opts.BlurKernel%2 == 0 {
		return nil, fmt.Errorf("blur kernel must be a positive odd number, got %d", opts.BlurKernel)
	}
	if c.Extractor == nil || c.Detector == nil || c.Translator == nil || c.Compositor == nil || c.Synthesizer == nil {
		return nil, errors.New("all collaborators are required")
	}
	return &Pipeline{opts: opts, c: c}, nil
}

// RunBytes decodes an uploaded image and runs it.
func (p *Pipeline) RunBytes(ctx context.Context, data []byte, target string) (*Outcome, error) {
	if !translate.IsSupported(target) {
		return nil, p.finish(ctx, time.Now(), nil, unsupported(target))
	}

	img, err := imaging.Decode(data)
	if err != nil {
		return nil, p.finish(ctx, time.Now(), nil, fail(DecodeError, StateIdle, err))
	}
	return p.Run(ctx, img, target)
}

// Run processes img and produces an Outcome translated into target.
//
// target must be one of translate.SupportedLanguages. The returned error, if
// any, is always a *Failure.
func (p *Pipeline) Run(ctx context.Context, img image.Image, target string) (*Outcome, error) {
	start := time.Now()
	out, f := p.run(ctx, img, target)
	return out, p.finish(ctx, start, out, f)
}

// finish records the run's metrics and final log line.
func (p *Pipeline) finish(ctx context.Context, start time.Time, out *Outcome, f *Failure) error {
	log := logging.FromContext(ctx)
	elapsed := time.Since(start)

	if f != nil {
		metrics.RecordRun(string(f.Reason))
		log.Warn().
			Str("reason", string(f.Reason)).
			Str("state", string(f.State)).
			Bool("timeout", f.Timeout()).
			Err(f.Err).
			Dur("elapsed", elapsed).
			Msg("pipeline failed")
		return f
	}

	metrics.RecordRun("done")
	log.Info().
		Str("detected_language", out.Translation.DetectedLanguage).
		Str("target_language", out.Translation.TargetLanguage).
		Bool("fallback", out.Extraction.Fallback).
		Int("audio_bytes", len(out.Audio)).
		Dur("elapsed", elapsed).
		Msg("pipeline done")
	return nil
}

func (p *Pipeline) run(ctx context.Context, img image.Image, target string) (*Outcome, *Failure) {
	state := StateIdle

	if !translate.IsSupported(target) {
		return nil, unsupported(target)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fail(DecodeError, state, imaging.ErrEmptyImage)
	}

	// Idle -> RegionDetected
	t := time.Now()
	region, err := detection.Locate(img, p.opts.Strategy, p.opts.FallbackOrigin)
	if err != nil {
		return nil, fail(ProcessingError, state, err)
	}
	state = p.advance(ctx, state, StateRegionDetected, "region", t)

	// RegionDetected -> Preprocessed
	t = time.Now()
	gray, err := imaging.PrepareForOCR(region.Crop, p.opts.BlurKernel)
	if err != nil {
		return nil, fail(ProcessingError, state, err)
	}
	state = p.advance(ctx, state, StatePreprocessed, "preprocess", t)

	// Preprocessed -> Extracted
	t = time.Now()
	raw, err := callWithTimeout(ctx, p.opts.Timeouts.Extraction, func(ctx context.Context) (string, error) {
		return p.c.Extractor.ExtractText(ctx, gray)
	})
	if err != nil {
		return nil, fail(ExtractionError, state, err)
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, fail(NoTextDetected, state, nil)
	}
	state = p.advance(ctx, state, StateExtracted, "extraction", t)

	// Extracted -> DetectedAndTranslated
	detected := p.detectLanguage(ctx, text)

	t = time.Now()
	translated, err := callWithTimeout(ctx, p.opts.Timeouts.Translation, func(ctx context.Context) (string, error) {
		return p.c.Translator.Translate(ctx, text, target)
	})
	if err != nil {
		return nil, fail(TranslationError, state, err)
	}
	state = p.advance(ctx, state, StateDetectedAndTranslated, "translation", t)

	// DetectedAndTranslated -> Composited
	t = time.Now()
	overlay, err := p.c.Compositor.Render(img, region.Origin, translated)
	if err != nil {
		return nil, fail(ProcessingError, state, err)
	}
	state = p.advance(ctx, state, StateComposited, "overlay", t)

	// Composited -> Synthesized
	t = time.Now()
	audio, err := callWithTimeout(ctx, p.opts.Timeouts.Speech, func(ctx context.Context) ([]byte, error) {
		return p.c.Synthesizer.Synthesize(ctx, translated, target)
	})
	if err != nil {
		return nil, fail(SpeechSynthesisError, state, err)
	}
	state = p.advance(ctx, state, StateSynthesized, "speech", t)

	out := &Outcome{
		Extraction: ExtractionResult{
			Text:     text,
			Bounds:   region.Bounds,
			Origin:   region.Origin,
			Fallback: region.Fallback,
		},
		Translation: TranslationResult{
			SourceText:       text,
			DetectedLanguage: detected,
			TargetLanguage:   target,
			TranslatedText:   translated,
		},
		Overlay:     overlay,
		Audio:       audio,
		AudioFormat: "mp3",
	}
	p.advance(ctx, state, StateDone, "", time.Now())
	return out, nil
}

// detectLanguage never fails; errors degrade to UnknownLanguage.
func (p *Pipeline) detectLanguage(ctx context.Context, text string) string {
	t := time.Now()
	lang, err := callWithTimeout(ctx, p.opts.Timeouts.Detection, func(ctx context.Context) (string, error) {
		return p.c.Detector.DetectLanguage(ctx, text)
	})
	metrics.ObserveStage("language_detection", time.Since(t))

	if err == nil && strings.TrimSpace(lang) == "" {
		err = errors.New("detector returned an empty code")
	}
	if err != nil {
		metrics.RecordDetectionDegraded()
		logging.FromContext(ctx).Warn().
			Str("reason", string(LanguageDetectionDegraded)).
			Err(err).
			Msg("language detection failed, recording unknown")
		return UnknownLanguage
	}
	return lang
}

// advance logs a state transition and records the stage duration.
func (p *Pipeline) advance(ctx context.Context, from, to State, stage string, started time.Time) State {
	elapsed := time.Since(started)
	if stage != "" {
		metrics.ObserveStage(stage, elapsed)
	}
	logging.FromContext(ctx).Debug().
		Str("from", string(from)).
		Str("to", string(to)).
		Dur("elapsed", elapsed).
		Msg("pipeline state transition")
	return to
}

// callWithTimeout runs fn under a derived deadline when timeout > 0.
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fn(ctx)
}

func unsupported(target string) *Failure {
	return fail(UnsupportedLanguage, StateIdle, fmt.Errorf("%q is not a supported target language", target))
}
