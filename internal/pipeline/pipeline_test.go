package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ironsheep/signboard-mcp/internal/detection"
	"github.com/ironsheep/signboard-mcp/internal/overlay"
)

type stubExtractor struct {
	text  string
	err   error
	calls atomic.Int32
	got   image.Rectangle
}

func (s *stubExtractor) ExtractText(ctx context.Context, img *image.Gray) (string, error) {
	s.calls.Add(1)
	s.got = img.Bounds()
	return s.text, s.err
}

type stubDetector struct {
	lang  string
	err   error
	calls atomic.Int32
}

func (s *stubDetector) DetectLanguage(ctx context.Context, text string) (string, error) {
	s.calls.Add(1)
	return s.lang, s.err
}

type stubTranslator struct {
	text  string
	err   error
	block bool
	calls atomic.Int32
	input string
}

func (s *stubTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	s.calls.Add(1)
	s.input = text
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.text, s.err
}

type stubSynthesizer struct {
	audio []byte
	err   error
	calls atomic.Int32
}

func (s *stubSynthesizer) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	s.calls.Add(1)
	return s.audio, s.err
}

type countingCompositor struct {
	inner Compositor
	calls atomic.Int32
}

func (c *countingCompositor) Render(original image.Image, origin image.Point, text string) (*image.NRGBA, error) {
	c.calls.Add(1)
	return c.inner.Render(original, origin, text)
}

type fixture struct {
	extractor   *stubExtractor
	detector    *stubDetector
	translator  *stubTranslator
	compositor  *countingCompositor
	synthesizer *stubSynthesizer
	opts        Options
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	comp, err := overlay.New(overlay.Options{
		FontScale:      0.9,
		BaseFontSize:   30,
		Color:          "#FF0000",
		BaselineOffset: 10,
		Thickness:      2,
	})
	if err != nil {
		t.Fatalf("overlay.New failed: %v", err)
	}

	return &fixture{
		extractor:   &stubExtractor{text: "EXIT"},
		detector:    &stubDetector{lang: "en"},
		translator:  &stubTranslator{text: "SORTIE"},
		compositor:  &countingCompositor{inner: comp},
		synthesizer: &stubSynthesizer{audio: []byte{1, 2, 3, 4, 5}},
		opts: Options{
			Strategy:       detection.ContourStrategy{Threshold: detection.DefaultThreshold},
			FallbackOrigin: image.Pt(30, 50),
			BlurKernel:     3,
		},
	}
}

func (f *fixture) pipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := New(f.opts, Collaborators{
		Extractor:   f.extractor,
		Detector:    f.detector,
		Translator:  f.translator,
		Compositor:  f.compositor,
		Synthesizer: f.synthesizer,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

// signImage is a white 200x100 image with a black 80x20 plate at (10,10).
func signImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			c := color.RGBA{255, 255, 255, 255}
			if x >= 10 && x < 90 && y >= 10 && y < 30 {
				c = color.RGBA{0, 0, 0, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func blankImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 120, 80))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

func requireFailure(t *testing.T, err error, reason Reason, state State) *Failure {
	t.Helper()
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("expected *Failure, got %T: %v", err, err)
	}
	if f.Reason != reason {
		t.Errorf("Reason = %s, want %s", f.Reason, reason)
	}
	if f.State != state {
		t.Errorf("State = %s, want %s", f.State, state)
	}
	return f
}

func TestRun_EndToEnd(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t)

	out, err := p.Run(context.Background(), signImage(), "fr")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	wantBox := detection.BoundingBox{X: 10, Y: 10, Width: 80, Height: 20}
	if out.Extraction.Bounds != wantBox {
		t.Errorf("Bounds = %+v, want %+v", out.Extraction.Bounds, wantBox)
	}
	if out.Extraction.Origin != image.Pt(10, 10) {
		t.Errorf("Origin = %v, want (10,10)", out.Extraction.Origin)
	}
	if out.Extraction.Fallback {
		t.Error("Fallback should be false when a region is found")
	}
	if f.extractor.got.Dx() != 80 || f.extractor.got.Dy() != 20 {
		t.Errorf("extractor saw %v, want an 80x20 crop", f.extractor.got)
	}

	tr := out.Translation
	if tr.SourceText != "EXIT" || tr.TranslatedText != "SORTIE" {
		t.Errorf("translation = %+v", tr)
	}
	if tr.DetectedLanguage != "en" || tr.TargetLanguage != "fr" {
		t.Errorf("languages = %s -> %s, want en -> fr", tr.DetectedLanguage, tr.TargetLanguage)
	}

	if b := out.Overlay.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("overlay size = %v, want 200x100", b)
	}
	if len(out.Audio) != 5 || out.AudioFormat != "mp3" {
		t.Errorf("audio = %d bytes %q, want 5 bytes mp3", len(out.Audio), out.AudioFormat)
	}
	if got := out.Report(); got != "Extracted: EXIT\nTranslated: SORTIE" {
		t.Errorf("Report() = %q", got)
	}
}

func TestRun_FallbackRegion(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t)

	out, err := p.Run(context.Background(), blankImage(), "es")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !out.Extraction.Fallback {
		t.Error("expected fallback on a blank image")
	}
	if out.Extraction.Origin != image.Pt(30, 50) {
		t.Errorf("Origin = %v, want fallback (30,50)", out.Extraction.Origin)
	}
	want := detection.BoundingBox{Width: 120, Height: 80}
	if out.Extraction.Bounds != want {
		t.Errorf("Bounds = %+v, want %+v", out.Extraction.Bounds, want)
	}
	if f.extractor.got.Dx() != 120 || f.extractor.got.Dy() != 80 {
		t.Errorf("extractor saw %v, want the whole image", f.extractor.got)
	}
}

func TestRun_TrimsExtractedText(t *testing.T) {
	f := newFixture(t)
	f.extractor.text = "  EXIT\n"
	p := f.pipeline(t)

	out, err := p.Run(context.Background(), signImage(), "fr")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out.Extraction.Text != "EXIT" || f.translator.input != "EXIT" {
		t.Errorf("text = %q, translator got %q", out.Extraction.Text, f.translator.input)
	}
}

func TestRun_NoTextDetected(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		f := newFixture(t)
		f.extractor.text = text
		p := f.pipeline(t)

		out, err := p.Run(context.Background(), signImage(), "fr")
		if out != nil {
			t.Errorf("%q: expected no outcome", text)
		}
		requireFailure(t, err, NoTextDetected, StatePreprocessed)
		if !errors.Is(err, ErrNoTextDetected) {
			t.Errorf("%q: errors.Is(err, ErrNoTextDetected) = false", text)
		}
		if n := f.translator.calls.Load(); n != 0 {
			t.Errorf("%q: translator called %d times", text, n)
		}
		if n := f.compositor.calls.Load(); n != 0 {
			t.Errorf("%q: compositor called %d times", text, n)
		}
		if n := f.synthesizer.calls.Load(); n != 0 {
			t.Errorf("%q: synthesizer called %d times", text, n)
		}
	}
}

func TestRun_ExtractionError(t *testing.T) {
	f := newFixture(t)
	f.extractor.err = errors.New("tesseract crashed")
	p := f.pipeline(t)

	_, err := p.Run(context.Background(), signImage(), "fr")
	requireFailure(t, err, ExtractionError, StatePreprocessed)
	if !errors.Is(err, ErrExtraction) {
		t.Error("errors.Is(err, ErrExtraction) = false")
	}
	if f.detector.calls.Load() != 0 || f.translator.calls.Load() != 0 {
		t.Error("no later stage should run after extraction fails")
	}
}

func TestRun_TranslationErrorSkipsSpeech(t *testing.T) {
	f := newFixture(t)
	f.translator.err = errors.New("503 from upstream")
	p := f.pipeline(t)

	_, err := p.Run(context.Background(), signImage(), "fr")
	fail := requireFailure(t, err, TranslationError, StateExtracted)
	if fail.Timeout() {
		t.Error("plain upstream error should not report Timeout")
	}
	if n := f.synthesizer.calls.Load(); n != 0 {
		t.Errorf("synthesizer called %d times after translation failure", n)
	}
	if n := f.compositor.calls.Load(); n != 0 {
		t.Errorf("compositor called %d times after translation failure", n)
	}
}

func TestRun_TranslationTimeout(t *testing.T) {
	f := newFixture(t)
	f.translator.block = true
	f.opts.Timeouts.Translation = 20 * time.Millisecond
	p := f.pipeline(t)

	start := time.Now()
	_, err := p.Run(context.Background(), signImage(), "fr")
	fail := requireFailure(t, err, TranslationError, StateExtracted)
	if !fail.Timeout() {
		t.Errorf("Timeout() = false, err = %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("cause should unwrap to context.DeadlineExceeded")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("run took %v, deadline not applied", elapsed)
	}
}

func TestRun_SpeechError(t *testing.T) {
	f := newFixture(t)
	f.synthesizer.err = errors.New("quota exceeded")
	p := f.pipeline(t)

	out, err := p.Run(context.Background(), signImage(), "fr")
	if out != nil {
		t.Error("a speech failure must not return a partial outcome")
	}
	requireFailure(t, err, SpeechSynthesisError, StateComposited)
	if !errors.Is(err, ErrSpeechSynthesis) {
		t.Error("errors.Is(err, ErrSpeechSynthesis) = false")
	}
}

func TestRun_DetectionDegrades(t *testing.T) {
	tests := []struct {
		name string
		lang string
		err  error
	}{
		{"error", "", errors.New("too short to classify")},
		{"empty code", "", nil},
		{"blank code", "  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.detector.lang = tt.lang
			f.detector.err = tt.err
			p := f.pipeline(t)

			out, err := p.Run(context.Background(), signImage(), "fr")
			if err != nil {
				t.Fatalf("detection failure must not end the run: %v", err)
			}
			if out.Translation.DetectedLanguage != UnknownLanguage {
				t.Errorf("DetectedLanguage = %q, want %q", out.Translation.DetectedLanguage, UnknownLanguage)
			}
			if f.translator.calls.Load() != 1 || f.synthesizer.calls.Load() != 1 {
				t.Error("translation and speech should still run")
			}
		})
	}
}

func TestRun_UnsupportedLanguage(t *testing.T) {
	for _, target := range []string{"", "xx", "FR", "klingon"} {
		f := newFixture(t)
		p := f.pipeline(t)

		_, err := p.Run(context.Background(), signImage(), target)
		requireFailure(t, err, UnsupportedLanguage, StateIdle)
		if !errors.Is(err, ErrUnsupportedLanguage) {
			t.Errorf("%q: errors.Is(err, ErrUnsupportedLanguage) = false", target)
		}
		if f.extractor.calls.Load() != 0 {
			t.Errorf("%q: extractor should not run", target)
		}
	}
}

func TestRun_EmptyImage(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t)

	_, err := p.Run(context.Background(), image.NewRGBA(image.Rect(0, 0, 0, 0)), "fr")
	requireFailure(t, err, DecodeError, StateIdle)
}

func TestRunBytes(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t)

	var buf bytes.Buffer
	if err := png.Encode(&buf, signImage()); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}

	out, err := p.RunBytes(context.Background(), buf.Bytes(), "de")
	if err != nil {
		t.Fatalf("RunBytes failed: %v", err)
	}
	if out.Translation.TargetLanguage != "de" {
		t.Errorf("TargetLanguage = %q, want de", out.Translation.TargetLanguage)
	}
}

func TestRunBytes_DecodeError(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t)

	_, err := p.RunBytes(context.Background(), []byte("definitely not an image"), "fr")
	requireFailure(t, err, DecodeError, StateIdle)
	if !errors.Is(err, ErrDecode) {
		t.Error("errors.Is(err, ErrDecode) = false")
	}
	if f.extractor.calls.Load() != 0 {
		t.Error("extractor should not run on undecodable input")
	}
}

func TestRunBytes_UnsupportedBeforeDecode(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t)

	_, err := p.RunBytes(context.Background(), []byte("garbage"), "xx")
	requireFailure(t, err, UnsupportedLanguage, StateIdle)
}

func TestNew_Validation(t *testing.T) {
	f := newFixture(t)
	full := Collaborators{
		Extractor:   f.extractor,
		Detector:    f.detector,
		Translator:  f.translator,
		Compositor:  f.compositor,
		Synthesizer: f.synthesizer,
	}

	tests := []struct {
		name string
		opts Options
		c    Collaborators
	}{
		{"no strategy", Options{BlurKernel: 3}, full},
		{"even kernel", Options{Strategy: f.opts.Strategy, BlurKernel: 4}, full},
		{"zero kernel", Options{Strategy: f.opts.Strategy}, full},
		{"missing collaborator", f.opts, Collaborators{Extractor: f.extractor}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opts, tt.c); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFailure(t *testing.T) {
	cause := errors.New("boom")
	f := fail(TranslationError, StateExtracted, cause)

	if got := f.Error(); got != "TranslationError: boom" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(f, cause) {
		t.Error("should unwrap to cause")
	}
	if errors.Is(f, ErrSpeechSynthesis) {
		t.Error("should not match another reason's sentinel")
	}

	noCause := fail(NoTextDetected, StatePreprocessed, nil)
	if got := noCause.Error(); got != "NoTextDetected: no text detected" {
		t.Errorf("Error() = %q", got)
	}

	r, ok := ReasonOf(f)
	if !ok || r != TranslationError {
		t.Errorf("ReasonOf = %s, %v", r, ok)
	}
	if _, ok := ReasonOf(cause); ok {
		t.Error("ReasonOf should reject plain errors")
	}
}
