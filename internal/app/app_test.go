package app

import (
	"image"
	"testing"

	"github.com/ironsheep/signboard-mcp/internal/config"
	"github.com/ironsheep/signboard-mcp/internal/detection"
)

func TestNew_Defaults(t *testing.T) {
	a, err := New(config.Default())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if a.Pipeline == nil || a.Extractor == nil || a.Compositor == nil {
		t.Fatal("components not wired")
	}
	if _, ok := a.Options.Strategy.(detection.ContourStrategy); !ok {
		t.Errorf("default strategy: got %T, want ContourStrategy", a.Options.Strategy)
	}
	if a.Options.FallbackOrigin != image.Pt(30, 50) {
		t.Errorf("fallback origin: got %v", a.Options.FallbackOrigin)
	}
	if a.Options.Timeouts.Translation != a.Config.Timeouts.Translation {
		t.Error("translation timeout not carried over")
	}

	deps := a.ServerDeps("9.9.9")
	if deps.Version != "9.9.9" || deps.Pipeline == nil || deps.OCRInfo == nil {
		t.Errorf("server deps incomplete: %+v", deps)
	}
}

func TestNew_EdgeDensity(t *testing.T) {
	cfg := config.Default()
	cfg.Pipeline.Region.Strategy = "edge-density"

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := a.Options.Strategy.(detection.EdgeDensityStrategy); !ok {
		t.Errorf("strategy: got %T, want EdgeDensityStrategy", a.Options.Strategy)
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown strategy", func(c *config.Config) { c.Pipeline.Region.Strategy = "hough" }},
		{"bad colour", func(c *config.Config) { c.Pipeline.Overlay.TextColor = "crimson" }},
		{"openai translation without key", func(c *config.Config) {
			c.Translation.Provider = "openai"
			c.Translation.OpenAI.APIKey = ""
		}},
		{"elevenlabs without voice", func(c *config.Config) {
			c.Speech.Provider = "elevenlabs"
			c.Speech.ElevenLabs.APIKey = "key"
			c.Speech.ElevenLabs.VoiceID = ""
		}},
		{"even blur kernel", func(c *config.Config) { c.Pipeline.Preprocess.BlurKernel = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			if _, err := New(cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}
