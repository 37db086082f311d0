// Package config holds the tunable settings for the signboard pipeline and
// its collaborators.
//
// Settings are resolved in three layers, later layers winning:
//
//  1. Default() - the documented defaults listed on each field below
//  2. an optional YAML file (SIGNBOARD_CONFIG or the path given to Load)
//  3. environment variables (see applyEnv)
//
// The image heuristics (binarization threshold, blur kernel, font scale and
// colour, fallback origin) live in PipelineConfig so a deployment can tune
// them without touching pipeline code.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Timeouts    TimeoutConfig     `yaml:"timeouts"`
	OCR         OCRConfig         `yaml:"ocr"`
	Translation TranslationConfig `yaml:"translation"`
	Speech      SpeechConfig      `yaml:"speech"`
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// PipelineConfig holds the image-processing heuristics.
type PipelineConfig struct {
	Region     RegionConfig     `yaml:"region"`
	Preprocess PreprocessConfig `yaml:"preprocess"`
	Overlay    OverlayConfig    `yaml:"overlay"`
}

// RegionConfig tunes region-of-interest detection.
type RegionConfig struct {
	// Strategy selects the detector: "contour" (default) or "edge-density".
	Strategy string `yaml:"strategy"`

	// Threshold is the inverted binarization level on a 0-255 scale.
	// Pixels with luma <= Threshold are foreground. Default 150.
	Threshold int `yaml:"threshold"`

	// MinArea drops contours whose enclosed area is below this many pixels.
	// Default 0 keeps every contour.
	MinArea int `yaml:"min_area"`

	// FallbackOrigin is used as the overlay anchor when nothing is detected.
	// Default (30, 50).
	FallbackOrigin Point `yaml:"fallback_origin"`

	// MinConfidence is only used by the edge-density strategy. Default 0.3.
	MinConfidence float64 `yaml:"min_confidence"`
}

// Point is a YAML-friendly pixel coordinate.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// PreprocessConfig tunes the OCR preparation pass.
type PreprocessConfig struct {
	// BlurKernel is the median filter side length; odd, >= 1. Default 3.
	BlurKernel int `yaml:"blur_kernel"`
}

// OverlayConfig tunes how the translation is drawn back onto the image.
type OverlayConfig struct {
	// FontScale multiplies BaseFontSize. Default 0.9.
	FontScale float64 `yaml:"font_scale"`

	// BaseFontSize is the glyph size in pixels at scale 1.0. Default 30.
	BaseFontSize float64 `yaml:"base_font_size"`

	// TextColor is a "#RRGGBB" hex colour. Default "#FF0000".
	TextColor string `yaml:"text_color"`

	// BaselineOffset is how far above the region origin the baseline sits.
	// Default 10.
	BaselineOffset int `yaml:"baseline_offset"`

	// Thickness is the stroke weight in pixels. Default 2.
	Thickness int `yaml:"thickness"`
}

// TimeoutConfig bounds each collaborator call.
type TimeoutConfig struct {
	Extraction  time.Duration `yaml:"extraction"`
	Detection   time.Duration `yaml:"detection"`
	Translation time.Duration `yaml:"translation"`
	Speech      time.Duration `yaml:"speech"`
}

// OCRConfig configures the Tesseract collaborator.
type OCRConfig struct {
	Languages      string `yaml:"languages"`
	TessdataPrefix string `yaml:"tessdata_prefix"`
	PageSegMode    int    `yaml:"page_seg_mode"`
}

// TranslationConfig selects and configures the translator.
type TranslationConfig struct {
	Provider string       `yaml:"provider"` // "google" or "openai"
	Google   GoogleConfig `yaml:"google"`
	OpenAI   OpenAIConfig `yaml:"openai"`
}

// SpeechConfig selects and configures the speech synthesizer.
type SpeechConfig struct {
	Provider   string           `yaml:"provider"` // "google", "openai" or "elevenlabs"
	Google     GoogleConfig     `yaml:"google"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
}

// GoogleConfig points at the public Google translate web endpoints.
type GoogleConfig struct {
	BaseURL string `yaml:"base_url"`
}

// OpenAIConfig configures go-openai clients.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Voice   string `yaml:"voice"`
}

// ElevenLabsConfig configures the ElevenLabs text-to-speech API.
type ElevenLabsConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	VoiceID string `yaml:"voice_id"`
	ModelID string `yaml:"model_id"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Region: RegionConfig{
				Strategy:       "contour",
				Threshold:      150,
				FallbackOrigin: Point{X: 30, Y: 50},
				MinConfidence:  0.3,
			},
			Preprocess: PreprocessConfig{BlurKernel: 3},
			Overlay: OverlayConfig{
				FontScale:      0.9,
				BaseFontSize:   30,
				TextColor:      "#FF0000",
				BaselineOffset: 10,
				Thickness:      2,
			},
		},
		Timeouts: TimeoutConfig{
			Extraction:  30 * time.Second,
			Detection:   5 * time.Second,
			Translation: 15 * time.Second,
			Speech:      30 * time.Second,
		},
		OCR: OCRConfig{
			Languages:   "eng",
			PageSegMode: 3,
		},
		Translation: TranslationConfig{
			Provider: "google",
			Google:   GoogleConfig{BaseURL: "https://translate.googleapis.com"},
			OpenAI:   OpenAIConfig{Model: "gpt-4o-mini"},
		},
		Speech: SpeechConfig{
			Provider: "google",
			Google:   GoogleConfig{BaseURL: "https://translate.google.com"},
			OpenAI:   OpenAIConfig{Model: "tts-1", Voice: "alloy"},
			ElevenLabs: ElevenLabsConfig{
				BaseURL: "https://api.elevenlabs.io",
				ModelID: "eleven_multilingual_v2",
			},
		},
		Server: ServerConfig{
			Addr:           ":8080",
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   90 * time.Second,
			MaxUploadBytes: 20 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (if non-empty and
// present), and the environment. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("SIGNBOARD_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from environment variables.
func applyEnv(cfg *Config) {
	cfg.Logging.Level = getEnv("SIGNBOARD_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("SIGNBOARD_LOG_FORMAT", cfg.Logging.Format)

	cfg.Server.Addr = getEnv("SIGNBOARD_HTTP_ADDR", cfg.Server.Addr)
	cfg.Server.MaxUploadBytes = int64(getEnvInt("SIGNBOARD_MAX_UPLOAD_BYTES", int(cfg.Server.MaxUploadBytes)))

	cfg.Pipeline.Region.Strategy = getEnv("SIGNBOARD_REGION_STRATEGY", cfg.Pipeline.Region.Strategy)
	cfg.Pipeline.Region.Threshold = getEnvInt("SIGNBOARD_THRESHOLD", cfg.Pipeline.Region.Threshold)

	cfg.Timeouts.Extraction = getEnvDuration("SIGNBOARD_TIMEOUT_EXTRACTION", cfg.Timeouts.Extraction)
	cfg.Timeouts.Detection = getEnvDuration("SIGNBOARD_TIMEOUT_DETECTION", cfg.Timeouts.Detection)
	cfg.Timeouts.Translation = getEnvDuration("SIGNBOARD_TIMEOUT_TRANSLATION", cfg.Timeouts.Translation)
	cfg.Timeouts.Speech = getEnvDuration("SIGNBOARD_TIMEOUT_SPEECH", cfg.Timeouts.Speech)

	cfg.OCR.Languages = getEnv("SIGNBOARD_OCR_LANGUAGES", cfg.OCR.Languages)
	cfg.OCR.TessdataPrefix = getEnv("TESSDATA_PREFIX", cfg.OCR.TessdataPrefix)

	cfg.Translation.Provider = getEnv("SIGNBOARD_TRANSLATION_PROVIDER", cfg.Translation.Provider)
	cfg.Speech.Provider = getEnv("SIGNBOARD_SPEECH_PROVIDER", cfg.Speech.Provider)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey != "" {
		cfg.Translation.OpenAI.APIKey = apiKey
		cfg.Speech.OpenAI.APIKey = apiKey
	}
	cfg.Speech.ElevenLabs.APIKey = getEnv("ELEVENLABS_API_KEY", cfg.Speech.ElevenLabs.APIKey)
	cfg.Speech.ElevenLabs.VoiceID = getEnv("ELEVENLABS_VOICE_ID", cfg.Speech.ElevenLabs.VoiceID)
}

// Validate reports the first invalid setting it finds.
func (c *Config) Validate() error {
	r := c.Pipeline.Region
	switch r.Strategy {
	case "contour", "edge-density":
	default:
		return fmt.Errorf("unknown region strategy: %q", r.Strategy)
	}
	if r.Threshold < 0 || r.Threshold > 255 {
		return fmt.Errorf("region threshold %d outside 0-255", r.Threshold)
	}
	if r.MinArea < 0 {
		return errors.New("region min_area must be >= 0")
	}

	k := c.Pipeline.Preprocess.BlurKernel
	if k < 1 || k%2 == 0 {
		return fmt.Errorf("blur kernel must be a positive odd number, got %d", k)
	}

	o := c.Pipeline.Overlay
	if o.FontScale <= 0 || o.BaseFontSize <= 0 {
		return errors.New("overlay font_scale and base_font_size must be > 0")
	}
	if o.Thickness < 1 {
		return errors.New("overlay thickness must be >= 1")
	}
	if _, err := colorful.Hex(o.TextColor); err != nil {
		return fmt.Errorf("invalid overlay text_color %q: %w", o.TextColor, err)
	}

	t := c.Timeouts
	if t.Extraction <= 0 || t.Detection <= 0 || t.Translation <= 0 || t.Speech <= 0 {
		return errors.New("all collaborator timeouts must be > 0")
	}

	switch c.Translation.Provider {
	case "google", "openai":
	default:
		return fmt.Errorf("unknown translation provider: %q", c.Translation.Provider)
	}
	switch c.Speech.Provider {
	case "google", "openai", "elevenlabs":
	default:
		return fmt.Errorf("unknown speech provider: %q", c.Speech.Provider)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format: %q", c.Logging.Format)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
