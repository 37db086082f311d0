package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/ironsheep/signboard-mcp/internal/app"
	"github.com/ironsheep/signboard-mcp/internal/config"
	"github.com/ironsheep/signboard-mcp/internal/logging"
	"github.com/ironsheep/signboard-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("signboard-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("signboard-mcp - MCP server that reads, translates and speaks sign photos")
			fmt.Println()
			fmt.Println("Usage: signboard-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  SIGNBOARD_CONFIG=path.yaml          Optional YAML config file")
			fmt.Println("  SIGNBOARD_LOG_LEVEL=debug           Log level (logs go to stderr)")
			fmt.Println("  SIGNBOARD_TRANSLATION_PROVIDER=...  google or openai")
			fmt.Println("  SIGNBOARD_SPEECH_PROVIDER=...       google, openai or elevenlabs")
			fmt.Println("  OPENAI_API_KEY, ELEVENLABS_API_KEY  Provider credentials")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// A missing .env is normal
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr; stdout is for MCP protocol
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	logger.Debug().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Msg("signboard MCP server starting")

	a, err := app.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build pipeline")
	}
	logOCRStatus(logger, a)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(a.ServerDeps(Version), logger)
	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func logOCRStatus(logger zerolog.Logger, a *app.App) {
	info := a.Extractor.Info()
	if !info.Available {
		logger.Warn().Str("error", info.Error).Msg("tesseract unavailable, text extraction will fail")
		return
	}
	logger.Debug().Str("version", info.Version).Str("languages", info.Languages).Msg("tesseract ready")
}
