// Command enlogic extracts engineering logic from documents and serves it
// to the CLI and MCP clients.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/enlogic/internal/adapters/driven/config/file"
	"github.com/custodia-labs/enlogic/internal/adapters/driving/cli"
	"github.com/custodia-labs/enlogic/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=X.Y.Z".
var version = "dev"

// configDirEnv overrides the configuration directory (default ~/.enlogic).
const configDirEnv = "ENLOGIC_CONFIG_DIR"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := file.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	configDir := os.Getenv(configDirEnv)
	config, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	settings, err := config.Settings()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	logger.Configure(settings.Log.Level, settings.Log.Format)

	promptDir := ""
	if configDir != "" {
		promptDir = filepath.Join(configDir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return fmt.Errorf("prompt store: %w", err)
	}

	a, err := buildApp(ctx, settings, config, prompts)
	if err != nil {
		return err
	}
	defer a.Close()

	cli.SetVersion(version)
	cli.SetServices(a.services)
	return cli.Execute(ctx)
}
