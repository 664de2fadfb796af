package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/viper"

	"wolfwave-builder/internal/generator"
	"wolfwave-builder/internal/registry"
	"wolfwave-builder/internal/storage"
	"wolfwave-builder/internal/templating"
)

// adminApplication holds the application-wide dependencies for the
// admin API server.
type adminApplication struct {
	logger    *slog.Logger
	registry  *registry.Registry
	generator *generator.Generator
	store     storage.TemplateStore
	previewer *templating.Engine
}

// loadConfig wires the admin configuration: defaults, an optional
// wolfwave.toml in the working directory, and WOLFWAVE_* environment
// variables (env wins over file).
func loadConfig(logger *slog.Logger) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("port", "8081")
	v.SetDefault("templates_dir", "templates")
	v.SetDefault("catalogue_file", "")

	v.SetConfigName("wolfwave")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("WOLFWAVE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		logger.Info("No config file found, using defaults and environment")
	} else {
		logger.Info("Loaded config file", "path", v.ConfigFileUsed())
	}
	return v, nil
}

func main() {
	// --- Initialize Logger ---
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg, err := loadConfig(logger)
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// --- Initialize Storage ---
	templatesDir := cfg.GetString("templates_dir")
	store, err := storage.NewFileStore(templatesDir)
	if err != nil {
		logger.Error("Failed to initialize template store", "error", err)
		os.Exit(1)
	}
	logger.Info("Using templates directory", "path", store.BasePath())

	// --- Initialize Registry ---
	reg := registry.Default(logger)
	if cataloguePath := cfg.GetString("catalogue_file"); cataloguePath != "" {
		if err := reg.LoadFile(cataloguePath); err != nil {
			logger.Error("Failed to load component catalogue", "error", err)
			os.Exit(1)
		}
	}

	app := &adminApplication{
		logger:    logger,
		registry:  reg,
		generator: generator.New(reg),
		store:     store,
		previewer: templating.NewEngine(store),
	}

	// --- Start Server ---
	addr := ":" + cfg.GetString("port")
	logger.Info("Starting admin server", "address", fmt.Sprintf("http://localhost%s", addr))

	if err := http.ListenAndServe(addr, app.routes()); err != nil {
		logger.Error("Admin server failed to start", "error", err)
		os.Exit(1)
	}
}
