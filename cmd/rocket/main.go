// cmd/rocket/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/opd-ai/go-rocket/pkg/config"
	"github.com/opd-ai/go-rocket/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (JSON or YAML)")
	createDefault := flag.Bool("default", false, "Write the default configuration to -config and exit")
	frontend := flag.String("frontend", "", "terminal, engo or headless (overrides ROCKET_FRONTEND)")
	difficulty := flag.String("difficulty", "", "easy, medium or hard")
	logPath := flag.String("log", "", "Write logs to this file instead of stderr")
	flag.Parse()

	envConfig, err := config.LoadConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load environment configuration: %v\n", err)
		os.Exit(1)
	}
	if *frontend != "" {
		envConfig.Frontend = strings.ToLower(*frontend)
	}
	if *configPath == "" {
		*configPath = envConfig.ConfigPath
	}

	logger, closeLog, err := newLogger(envConfig, *logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()
	ctx := logging.WithRunID(context.Background(), logging.GenerateRunID())

	if *createDefault {
		if *configPath == "" {
			logger.Error(ctx, "No configuration path given", nil)
			os.Exit(1)
		}
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	gameConfig, err := loadGameConfig(ctx, logger, *configPath)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err,
			"config_path", *configPath,
		)
		os.Exit(1)
	}
	if *difficulty != "" {
		level, err := config.ParseDifficulty(*difficulty)
		if err != nil {
			logger.Error(ctx, "Invalid difficulty", err)
			os.Exit(1)
		}
		gameConfig.Difficulty = level
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, envConfig, gameConfig, logger); err != nil {
		logger.Error(ctx, "Rocket exited with error", err)
		closeLog()
		os.Exit(1)
	}
}

// newLogger writes to path when given. The terminal frontend owns the
// tty, so without a path it logs nowhere.
func newLogger(envConfig *config.EnvironmentConfig, path string) (*logging.Logger, func(), error) {
	level := logging.ParseLevel(envConfig.LogLevel)
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		return logging.NewLoggerWithWriter(f, level), func() { _ = f.Close() }, nil
	}

	var w io.Writer = os.Stderr
	if envConfig.Frontend == config.FrontendTerminal {
		w = io.Discard
	}
	return logging.NewLoggerWithWriter(w, level), func() {}, nil
}

func loadGameConfig(ctx context.Context, logger *logging.Logger, path string) (*config.GameConfig, error) {
	if path == "" {
		return config.LoadDefault()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", path,
		)
		return config.LoadDefault()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, logging.WrapError(err, "loading configuration %s", path)
	}
	return cfg, nil
}
