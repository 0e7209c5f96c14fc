package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/NERVsystems/photogeo/pkg/config"
	"github.com/NERVsystems/photogeo/pkg/metrics"
	"github.com/NERVsystems/photogeo/pkg/server"
	"github.com/NERVsystems/photogeo/pkg/version"
)

var (
	showVersionFlag bool
	debug           bool
	configPath      string
	generateConfig  string
	mergeOnly       bool
)

func init() {
	flag.BoolVar(&showVersionFlag, "version", false, "Display version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.StringVar(&configPath, "config", "", "Path to a photogeo.yaml config file")
	flag.StringVar(&generateConfig, "generate-config", "", "Generate a Claude Desktop Client config file at the specified path")
	flag.BoolVar(&mergeOnly, "merge-only", false, "With -generate-config, only update an existing config file")
}

func main() {
	flag.Parse()

	// Show version and exit if requested
	if showVersionFlag {
		showVersion()
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "photogeo: %v\n", err)
		os.Exit(1)
	}

	level := new(slog.LevelVar)
	setLevel(level, cfg)
	logger := newLogger(os.Stderr, cfg.Log.Format, level)
	slog.SetDefault(logger)

	// Generate Claude Desktop config if requested
	if generateConfig != "" {
		if err := generateClientConfig(generateConfig, mergeOnly); err != nil {
			logger.Error("failed to generate config", "error", err)
			os.Exit(1)
		}
		logger.Info("successfully generated Claude Desktop Client config", "path", generateConfig)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopWatch, err := config.Watch(configPath, cfg.DebounceWait(), func(next *config.Config) {
		setLevel(level, next)
	})
	switch {
	case errors.Is(err, config.ErrNoConfigFile):
	case err != nil:
		logger.Warn("config file will not be reloaded", "error", err)
	default:
		defer stopWatch()
	}

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr); err != nil {
				logger.Error("metrics listener failed", "error", err)
			}
		}()
	}

	logger.Info("starting photogeo MCP server",
		"version", version.BuildVersion,
		"log_level", level.Level().String())

	// Create and run the MCP server
	srv, err := server.NewServerWithLogger(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	logger.Info("server initialized, waiting for requests")
	if err := srv.RunWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// setLevel applies the configured log level; -debug always wins.
func setLevel(level *slog.LevelVar, cfg *config.Config) {
	if debug {
		level.Set(slog.LevelDebug)
		return
	}
	l, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		l = slog.LevelInfo
	}
	level.Set(l)
}

// newLogger writes to w, never stdout: stdout carries the MCP protocol.
func newLogger(w io.Writer, format string, level slog.Leveler) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// generateClientConfig creates or updates a Claude Desktop Client config
// file, adding a "photogeo" entry under mcpServers. With mergeOnly the file
// must already exist.
func generateClientConfig(outputPath string, mergeOnly bool) error {
	logger := slog.Default()

	if outputPath == "" {
		return errors.New("output path is empty")
	}
	if filepath.Ext(outputPath) != ".json" {
		return fmt.Errorf("output path %q must end in .json", outputPath)
	}
	for _, part := range strings.Split(filepath.ToSlash(outputPath), "/") {
		if part == ".." {
			return fmt.Errorf("output path %q must not contain ..", outputPath)
		}
	}

	// Get absolute path to executable
	execPath, err := os.Executable()
	if err != nil {
		execPath = os.Args[0] // Fallback to args if cannot get executable path
	}
	absExecPath, err := filepath.Abs(execPath)
	if err != nil {
		absExecPath = execPath // Use as is if cannot resolve absolute path
	}

	serverConfig := map[string]any{
		"command": absExecPath,
		"args":    []string{},
	}

	var cfg map[string]any

	data, err := os.ReadFile(outputPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			logger.Warn("existing config is not valid JSON, will create new", "error", err)
			cfg = nil
		}
	case errors.Is(err, os.ErrNotExist):
		if mergeOnly {
			return fmt.Errorf("config %s does not exist", outputPath)
		}
	default:
		return fmt.Errorf("failed to read existing config: %w", err)
	}
	if cfg == nil {
		cfg = make(map[string]any)
	}

	// Check if mcpServers exists, create it if not
	mcpServers, ok := cfg["mcpServers"].(map[string]any)
	if !ok {
		mcpServers = make(map[string]any)
		cfg["mcpServers"] = mcpServers
	}
	mcpServers[version.Name] = serverConfig

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	out = append(out, '\n')

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, out, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(outputPath, 0o600)
}

// showVersion displays version information
func showVersion() {
	fmt.Println(version.String())
}
