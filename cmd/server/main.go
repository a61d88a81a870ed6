package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/damoonrashidi/peek/internal/completion"
	"github.com/damoonrashidi/peek/internal/config"
	"github.com/damoonrashidi/peek/internal/introspect"
	"github.com/damoonrashidi/peek/internal/lsp"
	"github.com/damoonrashidi/peek/internal/provider"
	"github.com/damoonrashidi/peek/internal/schema"
	"github.com/damoonrashidi/peek/internal/workspace"
	"go.uber.org/zap"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "Path to configuration file")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error); overrides the config file")
	port := flag.Int("port", -1, "TCP port for LSP server (0 for stdio); overrides the config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadServerConfig(*configPath)
	if err != nil {
		zap.NewExample().Fatal("Failed to load configuration", zap.Error(err))
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *port >= 0 {
		cfg.LSP.Port = *port
	}

	// Initialize logger. Both builds write to stderr, leaving stdout to the
	// protocol.
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("Failed to create logger", zap.Error(err))
	}
	defer logger.Sync()

	logger.Info("Starting peek language server",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("date", date),
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := provider.NewRegistry(logger)
	defer registry.Close()

	var opts []lsp.Option
	opts = append(opts, lsp.WithVersion(version))

	switch {
	case cfg.WorkspaceFile != "":
		manager, err := startWorkspace(ctx, cfg, registry, logger)
		if err != nil {
			logger.Fatal("Failed to load workspace", zap.Error(err))
		}
		opts = append(opts, lsp.WithWorkspace(manager))
	case cfg.SchemaFile != "":
		snap, err := schema.Load(cfg.SchemaFile)
		if err != nil {
			logger.Fatal("Failed to load schema", zap.Error(err))
		}
		registry.Register(cfg.LSP.LanguageID, completion.NewEngine(snap, logger))
	default:
		logger.Warn("No schema_file or workspace_file configured, completing without a schema")
		registry.Register(cfg.LSP.LanguageID, completion.NewEngine(schema.Empty(), logger))
	}

	// Initialize LSP server
	server, err := lsp.NewServer(ctx, cfg, registry, logger, opts...)
	if err != nil {
		logger.Fatal("Failed to create server", zap.Error(err))
	}
	defer server.Close(ctx)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	// Start server (stdio or TCP)
	if cfg.LSP.Port > 0 {
		if err := server.ServeTCP(ctx, cfg.LSP.Port); err != nil {
			logger.Fatal("TCP server error", zap.Error(err))
		}
	} else {
		if err := server.ServeStdio(ctx); err != nil {
			logger.Fatal("Stdio server error", zap.Error(err))
		}
	}

	logger.Info("Server shutdown complete")
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}

	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

// startWorkspace reads the workspace file and connects the configured
// connection, if any. Introspection settings from the server config apply to
// every connection; a connection's own schemas replace them.
func startWorkspace(ctx context.Context, cfg *config.ServerConfig, registry *provider.Registry, logger *zap.Logger) (*workspace.Manager, error) {
	manifest, err := workspace.ParseManifest(cfg.WorkspaceFile)
	if err != nil {
		return nil, err
	}

	loader := workspace.DefaultLoader(
		time.Duration(cfg.Introspection.ConnectTimeout)*time.Second,
		introspect.WithSchemas(cfg.Introspection.Schemas...),
		introspect.WithExcludeTables(cfg.Introspection.ExcludeTables...),
	)

	manager := workspace.NewManager(manifest, registry, logger,
		workspace.WithLanguage(cfg.LSP.LanguageID),
		workspace.WithLoader(loader),
	)

	if cfg.Connection != "" {
		if err := manager.Connect(ctx, cfg.Connection); err != nil {
			return nil, err
		}
	} else {
		logger.Info("No connection selected; use the peek.connect command",
			zap.Strings("connections", manifest.Names()),
		)
	}
	return manager, nil
}
