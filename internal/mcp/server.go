// Package mcp provides an MCP (Model Context Protocol) server for prefgrow.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/prefgrow/internal/config"
	"github.com/nvandessel/prefgrow/internal/ratelimit"
	"github.com/nvandessel/prefgrow/internal/store"
)

// Server wraps the MCP SDK server with the prefgrow tools.
type Server struct {
	server      *sdk.Server
	store       store.RunStore
	ownsStore   bool
	settings    *config.PrefgrowConfig
	limiters    ratelimit.ToolLimiters
	auditLogger *AuditLogger
	logger      *slog.Logger
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "prefgrow")
	Version string // Server version

	// Settings supplies defaults for simulate calls. Nil uses config.Default().
	Settings *config.PrefgrowConfig

	// Store, when nil, is opened at Settings.StorePath() and closed with the
	// server.
	Store store.RunStore

	// AuditDir receives audit.jsonl. Empty disables auditing.
	AuditDir string

	Logger *slog.Logger
}

// NewServer creates a new MCP server with the prefgrow tools registered.
func NewServer(cfg *Config) (*Server, error) {
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	runStore := cfg.Store
	owns := false
	if runStore == nil {
		path, err := settings.StorePath()
		if err != nil {
			return nil, err
		}
		opened, err := store.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open run store: %w", err)
		}
		runStore = opened
		owns = true
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			logger.Debug("mcp client initialized")
		},
	})

	s := &Server{
		server:    mcpServer,
		store:     runStore,
		ownsStore: owns,
		settings:  settings,
		limiters:  ratelimit.NewToolLimiters(),
		logger:    logger,
	}
	if cfg.AuditDir != "" {
		s.auditLogger = NewAuditLogger(cfg.AuditDir)
	}

	s.registerTools()
	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	err := s.server.Run(ctx, &sdk.StdioTransport{})

	if cerr := s.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Close releases the audit log and, if the server opened it, the store.
func (s *Server) Close() error {
	var firstErr error
	if err := s.auditLogger.Close(); err != nil {
		firstErr = err
	}
	s.auditLogger = nil
	if s.ownsStore && s.store != nil {
		if err := s.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.store = nil
	}
	return firstErr
}
