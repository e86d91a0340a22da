package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"time"

	"github.com/kastellane/COVID19-Vaccination-Model/internal/config"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/forecast"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/logging"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/ratelimit"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP SDK server and provides vacsim tools.
type Server struct {
	server       *sdk.Server
	forecaster   *forecast.Forecaster
	settings     *config.VacsimConfig
	toolLimiters ratelimit.ToolLimiters
	auditLogger  *AuditLogger
	logger       *slog.Logger
	now          func() time.Time
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "vacsim")
	Version string // Server version

	// Settings are the defaults every tool call starts from.
	Settings *config.VacsimConfig

	// AuditDir receives audit.jsonl. Empty disables auditing.
	AuditDir string

	Logger *slog.Logger
	Trace  *logging.TraceLogger
}

// NewServer creates a new MCP server with vacsim tools. All tool calls share
// one Forecaster, and therefore one result cache.
func NewServer(cfg *Config) (*Server, error) {
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	f, err := forecast.NewFromConfig(settings, forecast.WithLogger(logger), forecast.WithTrace(cfg.Trace))
	if err != nil {
		return nil, fmt.Errorf("failed to create forecaster: %w", err)
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		server:       mcpServer,
		forecaster:   f,
		settings:     settings,
		toolLimiters: ratelimit.NewToolLimiters(),
		logger:       logger,
		now:          time.Now,
	}
	if cfg.AuditDir != "" {
		s.auditLogger = NewAuditLogger(cfg.AuditDir)
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, shutdownSignals...)
	defer stop()

	err := s.server.Run(ctx, &sdk.StdioTransport{})

	if closeErr := s.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// Close releases the audit log.
func (s *Server) Close() error {
	return s.auditLogger.Close()
}
