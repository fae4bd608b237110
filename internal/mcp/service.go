// Package mcp exposes the API catalog as MCP tools.
package mcp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/free-apis-mcp/internal/catalog"
	"github.com/bobmcallan/free-apis-mcp/internal/common"
	"github.com/bobmcallan/free-apis-mcp/internal/config"
	"github.com/bobmcallan/free-apis-mcp/internal/invoke"
)

// Service holds what the tool handlers need. Handlers share no mutable state.
type Service struct {
	engine      *catalog.Engine
	proxy       *invoke.Proxy
	logger      *common.Logger
	name        string
	catalogPath string
}

// NewService wires the query engine and the invocation proxy for the tool handlers.
func NewService(cfg *config.Config, engine *catalog.Engine, proxy *invoke.Proxy, logger *common.Logger) *Service {
	return &Service{
		engine:      engine,
		proxy:       proxy,
		logger:      logger,
		name:        cfg.Server.Name,
		catalogPath: cfg.Catalog.Path,
	}
}

// NewServer creates an MCP server with every tool registered.
func NewServer(svc *Service) *server.MCPServer {
	s := server.NewMCPServer(
		svc.name,
		config.GetVersion(),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	count := RegisterTools(s, svc)
	svc.logger.Info().Int("tools", count).Str("catalog", svc.catalogPath).Msg("MCP tools registered")
	return s
}

// instrument gives each call its own correlation ID and logs the outcome.
func (svc *Service) instrument(tool string, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger := svc.logger.WithCorrelationId(uuid.NewString())
		ctx = common.WithLogger(ctx, logger)

		logger.Debug().Str("tool", tool).Msg("tool call")

		start := time.Now()
		result, err := h(ctx, r)
		duration := time.Since(start).Milliseconds()

		switch {
		case err != nil:
			logger.Error().Str("tool", tool).Int64("duration_ms", duration).Str("error", err.Error()).Msg("tool call failed")
		case result != nil && result.IsError:
			logger.Info().Str("tool", tool).Int64("duration_ms", duration).Msg("tool call returned error result")
		default:
			logger.Debug().Str("tool", tool).Int64("duration_ms", duration).Msg("tool call complete")
		}
		return result, err
	}
}
