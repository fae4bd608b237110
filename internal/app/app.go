package app

import (
	"context"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/free-apis-mcp/internal/catalog"
	"github.com/bobmcallan/free-apis-mcp/internal/common"
	"github.com/bobmcallan/free-apis-mcp/internal/config"
	"github.com/bobmcallan/free-apis-mcp/internal/handlers"
	"github.com/bobmcallan/free-apis-mcp/internal/invoke"
	"github.com/bobmcallan/free-apis-mcp/internal/mcp"
)

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Store     *catalog.Store
	Engine    *catalog.Engine
	Proxy     *invoke.Proxy
	MCPServer *mcpserver.MCPServer

	// HTTP handlers, used only with the http transport
	MCPHandler     *mcp.Handler
	HealthHandler  *handlers.HealthHandler
	VersionHandler *handlers.VersionHandler
}

// New initializes the application. The catalog is loaded once up front;
// an unusable catalog is a startup failure.
func New(ctx context.Context, cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	a.Store = catalog.NewStore(cfg.Catalog.Path, logger)
	if err := a.Store.Check(ctx); err != nil {
		return nil, fmt.Errorf("catalog check failed: %w", err)
	}

	a.Engine = catalog.NewEngine(a.Store)
	a.Proxy = invoke.NewProxy(cfg.Proxy, logger)
	a.MCPServer = mcp.NewServer(mcp.NewService(cfg, a.Engine, a.Proxy, logger))

	if !cfg.IsStdio() {
		a.initHandlers()
	}

	logger.Info().
		Str("transport", cfg.Server.Transport).
		Int64("proxy_timeout_ms", a.Proxy.Timeout().Milliseconds()).
		Msg("application initialization complete")

	return a, nil
}

func (a *App) initHandlers() {
	a.MCPHandler = mcp.NewHandler(a.MCPServer, a.Logger)
	a.HealthHandler = handlers.NewHealthHandler(a.Store, a.Logger)
	a.VersionHandler = handlers.NewVersionHandler()
}
