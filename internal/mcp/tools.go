package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers every catalog tool on the server and returns the count.
func RegisterTools(s *server.MCPServer, svc *Service) int {
	tools := []server.ServerTool{
		{Tool: createListCategoriesTool(), Handler: svc.instrument("list_categories", handleListCategories(svc))},
		{Tool: createListAPIsTool(), Handler: svc.instrument("list_apis", handleListAPIs(svc))},
		{Tool: createGetAPITool(), Handler: svc.instrument("get_api", handleGetAPI(svc))},
		{Tool: createCallAPITool(), Handler: svc.instrument("call_api", handleCallAPI(svc))},
		{Tool: createSearchAPIsTool(), Handler: svc.instrument("search_apis", handleSearchAPIs(svc))},
		{Tool: createGetRandomAPITool(), Handler: svc.instrument("get_random_api", handleGetRandomAPI(svc))},
		{Tool: createQuickTestTool(), Handler: svc.instrument("quick_test", handleQuickTest(svc))},
		{Tool: createGetVersionTool(), Handler: svc.instrument("get_version", handleGetVersion(svc))},
	}
	s.AddTools(tools...)
	return len(tools)
}

func createListCategoriesTool() mcp.Tool {
	return mcp.NewTool("list_categories",
		mcp.WithDescription("List all API categories available in the collection, with their names, slugs and API counts. Use this to discover what types of APIs are available."),
	)
}

func createListAPIsTool() mcp.Tool {
	return mcp.NewTool("list_apis",
		mcp.WithDescription("List APIs, optionally filtered by category or auth requirement."),
		mcp.WithString("category", mcp.Description("Filter by category slug (e.g., 'weather', 'finance', 'fun')")),
		mcp.WithBoolean("auth_required", mcp.Description("If false, only show APIs that don't require authentication. If true, only APIs that do. Omit for no auth filtering.")),
	)
}

func createGetAPITool() mcp.Tool {
	return mcp.NewTool("get_api",
		mcp.WithDescription("Get detailed information about a specific API, including URL, auth type, and test URL if available."),
		mcp.WithString("name", mcp.Required(), mcp.Description("The name of the API (case-insensitive)")),
	)
}

func createCallAPITool() mcp.Tool {
	return mcp.NewTool("call_api",
		mcp.WithDescription("Call a free API endpoint and return the response as JSON or text. Only works with APIs that don't require authentication. Use list_apis with auth_required=false to find callable APIs."),
		mcp.WithString("url", mcp.Required(), mcp.Description("The API endpoint URL to call")),
		mcp.WithString("method", mcp.Description("HTTP method: GET or POST (default: GET)")),
	)
}

func createSearchAPIsTool() mcp.Tool {
	return mcp.NewTool("search_apis",
		mcp.WithDescription("Search for APIs by name or description."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search term to find in API names or descriptions")),
	)
}

func createGetRandomAPITool() mcp.Tool {
	return mcp.NewTool("get_random_api",
		mcp.WithDescription("Get a random API from the collection. Great for discovering new APIs or testing."),
		mcp.WithBoolean("no_auth_only", mcp.Description("If true, only return APIs that don't require auth (default: true)")),
	)
}

func createQuickTestTool() mcp.Tool {
	return mcp.NewTool("quick_test",
		mcp.WithDescription("Quickly test an API by calling its test URL. Only works for APIs with a testUrl defined (no-auth APIs)."),
		mcp.WithString("api_name", mcp.Required(), mcp.Description("Name of the API to test")),
	)
}

func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the free-apis MCP server version and catalog location. Use this to verify connectivity."),
	)
}
