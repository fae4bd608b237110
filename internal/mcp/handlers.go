package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/free-apis-mcp/internal/catalog"
	"github.com/bobmcallan/free-apis-mcp/internal/config"
	"github.com/bobmcallan/free-apis-mcp/internal/invoke"
)

func handleListCategories(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		categories, err := svc.engine.ListCategories(ctx)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(categories)
	}
}

func handleListAPIs(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		authRequired, err := optionalBool(r, "auth_required")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		apis, err := svc.engine.ListAPIs(ctx, r.GetString("category", ""), authRequired)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(apis)
	}
}

func handleGetAPI(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := r.RequireString("name")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		rec, err := svc.engine.GetAPI(ctx, name)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(rec)
	}
}

func handleCallAPI(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := r.RequireString("url")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		method, err := methodArg(r)
		if err != nil {
			return toolError(err)
		}
		res, err := svc.proxy.Call(ctx, url, method)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(res.Text), nil
	}
}

func handleSearchAPIs(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := r.RequireString("query")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		hits, err := svc.engine.SearchAPIs(ctx, query)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(hits)
	}
}

func handleGetRandomAPI(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		noAuthOnly := true
		v, err := optionalBool(r, "no_auth_only")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		if v != nil {
			noAuthOnly = *v
		}
		api, err := svc.engine.RandomAPI(ctx, noAuthOnly)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(api)
	}
}

func handleQuickTest(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := r.RequireString("api_name")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		res, err := svc.proxy.QuickTest(ctx, svc.engine, name)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(res.Text), nil
	}
}

// versionInfo is the get_version payload.
type versionInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
	Catalog string `json:"catalog"`
}

func handleGetVersion(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(versionInfo{
			Name:    svc.name,
			Version: config.GetVersion(),
			Build:   config.GetBuild(),
			Commit:  config.GetGitCommit(),
			Catalog: svc.catalogPath,
		})
	}
}

// errorPayload is the structured body of every recoverable tool error.
type errorPayload struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

// errorResult creates an MCP error result carrying {"error": message}.
func errorResult(message string) *mcp.CallToolResult {
	return errorPayloadResult(errorPayload{Error: message})
}

func errorPayloadResult(p errorPayload) *mcp.CallToolResult {
	out, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		out = []byte(fmt.Sprintf("{\"error\": %q}", p.Error))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(out))},
		IsError: true,
	}
}

// jsonResult renders v as pretty-printed JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// toolError converts a query or invocation error into a tool result.
// Only an unavailable catalog escapes as a handler error.
func toolError(err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, catalog.ErrCatalogUnavailable) {
		return nil, err
	}
	if errors.Is(err, catalog.ErrEmptyPool) {
		return errorResult("No APIs match the criteria"), nil
	}
	var noTest *invoke.NoTestURLError
	if errors.As(err, &noTest) {
		return errorPayloadResult(errorPayload{Error: noTest.Error(), Hint: noTest.Hint()}), nil
	}
	return errorResult(err.Error()), nil
}

// methodArg reads the call_api method. Absent or null means GET. A value
// that is present but blank is rejected like any other unknown method.
func methodArg(r mcp.CallToolRequest) (string, error) {
	v, ok := r.GetArguments()["method"]
	if !ok || v == nil {
		return http.MethodGet, nil
	}
	m, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("method must be a string")
	}
	if strings.TrimSpace(m) == "" {
		return "", &invoke.UnsupportedMethodError{Method: m}
	}
	return m, nil
}

// optionalBool reads a tri-state boolean argument: nil when absent.
func optionalBool(r mcp.CallToolRequest, name string) (*bool, error) {
	v, ok := r.GetArguments()[name]
	if !ok || v == nil {
		return nil, nil
	}
	switch b := v.(type) {
	case bool:
		return &b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return nil, fmt.Errorf("%s must be a boolean, got %q", name, b)
		}
		return &parsed, nil
	default:
		return nil, fmt.Errorf("%s must be a boolean", name)
	}
}
