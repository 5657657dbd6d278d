package api

import (
	"fmt"
	"log/slog"

	"github.com/hazyhaar/cercaclasse/pkg/kit"
	"github.com/hazyhaar/cercaclasse/pkg/search"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// NewMCPServer returns an MCP server exposing the search tool.
func NewMCPServer(engine *search.Engine, logger *slog.Logger) *server.MCPServer {
	srv := server.NewMCPServer("cercaclasse", Version, server.WithToolCapabilities(false))
	RegisterMCPTools(srv, engine, logger)
	return srv
}

// RegisterMCPTools registers the cercaclasse MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, engine *search.Engine, logger *slog.Logger) {
	tool := mcp.NewTool("search_classes",
		mcp.WithDescription("Find school classes by mechanographic code (school or institution, e.g. PZIS022008) or by free text such as school name and municipality (e.g. \"einstein potenza\"). Returns up to 20 code matches or the 10 best ranked matches."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Mechanographic code or free text")),
	)

	kit.RegisterMCPTool(srv, tool, searchEndpoint(engine, logger), func(req mcp.CallToolRequest) (any, error) {
		query, ok := req.GetArguments()["query"].(string)
		if !ok {
			return nil, fmt.Errorf("query must be a string")
		}
		return &searchReq{Query: query}, nil
	})
}
