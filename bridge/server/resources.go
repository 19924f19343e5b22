package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(s *server.MCPServer) {
	usage := mcp.NewResource(
		"bridge://docs/usage",
		"Usage Guide",
		mcp.WithResourceDescription("How to use the codex delegation bridge"),
		mcp.WithMIMEType("text/markdown"),
	)
	s.AddResource(usage, func(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "text/markdown",
				Text:     usageGuide,
			},
		}, nil
	})

	practices := mcp.NewResource(
		"bridge://docs/best_practices",
		"Best Practices",
		mcp.WithResourceDescription("Writing effective delegation tasks"),
		mcp.WithMIMEType("text/markdown"),
	)
	s.AddResource(practices, func(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "text/markdown",
				Text:     bestPractices,
			},
		}, nil
	})
}
