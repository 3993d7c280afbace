// Package mcptool exposes equation conversion as a Model Context Protocol tool.
package mcptool

import (
	"context"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/math2python/pkg/conversion"
)

const (
	serverName = "math2python"

	// ToolName is the name agents call.
	ToolName = "convert_equation"

	toolDescription = "Convert a LaTeX or natural-language optimization equation into SymPy code, " +
		"a vectorized NumPy objective function and a bullet-point explanation."
)

// Converter performs a single conversion. *conversion.Service implements it.
type Converter interface {
	Convert(ctx context.Context, req *conversion.Request) *conversion.Conversion
}

// ConvertInput is the tool input.
type ConvertInput struct {
	Equation  string `json:"equation" jsonschema:"the optimization equation, LaTeX or plain text"`
	Framework string `json:"framework,omitempty" jsonschema:"target numeric framework hint, numpy by default"`
}

// NewServer builds an MCP server with the convert_equation tool registered.
func NewServer(converter Converter, version string, logger *zap.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: version,
	}, nil)

	t := &tool{converter: converter, logger: logger}
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolName,
		Description: toolDescription,
	}, t.convert)

	return server
}

// NewHTTPHandler serves the MCP server over the streamable HTTP transport.
func NewHTTPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}

// RunStdio serves the MCP server on stdin/stdout until ctx is done or the
// client disconnects.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

type tool struct {
	converter Converter
	logger    *zap.Logger
}

func (t *tool) convert(ctx context.Context, _ *mcp.CallToolRequest, in ConvertInput) (*mcp.CallToolResult, conversion.Response, error) {
	req := &conversion.Request{Equation: in.Equation, Framework: in.Framework}
	if err := req.Validate(); err != nil {
		return nil, conversion.Response{}, fmt.Errorf("invalid input: %w", err)
	}
	req.Normalize()

	conv := t.converter.Convert(ctx, req)
	t.logger.Debug("mcp conversion finished", zap.String("source", string(conv.Source)))

	return nil, *conv.Response, nil
}
