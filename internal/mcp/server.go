package mcp

import (
	"context"
	"fmt"

	"secretai/internal/tool"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverName = "secretai"

// Logger receives one line per tool call
type Logger interface {
	Debug(format string, args ...any)
	Warn(format string, args ...any)
}

// Server exposes a tool registry to MCP clients
type Server struct {
	server   *mcp.Server
	executor *tool.Executor
	log      Logger
}

// NewServer registers every tool of registry on a new MCP server. The
// tools' usage notes are sent to clients as the server instructions.
// log may be nil.
func NewServer(registry *tool.Registry, version string, log Logger) *Server {
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    serverName,
			Version: version,
		}, &mcp.ServerOptions{
			Instructions: registry.GetToolBestPractices(),
		}),
		executor: tool.NewExecutor(registry),
		log:      log,
	}

	for _, t := range registry.List() {
		s.server.AddTool(&mcp.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Parameters(),
		}, s.handler(t.Name()))
	}

	return s
}

// Run serves over stdin/stdout until the client disconnects or ctx is done
func (s *Server) Run(ctx context.Context) error {
	if err := s.server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server stopped: %w", err)
	}
	return nil
}

// Connect serves a single session over transport
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, transport, nil)
}

func (s *Server) handler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		call := s.executor.Execute(ctx, name, req.Params.Arguments)

		if !call.Result.Success {
			s.warn("tool %s failed after %s: %s", name, call.Duration(), call.Result.Error)
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: call.Result.Error}},
			}, nil
		}

		s.debug("tool %s completed in %s", name, call.Duration())
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: call.Result.Output}},
		}, nil
	}
}

func (s *Server) debug(format string, args ...any) {
	if s.log != nil {
		s.log.Debug(format, args...)
	}
}

func (s *Server) warn(format string, args ...any) {
	if s.log != nil {
		s.log.Warn(format, args...)
	}
}
