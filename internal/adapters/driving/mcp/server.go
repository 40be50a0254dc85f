package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/enlogic/internal/logger"
)

// Version is reported to clients during initialization.
const Version = "0.1.0"

const shutdownGrace = 5 * time.Second

// ToolInfo names a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// Server exposes the enlogic services as MCP tools and resources.
type Server struct {
	ports  *Ports
	server *mcp.Server
	tools  []ToolInfo
}

// NewServer registers every tool and resource over ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports:  ports,
		server: mcp.NewServer(&mcp.Implementation{Name: "enlogic", Version: Version}, nil),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Tools lists the registered tools in registration order.
func (s *Server) Tools() []ToolInfo {
	return append([]ToolInfo(nil), s.tools...)
}

// Run serves one client over stdin and stdout until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler serves the streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.server }, nil)
}

// RunHTTP listens on addr until ctx ends, then drains open requests.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("mcp: serving on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("mcp: shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
