package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/enlogic/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose enlogic to MCP clients",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the MCP tools and resources",
	Long: `Serve the enlogic tools and document resources over the Model Context
Protocol. Stdio is used unless --addr is given, in which case the streamable
HTTP transport listens on that address.

Every tool accepts an optional tenant; the --tenant flag is not consulted.

Examples:
  enlogic mcp serve
  enlogic mcp serve --addr 127.0.0.1:8080

To register with a desktop client, point it at:
  {"command": "/path/to/enlogic", "args": ["mcp", "serve"]}`,
	RunE: runMCPServe,
}

var mcpToolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools the MCP server registers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		server, err := newMCPServer()
		if err != nil {
			return err
		}
		for _, tool := range server.Tools() {
			cmd.Printf("  %-16s %s\n", tool.Name, tool.Description)
		}
		return nil
	},
}

func init() {
	mcpServeCmd.Flags().String("addr", "", "serve HTTP on this address instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd, mcpToolsCmd)
	rootCmd.AddCommand(mcpCmd)
}

func newMCPServer() (*mcp.Server, error) {
	if documentService == nil {
		return nil, errors.New("document service not configured")
	}
	return mcp.NewServer(&mcp.Ports{
		Document:  documentService,
		Ingestion: ingestionService,
		Agent:     agentService,
		Knowledge: knowledgeService,
	})
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("reading addr flag: %w", err)
	}

	server, err := newMCPServer()
	if err != nil {
		return err
	}
	if addr == "" {
		return server.Run(cmd.Context())
	}
	cmd.PrintErrf("MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
