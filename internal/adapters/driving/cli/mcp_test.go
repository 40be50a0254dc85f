package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPToolsCmd(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "mcp", "tools")

	require.NoError(t, err)
	for _, name := range []string{"ingest_text", "list_documents", "get_document", "delete_document", "list_agents", "get_agent", "ask"} {
		assert.Contains(t, out, name)
	}
}

func TestMCPCmd_WithoutServices(t *testing.T) {
	SetServices(Services{})

	for _, args := range [][]string{{"mcp", "tools"}, {"mcp", "serve"}} {
		_, err := execute(t, args...)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "document service not configured")
	}
}

func TestMCPServeCmd_AddrFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("addr")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}
