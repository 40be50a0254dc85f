package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/enlogic/internal/core/ports/driving"
)

func createRequest(name string) driving.CreateAgentRequest {
	return driving.CreateAgentRequest{
		TenantID: "default",
		Name:     name,
		Prompt:   "List supply and safety risks",
	}
}

func TestAgentCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range agentCmd.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"create", "list", "get", "deactivate", "delete", "lineage"} {
		assert.Contains(t, names, want)
	}
}

func TestAgentCreateCmd_CreatesAgent(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "agent", "create", "--name", "risks", "--prompt", "List risks")

	require.NoError(t, err)
	assert.Contains(t, out, "Created agent:")
	assert.Contains(t, out, "Name:    risks")
	assert.Contains(t, out, "Version: 1")
}

func TestAgentCreateCmd_RequiresNameAndPrompt(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "agent", "create", "--name", "risks")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "name and prompt are required")
}

func TestAgentCreateCmd_DerivesVersion(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	base, err := agentService.Create(t.Context(), createRequest("risks"))
	require.NoError(t, err)

	out, err := execute(t, "agent", "create", "--name", "risks", "--prompt", "List risks v2", "--base", base.ID)

	require.NoError(t, err)
	assert.Contains(t, out, "Version: 2")
	assert.Contains(t, out, "Parent:  "+base.ID)

	out, err = execute(t, "agent", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "risks v2")
	assert.Contains(t, out, "risks v1")
}

func TestAgentListCmd_Empty(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "agent", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No agents configured.")
}

func TestAgentDeactivateCmd_HidesFromList(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	agent, err := agentService.Create(t.Context(), createRequest("risks"))
	require.NoError(t, err)

	out, err := execute(t, "agent", "deactivate", agent.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deactivated agent: "+agent.ID)

	out, err = execute(t, "agent", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No agents configured.")

	out, err = execute(t, "agent", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "(inactive)")
}

func TestAgentGetCmd_PrintsSchema(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	agent, err := agentService.Create(t.Context(), createRequest("risks"))
	require.NoError(t, err)

	out, err := execute(t, "agent", "get", agent.ID)

	require.NoError(t, err)
	assert.Contains(t, out, "Agent: "+agent.ID)
	assert.Contains(t, out, "Active:     true")
	assert.Contains(t, out, `"risks"`)
}

func TestAgentDeleteCmd_NotFound(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "agent", "delete", "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete agent")
}

func TestAgentLineageCmd(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	base, err := agentService.Create(t.Context(), createRequest("risks"))
	require.NoError(t, err)
	req := createRequest("risks")
	req.BaseAgentID = base.ID
	child, err := agentService.Create(t.Context(), req)
	require.NoError(t, err)

	out, err := execute(t, "agent", "lineage", child.ID)

	require.NoError(t, err)
	assert.Contains(t, out, child.ID+"  risks v2")
	assert.Contains(t, out, "  <- "+base.ID+"  risks v1")
}
