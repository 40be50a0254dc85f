package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driving"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Manage extraction agents",
	Long: `Agents pair an extraction prompt with a JSON Schema authored by a language
model. Ingesting with --agent validates the extraction against that schema.

Deriving from an existing agent with --base creates a new version; the old
version is kept for lineage.`,
}

var agentCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an agent",
	Args:  cobra.NoArgs,
	RunE:  runAgentCreate,
}

var agentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List agents",
	Args:  cobra.NoArgs,
	RunE:  runAgentList,
}

var agentGetCmd = &cobra.Command{
	Use:   "get [agent-id]",
	Short: "Show an agent and its schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgentGet,
}

var agentDeactivateCmd = &cobra.Command{
	Use:   "deactivate [agent-id]",
	Short: "Deactivate an agent",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgentDeactivate,
}

var agentDeleteCmd = &cobra.Command{
	Use:   "delete [agent-id]",
	Short: "Permanently delete an agent",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgentDelete,
}

var agentLineageCmd = &cobra.Command{
	Use:   "lineage [agent-id]",
	Short: "Show an agent and its ancestors",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgentLineage,
}

var (
	agentName        string
	agentDescription string
	agentPrompt      string
	agentRequirement string
	agentLanguage    string
	agentBase        string
	agentVisibility  string
	agentProvider    string
	agentModel       string
	agentAll         bool
)

func init() {
	f := agentCreateCmd.Flags()
	f.StringVar(&agentName, "name", "", "Agent name (required)")
	f.StringVar(&agentDescription, "description", "", "Agent description")
	f.StringVar(&agentPrompt, "prompt", "", "Extraction instruction (required)")
	f.StringVar(&agentRequirement, "requirement", "", "Text the schema is authored from (default: the prompt)")
	f.StringVar(&agentLanguage, "language", "", "Output language")
	f.StringVar(&agentBase, "base", "", "Derive a new version from this agent id")
	f.StringVar(&agentVisibility, "visibility", "", "Agent visibility")
	f.StringVar(&agentProvider, "provider", "", "LLM provider used to author the schema")
	f.StringVar(&agentModel, "model", "", "LLM model override")

	agentListCmd.Flags().BoolVar(&agentAll, "all", false, "Include inactive agents")

	agentCmd.AddCommand(agentCreateCmd)
	agentCmd.AddCommand(agentListCmd)
	agentCmd.AddCommand(agentGetCmd)
	agentCmd.AddCommand(agentDeactivateCmd)
	agentCmd.AddCommand(agentDeleteCmd)
	agentCmd.AddCommand(agentLineageCmd)
	rootCmd.AddCommand(agentCmd)
}

func runAgentCreate(cmd *cobra.Command, _ []string) error {
	if agentService == nil {
		return errors.New("agent service not configured")
	}

	agent, err := agentService.Create(cmd.Context(), driving.CreateAgentRequest{
		TenantID:       tenantID,
		Name:           agentName,
		Description:    agentDescription,
		Prompt:         agentPrompt,
		Requirement:    agentRequirement,
		OutputLanguage: agentLanguage,
		BaseAgentID:    agentBase,
		Visibility:     agentVisibility,
		Provider:       agentProvider,
		Model:          agentModel,
	})
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	cmd.Printf("Created agent: %s\n", agent.ID)
	cmd.Printf("  Name:    %s\n", agent.Name)
	cmd.Printf("  Version: %d\n", agent.Version)
	if agent.ParentID != nil {
		cmd.Printf("  Parent:  %s\n", *agent.ParentID)
	}
	return nil
}

func runAgentList(cmd *cobra.Command, _ []string) error {
	if agentService == nil {
		return errors.New("agent service not configured")
	}

	agents, err := agentService.List(cmd.Context(), tenantID, agentAll)
	if err != nil {
		return fmt.Errorf("failed to list agents: %w", err)
	}

	if len(agents) == 0 {
		cmd.Println("No agents configured.")
		return nil
	}

	cmd.Println("Agents:")
	for i := range agents {
		a := agents[i]
		status := ""
		if !a.IsActive {
			status = " (inactive)"
		}
		cmd.Printf("  %s  %s v%d%s\n", a.ID, a.Name, a.Version, status)
	}
	return nil
}

func runAgentGet(cmd *cobra.Command, args []string) error {
	if agentService == nil {
		return errors.New("agent service not configured")
	}

	agent, err := agentService.Get(cmd.Context(), tenantID, args[0])
	if err != nil {
		return fmt.Errorf("failed to get agent: %w", err)
	}

	printAgent(cmd, agent)
	if len(agent.Schema) > 0 {
		var out bytes.Buffer
		if err := json.Indent(&out, agent.Schema, "", "  "); err != nil {
			return fmt.Errorf("failed to format schema: %w", err)
		}
		cmd.Println()
		cmd.Println(out.String())
	}
	return nil
}

func runAgentDeactivate(cmd *cobra.Command, args []string) error {
	if agentService == nil {
		return errors.New("agent service not configured")
	}
	if err := agentService.Deactivate(cmd.Context(), tenantID, args[0]); err != nil {
		return fmt.Errorf("failed to deactivate agent: %w", err)
	}
	cmd.Printf("Deactivated agent: %s\n", args[0])
	return nil
}

func runAgentDelete(cmd *cobra.Command, args []string) error {
	if agentService == nil {
		return errors.New("agent service not configured")
	}
	if err := agentService.Delete(cmd.Context(), tenantID, args[0]); err != nil {
		return fmt.Errorf("failed to delete agent: %w", err)
	}
	cmd.Printf("Deleted agent: %s\n", args[0])
	return nil
}

func runAgentLineage(cmd *cobra.Command, args []string) error {
	if agentService == nil {
		return errors.New("agent service not configured")
	}

	chain, err := agentService.Lineage(cmd.Context(), tenantID, args[0])
	if err != nil {
		return fmt.Errorf("failed to get lineage: %w", err)
	}

	for i := range chain {
		indent := ""
		if i > 0 {
			indent = "  <- "
		}
		cmd.Printf("%s%s  %s v%d\n", indent, chain[i].ID, chain[i].Name, chain[i].Version)
	}
	return nil
}

func printAgent(cmd *cobra.Command, a *domain.Agent) {
	cmd.Printf("Agent: %s\n", a.ID)
	cmd.Printf("  Name:       %s\n", a.Name)
	if a.Description != "" {
		cmd.Printf("  About:      %s\n", a.Description)
	}
	cmd.Printf("  Version:    %d\n", a.Version)
	if a.ParentID != nil {
		cmd.Printf("  Parent:     %s\n", *a.ParentID)
	}
	cmd.Printf("  Active:     %t\n", a.IsActive)
	cmd.Printf("  Language:   %s\n", a.OutputLanguage)
	cmd.Printf("  Visibility: %s\n", a.Visibility)
	cmd.Printf("  Prompt:     %s\n", a.Prompt)
}
