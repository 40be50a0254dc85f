// Package cli provides the cobra command tree for the enlogic binary.
//
// Commands talk only to driving ports; cmd/enlogic wires the services in
// with SetServices before calling Execute.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driving"
	"github.com/custodia-labs/enlogic/internal/logger"
)

var (
	version = "dev"

	verbose  bool
	tenantID string

	ingestionService driving.IngestionService
	agentService     driving.AgentService
	documentService  driving.DocumentService
	knowledgeService driving.KnowledgeService
	configService    driving.ConfigService
)

// Services holds the driving ports the commands use.
// A nil field disables the commands that need it.
type Services struct {
	Ingestion driving.IngestionService
	Agent     driving.AgentService
	Document  driving.DocumentService
	Knowledge driving.KnowledgeService
	Config    driving.ConfigService
}

var rootCmd = &cobra.Command{
	Use:   "enlogic",
	Short: "Extract engineering logic from documents",
	Long: `enlogic turns engineering documents into structured decision records.

Documents (text, docx, pdf, ifc) are parsed, sent to a language model for
extraction against the EngineeringLogic schema or a custom agent schema,
and stored in a relational store, a vector index and a knowledge graph,
partitioned per tenant.

Examples:
  enlogic ingest change-notice.pdf
  enlogic ingest --text "Replace A36 bolts with A325" --tenant acme
  enlogic agent create --name risks --prompt "List safety risks"
  enlogic ask "Which components are affected by the bolt change?"`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&tenantID, "tenant", "t", domain.DefaultNamespace, "Tenant namespace")
}

// SetServices installs the driving ports used by the commands.
func SetServices(s Services) {
	ingestionService = s.Ingestion
	agentService = s.Agent
	documentService = s.Document
	knowledgeService = s.Knowledge
	configService = s.Config
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
