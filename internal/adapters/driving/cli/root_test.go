package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/enlogic/internal/adapters/driven/blob/filesystem"
	"github.com/custodia-labs/enlogic/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
	"github.com/custodia-labs/enlogic/internal/core/services"
	"github.com/custodia-labs/enlogic/internal/readers"
)

// extractionReply is a complete EngineeringLogic response.
const extractionReply = `{
  "document_metadata": {"document_id": "ECN-001", "document_title": "Bolt material change", "document_type": "ECN", "source": null},
  "summary": "Replace A36 bolts with A325 on the bracket.",
  "decision_background": ["Fatigue failures observed"],
  "key_clauses": ["Use A325 for all bracket bolts"],
  "risks": ["Supply delay"],
  "risk_level": "medium",
  "entities": [{"name": "bracket", "type": "component", "description": null}],
  "causal_relations": [],
  "affected_components": ["bracket assembly"],
  "source_reference": null
}`

const (
	schemaReply = `{"type":"object","properties":{"risks":{"type":"array","items":{"type":"string"}}},"required":["risks"]}`
	agentReply  = `{"risks":["Supply delay"]}`
	answerReply = "The bracket assembly is affected."
	noteReply   = "Bracket bolts move from A36 to A325."
)

// routingLLM answers by the kind of user prompt it receives.
type routingLLM struct{}

func (routingLLM) Generate(ctx context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	return routingLLM{}.Chat(ctx, []driven.ChatMessage{{Role: driven.RoleUser, Content: prompt}}, driven.ChatOptions{})
}

func (routingLLM) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	prompt := messages[len(messages)-1].Content
	switch {
	case strings.HasPrefix(prompt, "Requirement"):
		return schemaReply, nil
	case strings.HasPrefix(prompt, "User agent prompt:"):
		return agentReply, nil
	case strings.HasPrefix(prompt, "Source content:"):
		return extractionReply, nil
	case strings.HasPrefix(prompt, "Summarize"):
		return noteReply, nil
	default:
		return answerReply, nil
	}
}

func (routingLLM) ModelName() string            { return "routing" }
func (routingLLM) Ping(_ context.Context) error { return nil }
func (routingLLM) Close() error                 { return nil }

type routingProvider struct{}

func (routingProvider) LLM(_ context.Context, _, _ string) (driven.LLMService, error) {
	return routingLLM{}, nil
}

// uploadDir is where the services from setupTestServices keep uploads.
var uploadDir string

// setupTestServices wires real services over in-memory stores and a
// scripted model. The returned func restores the previous state.
func setupTestServices(t *testing.T) func() {
	t.Helper()

	docs := memory.NewDocumentStore()
	agents := memory.NewAgentStore()
	graph := memory.NewGraphStore()
	blobs, err := filesystem.NewStore(t.TempDir())
	require.NoError(t, err)
	uploadDir = blobs.Dir()

	llms := routingProvider{}
	persister := services.NewPersister(docs, services.WithGraphStore(graph), services.WithBlobStore(blobs))
	p := services.NewIngestionPipeline(
		services.NewDispatcher(readers.NewDefaultRegistry()),
		services.NewExtractor(llms, agents),
		persister,
	)

	SetServices(Services{
		Ingestion: services.NewIngestionService(p, blobs, 2),
		Agent:     services.NewAgentService(agents, llms),
		Document:  services.NewDocumentService(docs, persister),
		Knowledge: services.NewKnowledgeService(llms, docs, nil, nil, graph),
		Config:    services.NewConfigService(memory.NewConfigStore()),
	})

	return func() {
		SetServices(Services{})
		resetFlags(rootCmd)
	}
}

// resetFlags restores every flag in the tree to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "enlogic", rootCmd.Use)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"ingest", "agent", "document", "ask", "config", "mcp", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_TenantDefault(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("tenant")
	require.NotNil(t, flag)
	assert.Equal(t, "default", flag.DefValue)
}

func TestCommands_WithoutServices(t *testing.T) {
	SetServices(Services{})

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"ingest", "--text", "x"}, "ingestion service not configured"},
		{[]string{"agent", "list"}, "agent service not configured"},
		{[]string{"document", "list"}, "document service not configured"},
		{[]string{"ask", "why"}, "knowledge service not configured"},
		{[]string{"config", "path"}, "config service not configured"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
