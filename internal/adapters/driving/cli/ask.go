package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/enlogic/internal/core/ports/driving"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question of the knowledge base",
	Long: `Answer a question from the tenant's stored documents, the vector index and
the knowledge graph.

Examples:
  enlogic ask "Which components does ECN-042 affect?"
  enlogic ask --language zh "What are the main risks?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var (
	askLanguage    string
	askProvider    string
	askModel       string
	askShowContext bool
)

func init() {
	askCmd.Flags().StringVarP(&askLanguage, "language", "l", "", "Answer language")
	askCmd.Flags().StringVar(&askProvider, "provider", "", "LLM provider (ollama, deepseek, openai)")
	askCmd.Flags().StringVar(&askModel, "model", "", "LLM model override")
	askCmd.Flags().BoolVar(&askShowContext, "context", false, "Print the retrieved context")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	answer, err := knowledgeService.Ask(cmd.Context(), driving.AskRequest{
		TenantID: tenantID,
		Question: strings.Join(args, " "),
		Language: askLanguage,
		Provider: askProvider,
		Model:    askModel,
	})
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	if askShowContext && answer.Context != "" {
		cmd.Println("Context:")
		cmd.Println(answer.Context)
		cmd.Println()
	}
	cmd.Println(answer.Answer)
	return nil
}
