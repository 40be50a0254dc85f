package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/enlogic/internal/logger"
	"github.com/custodia-labs/enlogic/internal/pipeline"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Extract and store documents",
	Long: `Parse each file, extract engineering logic with a language model, and store
the result in the document store, the vector index and the graph.

Supported formats are plain text, docx, pdf and ifc. The format is taken from
the file suffix unless --source-type is given. Several files are processed
concurrently on up to --workers goroutines.

Examples:
  enlogic ingest ecn-042.pdf
  enlogic ingest --text "Replace A36 bolts with A325 on the bracket"
  enlogic ingest --agent 7f9c... --workers 8 notes/*.docx`,
	RunE: runIngest,
}

var (
	ingestText       string
	ingestAgent      string
	ingestProvider   string
	ingestModel      string
	ingestSourceType string
	ingestWorkers    int
)

func init() {
	ingestCmd.Flags().StringVar(&ingestText, "text", "", "Inline text to ingest instead of files")
	ingestCmd.Flags().StringVarP(&ingestAgent, "agent", "a", "", "Agent id whose schema drives extraction")
	ingestCmd.Flags().StringVar(&ingestProvider, "provider", "", "LLM provider (ollama, deepseek, openai)")
	ingestCmd.Flags().StringVar(&ingestModel, "model", "", "LLM model override")
	ingestCmd.Flags().StringVar(&ingestSourceType, "source-type", "", "Override the format derived from the file suffix")
	ingestCmd.Flags().IntVarP(&ingestWorkers, "workers", "w", 0, "Concurrent ingests (0 = configured default)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}
	if ingestText != "" && len(args) > 0 {
		return errors.New("use either --text or files, not both")
	}
	if ingestText == "" && len(args) == 0 {
		return errors.New("nothing to ingest: pass files or --text")
	}

	ctx := cmd.Context()

	if ingestText != "" {
		out, err := ingestionService.Ingest(ctx, ingestRequest())
		if err != nil {
			return fmt.Errorf("failed to ingest text: %w", err)
		}
		printIngested(cmd, "text", out)
		return nil
	}

	reqs := make([]pipeline.Context, 0, len(args))
	discardAll := func() {
		for _, req := range reqs {
			discardUpload(cmd, req.FilePath)
		}
	}
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			discardAll()
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		name := filepath.Base(path)
		stored, err := ingestionService.Upload(ctx, name, data)
		if err != nil {
			discardAll()
			return fmt.Errorf("failed to upload %s: %w", path, err)
		}
		req := ingestRequest()
		req.FileName = name
		req.FilePath = stored
		reqs = append(reqs, req)
	}

	results := ingestionService.IngestBatch(ctx, reqs, ingestWorkers)

	failed := 0
	for i, res := range results {
		if res.Err != nil {
			failed++
			cmd.Printf("Failed %s: %v\n", args[i], res.Err)
			discardUpload(cmd, reqs[i].FilePath)
			continue
		}
		printIngested(cmd, args[i], res.Context)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d ingests failed", failed, len(results))
	}
	return nil
}

// discardUpload removes an upload left by a failed ingest. A failure here
// only warns, the ingest error is the one reported.
func discardUpload(cmd *cobra.Command, path string) {
	if err := ingestionService.Discard(cmd.Context(), path); err != nil {
		logger.Warn("upload %s not removed: %v", path, err)
	}
}

func ingestRequest() pipeline.Context {
	return pipeline.Context{
		TenantID:   tenantID,
		Text:       ingestText,
		SourceType: ingestSourceType,
		Provider:   ingestProvider,
		Model:      ingestModel,
		AgentID:    ingestAgent,
	}
}

func printIngested(cmd *cobra.Command, input string, out pipeline.Context) {
	if out.Document == nil {
		cmd.Printf("Ingested %s\n", input)
		return
	}
	doc := out.Document
	cmd.Printf("Ingested %s: %s (row %d)\n", input, doc.DocumentID, doc.RowID)
	cmd.Printf("  Title: %s\n", doc.DocumentTitle)
	cmd.Printf("  Stores: document=%s vector=%s graph=%s\n",
		okLabel(out.StorageResult.DocumentStore),
		okLabel(out.StorageResult.VectorStore),
		okLabel(out.StorageResult.GraphStore),
	)
	if logger.IsVerbose() {
		cmd.Printf("  Source: %s (%s)\n", doc.Source, doc.SourceType)
	}
}
