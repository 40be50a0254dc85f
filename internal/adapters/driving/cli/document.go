package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driving"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage stored documents",
	Long:  `List, view, or delete documents stored for a tenant.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the newest documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show a document",
	Long: `Show the latest row stored for a document id.

With --row the argument is read as the numeric row id instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentGet,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document from every store",
	Long: `Delete a document from the document store, the vector index and the graph,
and remove its stored upload.

With --row only the row with that numeric id is deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentDelete,
}

var documentTenantsCmd = &cobra.Command{
	Use:   "tenants",
	Short: "List tenants that have stored documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentTenants,
}

var documentNoteCmd = &cobra.Command{
	Use:   "note [doc-id]",
	Short: "Summarize a document into a short note",
	Long: `Ask the model for a few plain lines summarizing a stored document.

Examples:
  enlogic document note ECN-042
  enlogic document note --language zh ECN-042`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentNote,
}

var (
	documentLimit    int
	documentByRow    bool
	documentRaw      bool
	documentLanguage string
	documentProvider string
	documentModel    string
)

func init() {
	documentListCmd.Flags().IntVarP(&documentLimit, "limit", "n", driving.DefaultDocumentListLimit, "Maximum documents to list")
	documentGetCmd.Flags().BoolVar(&documentByRow, "row", false, "Treat the argument as a row id")
	documentGetCmd.Flags().BoolVar(&documentRaw, "raw", false, "Print the stored extraction JSON")
	documentDeleteCmd.Flags().BoolVar(&documentByRow, "row", false, "Treat the argument as a row id")

	documentNoteCmd.Flags().StringVarP(&documentLanguage, "language", "l", "", "Note language")
	documentNoteCmd.Flags().StringVar(&documentProvider, "provider", "", "LLM provider (ollama, deepseek, openai)")
	documentNoteCmd.Flags().StringVar(&documentModel, "model", "", "LLM model override")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentTenantsCmd)
	documentCmd.AddCommand(documentNoteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(cmd.Context(), tenantID, documentLimit)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Printf("No documents found for tenant: %s\n", tenantID)
		return nil
	}

	cmd.Printf("Documents for tenant %s:\n\n", tenantID)
	for i := range docs {
		cmd.Printf("  [%d] %s\n", docs[i].RowID, docs[i].DocumentID)
		cmd.Printf("    Title: %s\n", docs[i].DocumentTitle)
		if docs[i].RiskLevel != nil {
			cmd.Printf("    Risk: %s\n", *docs[i].RiskLevel)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentTenants(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	tenants, err := documentService.Tenants(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list tenants: %w", err)
	}
	if len(tenants) == 0 {
		cmd.Println("No tenants yet")
		return nil
	}
	for _, t := range tenants {
		cmd.Println(t)
	}
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	var (
		doc *domain.Document
		err error
	)
	if documentByRow {
		rowID, perr := parseRowID(args[0])
		if perr != nil {
			return perr
		}
		doc, err = documentService.GetByRow(cmd.Context(), tenantID, rowID)
	} else {
		doc, err = documentService.Get(cmd.Context(), tenantID, args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	printDocument(cmd, doc)
	if documentRaw && len(doc.RawJSON) > 0 {
		var out bytes.Buffer
		if err := json.Indent(&out, doc.RawJSON, "", "  "); err != nil {
			return fmt.Errorf("failed to format extraction: %w", err)
		}
		cmd.Println()
		cmd.Println(out.String())
	}
	return nil
}

func runDocumentNote(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	note, err := knowledgeService.Note(cmd.Context(), driving.NoteRequest{
		TenantID:   tenantID,
		DocumentID: args[0],
		Language:   documentLanguage,
		Provider:   documentProvider,
		Model:      documentModel,
	})
	if err != nil {
		return fmt.Errorf("failed to write note: %w", err)
	}
	cmd.Println(note)
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	var (
		result *domain.DeleteResult
		err    error
	)
	if documentByRow {
		rowID, perr := parseRowID(args[0])
		if perr != nil {
			return perr
		}
		result, err = documentService.DeleteByRow(cmd.Context(), tenantID, rowID)
	} else {
		result, err = documentService.Delete(cmd.Context(), tenantID, args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted document: %s\n", result.DocumentID)
	cmd.Printf("  Document store: %s\n", okLabel(result.DocumentStore))
	cmd.Printf("  Vector store:   %s\n", okLabel(result.VectorStore))
	cmd.Printf("  Graph store:    %s\n", okLabel(result.GraphStore))
	if result.SourcePath != "" {
		cmd.Printf("  Upload removed: %s\n", okLabel(result.BlobRemoved))
	}
	return nil
}

func printDocument(cmd *cobra.Command, doc *domain.Document) {
	cmd.Printf("Document: %s\n", doc.DocumentID)
	cmd.Printf("  Row:     %d\n", doc.RowID)
	cmd.Printf("  Title:   %s\n", doc.DocumentTitle)
	if doc.DocumentType != "" {
		cmd.Printf("  Type:    %s\n", doc.DocumentType)
	}
	if doc.RiskLevel != nil {
		cmd.Printf("  Risk:    %s\n", *doc.RiskLevel)
	}
	if doc.Source != "" {
		cmd.Printf("  Source:  %s\n", doc.Source)
	}
	if doc.SourceType != "" {
		cmd.Printf("  Format:  %s\n", doc.SourceType)
	}
	if doc.State != "" {
		cmd.Printf("  State:   %s\n", doc.State)
	}
	cmd.Printf("  Created: %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	if doc.Summary != "" {
		cmd.Printf("  Summary: %s\n", doc.Summary)
	}
}

func parseRowID(s string) (int64, error) {
	rowID, err := strconv.ParseInt(s, 10, 64)
	if err != nil || rowID <= 0 {
		return 0, fmt.Errorf("invalid row id: %q", s)
	}
	return rowID, nil
}

func okLabel(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
