// Package docx reads Office Open XML word-processing documents.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.FormatReader = (*Reader)(nil)

// Reader handles DOCX documents.
type Reader struct{}

// New creates a new DOCX reader.
func New() *Reader {
	return &Reader{}
}

// SourceTypes returns the source types this reader handles.
func (r *Reader) SourceTypes() []string {
	return []string{"docx"}
}

// Read returns the body paragraphs of the document joined by newlines.
func (r *Reader) Read(_ context.Context, path string) (*driven.ReadResult, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open docx: %w", domain.ErrInput, err)
	}
	defer archive.Close()

	text, err := extractDocumentText(&archive.Reader)
	if err != nil {
		return nil, err
	}
	return &driven.ReadResult{Text: text}, nil
}

// extractDocumentText extracts text from word/document.xml.
func extractDocumentText(reader *zip.Reader) (string, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: open document.xml: %w", domain.ErrInput, err)
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%w: read document.xml: %w", domain.ErrInput, err)
		}

		return parseDocumentXML(content)
	}
	return "", fmt.Errorf("%w: word/document.xml not found", domain.ErrInput)
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
	Tabs []struct{}    `xml:"tab"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML joins paragraph text with newlines. Empty paragraphs
// keep their line so section spacing survives.
func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("%w: parse document.xml: %w", domain.ErrInput, err)
	}

	lines := make([]string, 0, len(doc.Body.Paragraphs))
	for _, para := range doc.Body.Paragraphs {
		var line strings.Builder
		for _, run := range para.Runs {
			for range run.Tabs {
				line.WriteString("\t")
			}
			for _, text := range run.Text {
				line.WriteString(text.Content)
			}
		}
		lines = append(lines, line.String())
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
