// Package pdf reads PDF documents into layout-aware markdown.
//
// Text is reconstructed row by row with github.com/ledongthuc/pdf. Rows
// set in a font notably larger than the page's body text become
// markdown headings, bullet glyphs become list items, and pages are
// separated by blank lines.
package pdf

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.FormatReader = (*Reader)(nil)

// Default limits.
const (
	DefaultMaxPages = 500

	// Rows at least this many times the body size become "#" headings.
	h1Ratio = 1.6
	// Rows at least this many times the body size become "##" headings.
	h2Ratio = 1.25
)

// Reader handles PDF documents.
type Reader struct {
	maxPages int
}

// Option configures the PDF reader.
type Option func(*Reader)

// WithMaxPages limits how many pages are read.
func WithMaxPages(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.maxPages = n
		}
	}
}

// New creates a new PDF reader.
func New(opts ...Option) *Reader {
	r := &Reader{maxPages: DefaultMaxPages}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SourceTypes returns the source types this reader handles.
func (r *Reader) SourceTypes() []string {
	return []string{"pdf"}
}

// Read converts the PDF at path to markdown.
func (r *Reader) Read(_ context.Context, path string) (result *driven.ReadResult, err error) {
	// The PDF parser panics on some malformed files.
	defer func() {
		if p := recover(); p != nil {
			result, err = nil, fmt.Errorf("%w: malformed pdf: %v", domain.ErrInput, p)
		}
	}()

	f, doc, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %w", domain.ErrInput, err)
	}
	defer f.Close()

	total := doc.NumPage()
	if total > r.maxPages {
		total = r.maxPages
	}

	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			// Unreadable pages are skipped, not fatal.
			continue
		}
		if md := renderPage(toLines(rows)); md != "" {
			pages = append(pages, md)
		}
	}

	return &driven.ReadResult{Text: strings.Join(pages, "\n\n")}, nil
}

// line is one reconstructed text row.
type line struct {
	Text string
	Size float64
}

func toLines(rows pdf.Rows) []line {
	lines := make([]line, 0, len(rows))
	for _, row := range rows {
		texts := append([]pdf.Text(nil), row.Content...)
		sort.SliceStable(texts, func(i, j int) bool { return texts[i].X < texts[j].X })

		var b strings.Builder
		var size float64
		prevEnd := math.Inf(-1)
		for _, t := range texts {
			if t.S == "" {
				continue
			}
			if b.Len() > 0 && t.X-prevEnd > 0.15*t.FontSize && !strings.HasPrefix(t.S, " ") {
				b.WriteByte(' ')
			}
			b.WriteString(t.S)
			prevEnd = t.X + t.W
			if t.FontSize > size {
				size = t.FontSize
			}
		}
		if text := cleanText(b.String()); text != "" {
			lines = append(lines, line{Text: text, Size: size})
		}
	}
	return lines
}

// renderPage turns rows into markdown relative to the page's body size.
func renderPage(lines []line) string {
	if len(lines) == 0 {
		return ""
	}
	body := bodySize(lines)

	out := make([]string, 0, len(lines))
	for _, l := range lines {
		switch {
		case body > 0 && l.Size >= body*h1Ratio && isHeadingText(l.Text):
			out = append(out, "# "+l.Text)
		case body > 0 && l.Size >= body*h2Ratio && isHeadingText(l.Text):
			out = append(out, "## "+l.Text)
		case isBullet(l.Text):
			out = append(out, "- "+strings.TrimSpace(strings.TrimLeft(l.Text, "•·▪◦‣-*")))
		default:
			out = append(out, l.Text)
		}
	}
	return strings.Join(out, "\n")
}

// bodySize is the font size covering the most characters on the page.
func bodySize(lines []line) float64 {
	weights := make(map[float64]int)
	for _, l := range lines {
		weights[math.Round(l.Size*10)/10] += len([]rune(l.Text))
	}
	var best float64
	bestWeight := -1
	for size, w := range weights {
		if w > bestWeight || (w == bestWeight && size < best) {
			best, bestWeight = size, w
		}
	}
	return best
}

// isHeadingText rejects long rows that happen to use a large font.
func isHeadingText(text string) bool {
	return len([]rune(text)) <= 120 && !strings.HasSuffix(text, ",")
}

func isBullet(text string) bool {
	for _, prefix := range []string{"•", "·", "▪", "◦", "‣", "- ", "* "} {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}

// cleanText drops NULs and collapses runs of whitespace.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	var b strings.Builder
	lastSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
			}
			lastSpace = true
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimSpace(b.String())
}
