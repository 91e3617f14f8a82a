package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Extractor turns one invoice document into a single text blob, line
// oriented, pages flattened top to bottom in page order.
type Extractor interface {
	// ExtractText returns the document's text content. Blank or
	// unextractable pages contribute no lines.
	ExtractText(ctx context.Context, data []byte, contentType string) (string, error)
	// Close closes the extractor and releases resources
	Close() error
}

// FitzExtractor reads the native text layer of a PDF. This is the primary
// extraction path; digitally produced carrier invoices always carry one.
type FitzExtractor struct{}

// NewFitzExtractor creates a new FitzExtractor instance
func NewFitzExtractor() *FitzExtractor {
	return &FitzExtractor{}
}

// ExtractText joins the text of every page with a newline, skipping pages
// with no text layer.
func (e *FitzExtractor) ExtractText(_ context.Context, data []byte, _ string) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	var text strings.Builder
	for page := 0; page < doc.NumPage(); page++ {
		pageText, err := doc.Text(page)
		if err != nil {
			return "", fmt.Errorf("extracting page %d: %w", page, err)
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		text.WriteString(pageText)
		text.WriteString("\n")
	}

	return text.String(), nil
}

// Close is a no-op; fitz documents are opened per call.
func (e *FitzExtractor) Close() error {
	return nil
}

// FallbackExtractor tries the native text layer first and hands the document
// to an OCR transcriber when the text layer is empty, which is what a scanned
// (image-only) invoice looks like.
type FallbackExtractor struct {
	primary  Extractor
	fallback Extractor
}

// NewFallbackExtractor creates a new FallbackExtractor instance
func NewFallbackExtractor(primary, fallback Extractor) *FallbackExtractor {
	return &FallbackExtractor{primary: primary, fallback: fallback}
}

// ExtractText extracts via the primary extractor, falling back when the
// result is an error or whitespace-only text.
func (e *FallbackExtractor) ExtractText(ctx context.Context, data []byte, contentType string) (string, error) {
	text, err := e.primary.ExtractText(ctx, data, contentType)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	return e.fallback.ExtractText(ctx, data, contentType)
}

// Close closes both extractors.
func (e *FallbackExtractor) Close() error {
	if err := e.primary.Close(); err != nil {
		return err
	}
	return e.fallback.Close()
}
