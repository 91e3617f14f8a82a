package document

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiExtractor transcribes scanned invoices using Google Gemini
type GeminiExtractor struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiExtractor creates a new GeminiExtractor instance
func NewGeminiExtractor(apiKey string, modelName string) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)

	return &GeminiExtractor{
		client: client,
		model:  model,
	}, nil
}

// ExtractText transcribes the document page by page and joins the page
// transcripts with newlines, preserving page order.
func (g *GeminiExtractor) ExtractText(ctx context.Context, data []byte, contentType string) (string, error) {
	pages, err := pagesAsPNG(data, contentType)
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for i, page := range pages {
		transcript, err := g.transcribePage(ctx, page)
		if err != nil {
			return "", fmt.Errorf("transcribing page %d: %w", i, err)
		}
		if transcript == "" {
			continue
		}
		text.WriteString(transcript)
		text.WriteString("\n")
	}

	return text.String(), nil
}

func (g *GeminiExtractor) transcribePage(ctx context.Context, pngData []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	parts := []genai.Part{
		genai.ImageData("png", pngData),
		genai.Text(invoiceTranscriptPrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	return cleanTranscript(responseText.String()), nil
}

// Close closes the Gemini client
func (g *GeminiExtractor) Close() error {
	return g.client.Close()
}
