package document

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaExtractor transcribes scanned invoices using a local Ollama vision
// model. Models with decent OCR (qwen2-vl, llava:1.6) work best; smaller
// vision models tend to drop columns from dense invoice tables.
type OllamaExtractor struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaExtractor creates a new OllamaExtractor instance
func NewOllamaExtractor(baseURL string, modelName string) (*OllamaExtractor, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if modelName == "" {
		modelName = "llava"
	}

	return &OllamaExtractor{
		baseURL: baseURL,
		model:   modelName,
		client: &http.Client{
			Timeout: 120 * time.Second, // vision models can be slow
		},
	}, nil
}

// ollamaChatRequest represents the request body for Ollama's chat API
type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Images   []string        `json:"images,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ollamaChatResponse represents the response from Ollama's chat API
type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

// ExtractText transcribes the document page by page and joins the page
// transcripts with newlines, preserving page order.
func (o *OllamaExtractor) ExtractText(ctx context.Context, data []byte, contentType string) (string, error) {
	pages, err := pagesAsPNG(data, contentType)
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for i, page := range pages {
		transcript, err := o.transcribePage(ctx, page)
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

func (o *OllamaExtractor) transcribePage(ctx context.Context, pngData []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 120*time.Second)
	defer cancel()

	imageBase64 := base64.StdEncoding.EncodeToString(pngData)

	reqBody := ollamaChatRequest{
		Model:  o.model,
		Stream: false,
		Messages: []ollamaMessage{
			{
				Role:    "system",
				Content: "You are an expert at reading carrier shipping invoices. You transcribe printed text exactly, without interpreting or reformatting it.",
			},
			{
				Role:    "user",
				Content: invoiceTranscriptPrompt,
			},
		},
		Images: []string{imageBase64},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", o.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return cleanTranscript(chatResp.Message.Content), nil
}

// Close closes the Ollama extractor (no-op for HTTP client)
func (o *OllamaExtractor) Close() error {
	return nil
}
