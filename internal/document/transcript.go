package document

import "strings"

// cleanTranscript strips the decoration vision models tend to wrap
// transcriptions in: markdown code fences and surrounding whitespace.
func cleanTranscript(text string) string {
	text = strings.TrimSpace(text)

	// Remove opening markdown code blocks
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Remove a closing fence, which may trail the transcription
	text = strings.TrimSuffix(text, "```")

	return strings.TrimSpace(text)
}
