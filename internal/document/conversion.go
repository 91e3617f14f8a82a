package document

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// invoiceTranscriptPrompt is the shared prompt used by the OCR transcribers.
const invoiceTranscriptPrompt = `You are transcribing one page of a carrier shipping invoice.

Read every line of text on the page and transcribe it exactly as printed, top to bottom, one output line per printed line. Keep the values within a line in their printed left-to-right order, separated by single spaces. Keep all numbers, dates, reference codes and currency values exactly as they appear, including comma grouping and decimal points.

Important:
- Do not summarise, interpret or reformat the content
- Do not merge or split lines
- Do not add any text before or after the transcription
- Do not use markdown code blocks`

// pdfToImages renders every page of a PDF to a PNG image
func pdfToImages(pdfData []byte) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	var pages [][]byte
	for page := 0; page < doc.NumPage(); page++ {
		img, err := doc.Image(page)
		if err != nil {
			return nil, fmt.Errorf("rendering PDF page %d: %w", page, err)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding PNG: %w", err)
		}
		pages = append(pages, buf.Bytes())
	}

	return pages, nil
}

// imageToPNG converts any image format to PNG
func imageToPNG(imageData []byte, mimeType string) ([]byte, error) {
	var img image.Image
	var err error

	// HEIC/HEIF (phone scans) is not supported by Go's standard image package
	if isHEICFormat(imageData) || isHEICMimeType(mimeType) {
		img, err = heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(imageData))
		if err != nil {
			if strings.Contains(err.Error(), "unknown format") || strings.Contains(err.Error(), "unsupported") {
				return nil, fmt.Errorf("unsupported image format. Supported formats: JPEG, PNG, GIF, HEIC, HEIF, PDF. Error: %w", err)
			}
			return nil, fmt.Errorf("decoding image: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// isHEICFormat checks if the image data is in HEIC/HEIF format
// HEIC files typically start with specific magic bytes
func isHEICFormat(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	// HEIC files carry an ftyp box at offset 4 with a HEIC-related brand
	if string(data[4:8]) == "ftyp" {
		brand := string(data[8:12])
		if brand == "heic" || brand == "heif" || brand == "mif1" || brand == "msf1" {
			return true
		}
	}
	return false
}

// isHEICMimeType checks if the MIME type indicates HEIC/HEIF format
func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return mimeType == "image/heic" || mimeType == "image/heif" ||
		strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// pagesAsPNG normalizes a document for OCR: a PDF becomes one PNG per page,
// any image format becomes a single PNG page.
func pagesAsPNG(data []byte, contentType string) ([][]byte, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if mimeType == "" {
		mimeType = "application/pdf" // default
	}

	if mimeType == "application/pdf" {
		pages, err := pdfToImages(data)
		if err != nil {
			return nil, fmt.Errorf("converting PDF to images: %w", err)
		}
		return pages, nil
	}

	if mimeType != "image/png" || isHEICFormat(data) || isHEICMimeType(mimeType) {
		pngData, err := imageToPNG(data, mimeType)
		if err != nil {
			return nil, fmt.Errorf("converting image to PNG: %w", err)
		}
		return [][]byte{pngData}, nil
	}

	return [][]byte{data}, nil
}
