package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ConverterResponse is the shape the external document converter returns
// for a PDF upload.
type ConverterResponse struct {
	Document struct {
		MdContent string `json:"md_content"`
	} `json:"document"`
}

// Extractor turns uploaded files into plain note text. Text files are read
// directly; PDFs are validated with pdfcpu and converted to markdown by an
// external converter endpoint.
type Extractor struct {
	converterURL string
	httpClient   *http.Client
}

func NewExtractor(converterURL string) *Extractor {
	return &Extractor{
		converterURL: converterURL,
		httpClient:   &http.Client{Timeout: 120 * time.Second},
	}
}

// ExtractText returns the note text for an uploaded file, dispatching on
// the filename extension.
func (e *Extractor) ExtractText(ctx context.Context, filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md":
		return string(data), nil
	case ".pdf":
		return e.extractPDF(ctx, filename, data)
	default:
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
}

func (e *Extractor) extractPDF(ctx context.Context, filename string, data []byte) (string, error) {
	if e.converterURL == "" {
		return "", fmt.Errorf("pdf converter is not configured")
	}

	// Reject broken uploads before shipping them to the converter.
	tmp, err := os.CreateTemp("", "upload-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()
	if err := api.ValidateFile(tmp.Name(), api.LoadConfiguration()); err != nil {
		return "", fmt.Errorf("invalid pdf: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("build converter request: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("build converter request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("build converter request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.converterURL, &body)
	if err != nil {
		return "", fmt.Errorf("create converter request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call converter: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("converter returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var converted ConverterResponse
	if err := json.NewDecoder(resp.Body).Decode(&converted); err != nil {
		return "", fmt.Errorf("decode converter response: %w", err)
	}
	return converted.Document.MdContent, nil
}

// TitleFromFilename derives a readable note title from an uploaded
// filename.
func TitleFromFilename(filename string) string {
	name := filepath.Base(filename)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}
