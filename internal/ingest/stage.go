// Package ingest converts uploaded files into index-ready staged content.
package ingest

import (
	"bytes"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
)

// Staged is one file prepared for upload. It owns a temporary file that must
// be released on every exit path; Release is idempotent.
type Staged struct {
	Filename  string
	MediaType string
	Path      string

	once sync.Once
}

// Release deletes the staged temporary file. Safe to call more than once.
func (s *Staged) Release() {
	s.once.Do(func() {
		if s.Path != "" {
			_ = os.Remove(s.Path)
		}
	})
}

// Bytes reads the staged content back.
func (s *Staged) Bytes() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read staged file: %w", err)
	}
	return data, nil
}

// Stage normalizes one upload: PDFs are converted to plain text page by page
// with page order preserved; every other type passes through byte-identical.
func Stage(filename, mediaType string, data []byte) (*Staged, error) {
	stagedName := filename
	stagedType := mediaType
	stagedData := data

	if IsPDF(filename, mediaType) {
		text, err := ExtractPDFText(data)
		if err != nil {
			return nil, fmt.Errorf("failed to extract pdf text: %w", err)
		}
		stagedName = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".txt"
		stagedType = "text/plain"
		stagedData = []byte(text)
	}

	tmp, err := os.CreateTemp("", "hrdesk-stage-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}
	if _, err := tmp.Write(stagedData); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to write staging file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to close staging file: %w", err)
	}

	return &Staged{
		Filename:  stagedName,
		MediaType: stagedType,
		Path:      tmp.Name(),
	}, nil
}

// IsPDF reports whether an upload should go through text extraction, by
// declared media type first, extension as fallback.
func IsPDF(filename, mediaType string) bool {
	if mediaType != "" {
		mt := mediaType
		if idx := strings.Index(mt, ";"); idx > 0 {
			mt = mt[:idx]
		}
		if strings.TrimSpace(mt) == "application/pdf" {
			return true
		}
	}
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// ExtractPDFText extracts plain text from every page in order and
// concatenates the results. No reflow or cleanup beyond what the extraction
// primitive returns.
func ExtractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to extract page %d: %w", i, err)
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// MediaType resolves an upload's media type from the declared value or the
// filename extension, defaulting to application/octet-stream.
func MediaType(filename, declared string) string {
	if declared != "" {
		if idx := strings.Index(declared, ";"); idx > 0 {
			return strings.TrimSpace(declared[:idx])
		}
		return declared
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		if idx := strings.Index(byExt, ";"); idx > 0 {
			return strings.TrimSpace(byExt[:idx])
		}
		return byExt
	}
	return "application/octet-stream"
}
