package extractor

import (
	"path/filepath"
	"strings"
)

// Extract dispatches on the file extension (case-insensitive).
// Only .pdf and .docx are supported; anything else yields no content
// and no error, so callers can skip extraction without failing.
func Extract(filename string, data []byte, ocr *OCRConfig) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return ExtractPDF(data, ocr)
	case ".docx":
		return ExtractDOCX(data)
	default:
		return "", nil
	}
}
