package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ErrUnsupportedType indicates the payload's content type has no extractor.
var ErrUnsupportedType = errors.New("unsupported content type")

// Text extracts plain text from an in-memory payload. Supported formats:
// plain text, PDF (github.com/ledongthuc/pdf) and DOCX
// (github.com/nguyenthenguyen/docx). Unreadable or unsupported payloads
// return an error; callers decide whether that leaves a document unindexed.
func Text(data []byte, contentType string, fileName string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty payload")
	}
	normalized := normalizeContentType(contentType, fileName, data)
	switch {
	case normalized == mimePDF:
		return extractPDF(data)
	case normalized == mimeDOCX:
		return extractDOCX(data)
	case strings.HasPrefix(normalized, "text/"):
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, normalized)
	}
}

// Normalize lowercases text, replaces punctuation (underscore excepted) with
// spaces, collapses whitespace runs and trims. It is idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	lowered := strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(lowered))
	lastSpace := false
	for _, r := range lowered {
		switch {
		case r == '_':
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}

// Summarize truncates text to roughly maxLength characters, preferring to cut
// just after the first sentence-ending period at or beyond maxLength/2.
func Summarize(text string, maxLength int) string {
	if text == "" {
		return ""
	}
	if len(text) <= maxLength {
		return text
	}

	endPos := indexFrom(text, ".", maxLength/2)
	if endPos == -1 || endPos > maxLength {
		endPos = maxLength
	} else {
		endPos++ // include the period
	}

	return strings.TrimSpace(text[:endPos]) + "..."
}

func indexFrom(s, substr string, from int) int {
	if from < 0 {
		from = 0
	}
	if from >= len(s) {
		return -1
	}
	idx := strings.Index(s[from:], substr)
	if idx == -1 {
		return -1
	}
	return from + idx
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plain text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("pdf plain text: %w", err)
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	reader, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer reader.Close()

	return stripDocxXML(reader.Editable().GetContent()), nil
}

// stripDocxXML flattens word/document.xml to text, keeping paragraph breaks.
func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// normalizeContentType cleans the declared type and resolves generic zip
// payloads to the OOXML type they actually carry.
func normalizeContentType(contentType string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if clean == "" || clean == "application/octet-stream" {
		if ext := strings.ToLower(filepath.Ext(fileName)); ext == ".txt" {
			return "text/plain"
		} else if ext == ".pdf" {
			return mimePDF
		} else if ext == ".docx" {
			return mimeDOCX
		}
	}
	if clean != "application/zip" {
		return clean
	}

	if mapped := mapOOXMLFromZip(data); mapped != "" {
		return mapped
	}

	if strings.ToLower(filepath.Ext(fileName)) == ".docx" {
		return mimeDOCX
	}
	return clean
}

func mapOOXMLFromZip(data []byte) string {
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return mimeDOCX
		}
	}
	return ""
}
