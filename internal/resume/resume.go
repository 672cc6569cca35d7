// Package resume turns résumé files into plain text for analysis.
package resume

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// MaxFileBytes bounds the size of a résumé file.
const MaxFileBytes = 10 << 20

// ErrUnsupported is returned for file types Load cannot read.
var ErrUnsupported = errors.New("unsupported résumé format")

// Load reads the file at path and extracts its text based on the
// extension: .txt and .md are read as is, .pdf and .docx are parsed.
func Load(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat résumé: %w", err)
	}
	if info.Size() > MaxFileBytes {
		return "", fmt.Errorf("résumé %s is %d bytes, limit is %d", path, info.Size(), MaxFileBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read résumé: %w", err)
	}
	text, err := Extract(filepath.Ext(path), data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return text, nil
}

// Extract decodes data according to ext (with or without the dot) and
// returns normalized text.
func Extract(ext string, data []byte) (string, error) {
	var (
		raw string
		err error
	)
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "txt", "md", "text", "":
		raw = string(data)
	case "pdf":
		raw, err = pdfText(data)
	case "docx":
		raw, err = docxText(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	if err != nil {
		return "", err
	}
	return Normalize(raw), nil
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("pdf page %d: %w", i, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}
	defer doc.Close()
	return stripDocxXML(doc.Editable().GetContent()), nil
}

var (
	paragraphEnd = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:tab\s*/>`)
	xmlTag       = regexp.MustCompile(`<[^>]+>`)
)

// stripDocxXML reduces WordprocessingML to text, one paragraph per line.
func stripDocxXML(content string) string {
	content = paragraphEnd.ReplaceAllStringFunc(content, func(m string) string {
		if strings.HasPrefix(m, "<w:tab") {
			return " "
		}
		return "\n"
	})
	return html.UnescapeString(xmlTag.ReplaceAllString(content, ""))
}

// Normalize collapses runs of spaces within lines, trims each line, and
// squeezes consecutive blank lines down to one.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
