package article

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pdf "rsc.io/pdf"
)

// Document is article text acquired from a file.
type Document struct {
	Title string
	Text  string
}

// LoadFile reads an article from path. Plain text and markdown are read
// verbatim, HTML is cleaned and PDF text is extracted page by page. The
// title is the file name without its extension.
func LoadFile(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var (
		text string
		err  error
	)
	switch ext {
	case ".txt", ".md", ".markdown", "":
		text, err = readText(path)
	case ".html", ".htm":
		text, err = readText(path)
		text = CleanHTML(text)
	case ".pdf":
		text, err = ExtractPDFText(path)
	default:
		return nil, fmt.Errorf("unsupported article file type %q", ext)
	}
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("article file %s has no text", path)
	}
	return &Document{Title: title, Text: text}, nil
}

func readText(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read article: %w", err)
	}
	return string(b), nil
}

// ExtractPDFText returns the text layer of every page, pages separated by
// blank lines. Pages without a text layer are skipped.
func ExtractPDFText(path string) (text string, err error) {
	r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	// The pdf reader panics on malformed content streams.
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("read pdf %s: %v", path, rec)
		}
	}()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		var line strings.Builder
		for _, t := range p.Content().Text {
			line.WriteString(t.S)
		}
		if s := strings.TrimSpace(line.String()); s != "" {
			if b.Len() > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString(s)
		}
	}
	return b.String(), nil
}
