// Package source reads documents from disk into plain text and writes
// revised text back.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/csheth/vibewrite/internal/paragraph"
)

type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
)

var (
	ErrTooLarge    = errors.New("document exceeds size limit")
	ErrNotUTF8     = errors.New("document is not valid UTF-8")
	ErrUnsupported = errors.New("unsupported document type")
	ErrReadOnly    = errors.New("document format cannot be written")
)

var extraneousWhitespace = regexp.MustCompile(`[ \t\f\v]+`)

// Document is a loaded text body.
type Document struct {
	Path   string
	Format Format
	Text   string
}

// Writable reports whether Save can write back to the document's own path.
func (d Document) Writable() bool {
	return d.Format != FormatPDF
}

// FormatFor maps a file extension to a Format.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".txt", ".text", "":
		return FormatText, nil
	case ".pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
}

// Load reads path. Text files larger than maxBytes are rejected; a
// non-positive maxBytes disables the limit. PDFs yield one paragraph per page.
func Load(path string, maxBytes int64) (Document, error) {
	format, err := FormatFor(path)
	if err != nil {
		return Document{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return Document{}, err
	}
	if info.IsDir() {
		return Document{}, fmt.Errorf("%s is a directory", path)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return Document{}, fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrTooLarge, path, info.Size(), maxBytes)
	}

	var text string
	if format == FormatPDF {
		text, err = readPDF(path)
	} else {
		text, err = readText(path)
	}
	if err != nil {
		return Document{}, err
	}
	return Document{Path: path, Format: format, Text: text}, nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s", ErrNotUTF8, path)
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}

func readPDF(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to extract pdf text from page %d: %w", i, err)
		}
		if text := collapseWhitespace(content); text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("no extractable text in %s", path)
	}
	return strings.Join(pages, paragraph.Separator), nil
}

// collapseWhitespace flattens a page into a single paragraph.
func collapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(extraneousWhitespace.ReplaceAllString(s, " "))
}

// Save writes text to path through a temporary file and a rename.
func Save(path, text string) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	if format == FormatPDF {
		return fmt.Errorf("%w: %s", ErrReadOnly, path)
	}
	dir := filepath.Dir(path)
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := io.WriteString(tmp, text); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, mode); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

// RevisedPath suggests where to write a revision of a read-only document.
func RevisedPath(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	if strings.EqualFold(ext, ".pdf") {
		return base + ".revised.md"
	}
	return base + ".revised" + ext
}
