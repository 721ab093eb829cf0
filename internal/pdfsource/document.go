package pdfsource

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/ledongthuc/pdf"

	"label-scanner/internal/carriers"
)

// ErrInvalidPage is returned for page numbers outside the document or null page objects
var ErrInvalidPage = errors.New("invalid page")

// Document is an open PDF that serves pages to the scanner.
// All reader access is serialised; Page is safe for concurrent use.
type Document struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	reader *pdf.Reader
	pages  int
	closed bool
}

// Open opens the PDF at path
func Open(path string) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("failed to parse %s: %v", path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	return &Document{
		path:   path,
		file:   f,
		reader: reader,
		pages:  reader.NumPage(),
	}, nil
}

// Path returns the file the document was opened from
func (d *Document) Path() string {
	return d.path
}

// NumPages returns the page count
func (d *Document) NumPages() int {
	return d.pages
}

// Page extracts page n (1-based). Panics inside the PDF library are
// returned as errors.
func (d *Document) Page(n int) (page *carriers.Page, err error) {
	if n < 1 || n > d.pages {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidPage, n, d.pages)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, os.ErrClosed
	}

	defer func() {
		if r := recover(); r != nil {
			page, err = nil, fmt.Errorf("malformed content on page %d: %v", n, r)
		}
	}()

	p := d.reader.Page(n)
	if p.V.IsNull() {
		return nil, fmt.Errorf("%w: %d is null", ErrInvalidPage, n)
	}

	width, height := mediaBox(p.V)

	content := p.Content()
	glyphs := make([]Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, Glyph{S: t.S, X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize})
	}

	return BuildPage(n, glyphs, width, height), nil
}

// Close releases the underlying file
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	return d.file.Close()
}

// mediaBox returns page width and height, following the page tree for an
// inherited box. Zero values mean the box is missing or malformed.
func mediaBox(v pdf.Value) (width, height float64) {
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() == 4 {
			width = box.Index(2).Float64() - box.Index(0).Float64()
			height = box.Index(3).Float64() - box.Index(1).Float64()
			return width, height
		}
		v = v.Key("Parent")
	}
	return 0, 0
}
