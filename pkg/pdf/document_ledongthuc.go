package pdf

import (
	"fmt"
	"io"
	"os"

	lpdf "github.com/ledongthuc/pdf"
)

// LedongthucDocument implements the Document interface using ledongthuc/pdf library
type LedongthucDocument struct {
	file     io.Closer
	reader   *lpdf.Reader
	filepath string
	metadata Metadata
	closed   bool
}

// OpenWithLedongthuc opens a PDF file using the ledongthuc/pdf library
func OpenWithLedongthuc(filepath string) (doc Document, err error) {
	var f *os.File
	defer func() {
		if rec := recover(); rec != nil {
			if f != nil {
				f.Close()
			}
			doc, err = nil, fmt.Errorf("failed to read PDF with ledongthuc: %v", rec)
		}
	}()

	f, r, err := lpdf.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF with ledongthuc: %w", err)
	}

	d := &LedongthucDocument{
		file:     f,
		reader:   r,
		filepath: filepath,
	}
	d.extractMetadata()
	return d, nil
}

// extractMetadata reads the trailer's Info dictionary
func (d *LedongthucDocument) extractMetadata() {
	info := d.reader.Trailer().Key("Info")
	d.metadata = Metadata{
		Title:    info.Key("Title").Text(),
		Author:   info.Key("Author").Text(),
		Subject:  info.Key("Subject").Text(),
		Creator:  info.Key("Creator").Text(),
		Producer: info.Key("Producer").Text(),
	}
}

// GetMetadata returns the PDF metadata
func (d *LedongthucDocument) GetMetadata() Metadata {
	return d.metadata
}

// PageCount returns the total number of pages
func (d *LedongthucDocument) PageCount() int {
	return d.reader.NumPage()
}

// GetPage returns a specific page by index (0-based)
func (d *LedongthucDocument) GetPage(index int) (Page, error) {
	if d.closed {
		return nil, fmt.Errorf("document %s is closed", d.filepath)
	}
	if err := checkPageIndex(index, d.PageCount()); err != nil {
		return nil, err
	}
	return NewLedongthucPage(d.reader, index+1)
}

// Close releases resources associated with the document
func (d *LedongthucDocument) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.file.Close()
}

// NewLedongthucPage extracts the drawable objects of one page
func NewLedongthucPage(reader *lpdf.Reader, pageNumber int) (page Page, err error) {
	if pageNumber < 1 || pageNumber > reader.NumPage() {
		return nil, fmt.Errorf("invalid page number: %d", pageNumber)
	}
	defer recoverContent(pageNumber, &err)

	p := reader.Page(pageNumber)

	width, height := defaultPageWidth, defaultPageHeight
	mediaBox := p.V.Key("MediaBox")
	if mediaBox.Kind() == lpdf.Array && mediaBox.Len() == 4 {
		// MediaBox is [x0, y0, x1, y1]
		width = mediaBox.Index(2).Float64() - mediaBox.Index(0).Float64()
		height = mediaBox.Index(3).Float64() - mediaBox.Index(1).Float64()
	}

	content := p.Content()
	var objects Objects
	for _, t := range content.Text {
		objects.Texts = append(objects.Texts, TextObject{
			Text:     t.S,
			Font:     t.Font,
			FontSize: t.FontSize,
			X:        t.X,
			Y:        flipY(height, t.Y),
			Width:    t.W,
		})
	}
	for _, r := range content.Rect {
		objects.Rects = append(objects.Rects, RectObject{BBox: BoundingBox{
			X0: r.Min.X,
			Y0: flipY(height, r.Max.Y),
			X1: r.Max.X,
			Y1: flipY(height, r.Min.Y),
		}})
	}

	return NewObjectPage(pageNumber, width, height, objects), nil
}
