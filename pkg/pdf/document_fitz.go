package pdf

import (
	"fmt"
	"image/draw"

	"github.com/gen2brain/go-fitz"
)

// FitzDocument implements the Document interface using MuPDF through go-fitz
type FitzDocument struct {
	doc      *fitz.Document
	filepath string
	pages    int
	metadata Metadata
	closed   bool
}

// OpenWithFitz opens a PDF file with MuPDF
func OpenWithFitz(filepath string) (Document, error) {
	doc, err := fitz.New(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF with mupdf: %w", err)
	}

	d := &FitzDocument{
		doc:      doc,
		filepath: filepath,
		pages:    doc.NumPage(),
	}
	d.extractMetadata()
	return d, nil
}

func (d *FitzDocument) extractMetadata() {
	m := d.doc.Metadata()
	d.metadata = Metadata{
		Title:    m["title"],
		Author:   m["author"],
		Subject:  m["subject"],
		Creator:  m["creator"],
		Producer: m["producer"],
	}
}

// GetMetadata returns the PDF metadata
func (d *FitzDocument) GetMetadata() Metadata {
	return d.metadata
}

// PageCount returns the total number of pages
func (d *FitzDocument) PageCount() int {
	return d.pages
}

// GetPage returns a specific page by index (0-based)
func (d *FitzDocument) GetPage(index int) (Page, error) {
	if d.closed {
		return nil, fmt.Errorf("document %s is closed", d.filepath)
	}
	if err := checkPageIndex(index, d.pages); err != nil {
		return nil, err
	}

	bound, err := d.doc.Bound(index)
	if err != nil {
		return nil, fmt.Errorf("failed to read bounds of page %d: %w", index+1, err)
	}
	return &FitzPage{
		doc:   d,
		index: index,
		bbox: BoundingBox{
			X0: 0,
			Y0: 0,
			X1: float64(bound.Dx()),
			Y1: float64(bound.Dy()),
		},
	}, nil
}

// Close releases the MuPDF context. Further calls are no-ops.
func (d *FitzDocument) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.doc.Close()
}

// FitzPage implements the Page interface using MuPDF
type FitzPage struct {
	doc   *FitzDocument
	index int
	bbox  BoundingBox
}

// GetPageNumber returns the page number (1-based)
func (p *FitzPage) GetPageNumber() int { return p.index + 1 }

// GetWidth returns the page width
func (p *FitzPage) GetWidth() float64 { return p.bbox.Width() }

// GetHeight returns the page height
func (p *FitzPage) GetHeight() float64 { return p.bbox.Height() }

// GetBBox returns the page bounding box
func (p *FitzPage) GetBBox() BoundingBox { return p.bbox }

// ExtractText extracts text from the page
func (p *FitzPage) ExtractText() string {
	if p.doc.closed {
		return ""
	}
	text, err := p.doc.doc.Text(p.index)
	if err != nil {
		return ""
	}
	return text
}

// Render rasterizes the page at 72 dpi into dst.
func (p *FitzPage) Render(dst draw.Image) error {
	if p.doc.closed {
		return fmt.Errorf("document %s is closed", p.doc.filepath)
	}
	img, err := p.doc.doc.ImageDPI(p.index, 72.0)
	if err != nil {
		return fmt.Errorf("failed to render page %d: %w", p.index+1, err)
	}
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Over)
	return nil
}
