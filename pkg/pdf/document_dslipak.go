package pdf

import (
	"fmt"
	"os"

	gopdf "github.com/dslipak/pdf"
)

// DsliPakDocument implements the Document interface using dslipak/pdf library
type DsliPakDocument struct {
	file     *os.File
	reader   *gopdf.Reader
	filepath string
	metadata Metadata
	closed   bool
}

// OpenWithDslipak opens a PDF file using the dslipak/pdf library. The file
// handle is kept so Close can release it.
func OpenWithDslipak(filepath string) (doc Document, err error) {
	f, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = nil, fmt.Errorf("failed to read PDF with dslipak: %v", rec)
		}
		if err != nil {
			f.Close()
		}
	}()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	r, err := gopdf.NewReader(f, fi.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF with dslipak: %w", err)
	}

	d := &DsliPakDocument{
		file:     f,
		reader:   r,
		filepath: filepath,
	}
	d.extractMetadata()
	return d, nil
}

// extractMetadata reads the trailer's Info dictionary
func (d *DsliPakDocument) extractMetadata() {
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
func (d *DsliPakDocument) GetMetadata() Metadata {
	return d.metadata
}

// PageCount returns the total number of pages
func (d *DsliPakDocument) PageCount() int {
	return d.reader.NumPage()
}

// GetPage returns a specific page by index (0-based)
func (d *DsliPakDocument) GetPage(index int) (Page, error) {
	if d.closed {
		return nil, fmt.Errorf("document %s is closed", d.filepath)
	}
	if err := checkPageIndex(index, d.PageCount()); err != nil {
		return nil, err
	}
	return NewDsliPakPage(d.reader, index+1)
}

// Close releases resources associated with the document
func (d *DsliPakDocument) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.file.Close()
}

// NewDsliPakPage extracts the drawable objects of one page
func NewDsliPakPage(reader *gopdf.Reader, pageNumber int) (page Page, err error) {
	if pageNumber < 1 || pageNumber > reader.NumPage() {
		return nil, fmt.Errorf("invalid page number: %d", pageNumber)
	}
	defer recoverContent(pageNumber, &err)

	p := reader.Page(pageNumber)

	width, height := defaultPageWidth, defaultPageHeight
	mediaBox := p.V.Key("MediaBox")
	if mediaBox.Kind() == gopdf.Array && mediaBox.Len() == 4 {
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
