package pdf

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"go.uber.org/zap"

	"github.com/pyhub-apps/mediakiosk/pkg/logging"
)

// PDFCPUDocument implements the Document interface using pdfcpu. Pages are
// interpreted from their content streams when first requested.
type PDFCPUDocument struct {
	ctx      *model.Context
	filepath string
	metadata Metadata
	pages    map[int]Page
	closed   bool
}

// OpenWithPdfcpu opens a PDF file using the pdfcpu library
func OpenWithPdfcpu(filepath string) (doc Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = nil, fmt.Errorf("failed to read PDF with pdfcpu: %v", rec)
		}
	}()

	ctx, err := api.ReadContextFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	d := &PDFCPUDocument{
		ctx:      ctx,
		filepath: filepath,
		pages:    make(map[int]Page),
	}
	if err := api.ValidateContext(ctx); err != nil {
		// Unvalidated documents still render; only the info dictionary is lost.
		logging.Debug("pdf: pdfcpu validation failed", zap.String("path", filepath), zap.Error(err))
	} else {
		d.metadata = Metadata{
			Title:    ctx.Title,
			Author:   ctx.Author,
			Subject:  ctx.Subject,
			Creator:  ctx.Creator,
			Producer: ctx.Producer,
		}
	}
	return d, nil
}

// GetMetadata returns the PDF metadata
func (d *PDFCPUDocument) GetMetadata() Metadata {
	return d.metadata
}

// PageCount returns the total number of pages
func (d *PDFCPUDocument) PageCount() int {
	if d.ctx == nil {
		return 0
	}
	return d.ctx.PageCount
}

// GetPage returns a specific page by index (0-based)
func (d *PDFCPUDocument) GetPage(index int) (Page, error) {
	if d.closed {
		return nil, fmt.Errorf("document %s is closed", d.filepath)
	}
	if err := checkPageIndex(index, d.PageCount()); err != nil {
		return nil, err
	}
	if p, ok := d.pages[index]; ok {
		return p, nil
	}
	p, err := NewPDFCPUPage(d.ctx, index+1)
	if err != nil {
		return nil, err
	}
	d.pages[index] = p
	return p, nil
}

// Close releases the parsed document
func (d *PDFCPUDocument) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.ctx = nil
	d.pages = nil
	return nil
}

// NewPDFCPUPage interprets the content streams of one page
func NewPDFCPUPage(ctx *model.Context, pageNumber int) (page Page, err error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is nil")
	}
	if pageNumber < 1 || pageNumber > ctx.PageCount {
		return nil, fmt.Errorf("page number %d out of range [1, %d]", pageNumber, ctx.PageCount)
	}
	defer recoverContent(pageNumber, &err)

	pageDict, _, attrs, err := ctx.PageDict(pageNumber, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get page dict: %w", err)
	}
	if pageDict == nil {
		return nil, fmt.Errorf("page %d not found", pageNumber)
	}

	width, height := defaultPageWidth, defaultPageHeight
	resources := types.Dict(nil)
	if attrs != nil {
		if attrs.MediaBox != nil {
			width, height = attrs.MediaBox.Width(), attrs.MediaBox.Height()
		}
		resources = attrs.Resources
	}

	content, err := pageContent(ctx, pageDict)
	if err != nil {
		return nil, err
	}
	objects := parseContent(content, height, pageFonts(ctx, resources))
	return NewObjectPage(pageNumber, width, height, objects), nil
}

// pageContent concatenates the decoded content streams of a page.
func pageContent(ctx *model.Context, pageDict types.Dict) ([]byte, error) {
	obj, found := pageDict.Find("Contents")
	if !found || obj == nil {
		return nil, nil
	}

	if sd, _, err := ctx.DereferenceStreamDict(obj); err == nil && sd != nil {
		return decodeStream(sd)
	}

	arr, err := ctx.DereferenceArray(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference content: %w", err)
	}
	var combined []byte
	for _, item := range arr {
		sd, _, err := ctx.DereferenceStreamDict(item)
		if err != nil || sd == nil {
			continue
		}
		data, err := decodeStream(sd)
		if err != nil {
			continue
		}
		combined = append(combined, data...)
		combined = append(combined, '\n')
	}
	return combined, nil
}

// decodeStream decodes a stream dictionary
func decodeStream(sd *types.StreamDict) ([]byte, error) {
	if len(sd.Content) > 0 {
		return sd.Content, nil
	}
	if err := sd.Decode(); err != nil {
		return nil, fmt.Errorf("failed to decode stream: %w", err)
	}
	return sd.Content, nil
}

// pageFonts collects the font resources of a page with their ToUnicode maps.
func pageFonts(ctx *model.Context, resources types.Dict) map[string]*pageFont {
	fonts := make(map[string]*pageFont)
	if resources == nil {
		return fonts
	}
	obj, found := resources.Find("Font")
	if !found {
		return fonts
	}
	fontDict, err := ctx.DereferenceDict(obj)
	if err != nil || fontDict == nil {
		return fonts
	}

	for name, ref := range fontDict {
		fd, err := ctx.DereferenceDict(ref)
		if err != nil || fd == nil {
			continue
		}
		f := &pageFont{}
		if base := fd.NameEntry("BaseFont"); base != nil {
			f.name = *base
		}
		if sub := fd.NameEntry("Subtype"); sub != nil && *sub == "Type0" {
			f.twoByte = true
		}
		if tu, found := fd.Find("ToUnicode"); found {
			if sd, _, err := ctx.DereferenceStreamDict(tu); err == nil && sd != nil {
				if data, err := decodeStream(sd); err == nil {
					f.toUnicode = parseToUnicode(data)
				}
			}
		}
		fonts[name] = f
	}
	return fonts
}
