// Package mediakiosk renders pictures and PDF pages for a removable-media
// kiosk. It re-exports the document and raster APIs used by the kiosk so
// tools can reuse the exact same rendering path.
package mediakiosk

import (
	"github.com/pyhub-apps/mediakiosk/pkg/pdf"
	"github.com/pyhub-apps/mediakiosk/pkg/raster"
	"github.com/pyhub-apps/mediakiosk/pkg/viewer"
)

// Re-export types for the public API
type (
	Document          = pdf.Document
	Page              = pdf.Page
	Metadata          = pdf.Metadata
	BoundingBox       = pdf.BoundingBox
	Backend           = pdf.Backend
	DocumentOpenError = pdf.DocumentOpenError
	PageRangeError    = pdf.PageRangeError
	Raster            = raster.Raster
	DecodeError       = raster.DecodeError
	Fit               = viewer.Fit
)

// ErrNoPages is returned, wrapped in a DocumentOpenError, for documents
// without pages.
var ErrNoPages = pdf.ErrNoPages

// Open opens a PDF with the first backend that accepts it
func Open(filepath string) (Document, error) {
	return pdf.Open(filepath)
}

// OpenWithFitz opens a PDF with MuPDF
func OpenWithFitz(filepath string) (Document, error) {
	return pdf.OpenWithFitz(filepath)
}

// OpenWithLedongthuc opens a PDF using the ledongthuc/pdf library
func OpenWithLedongthuc(filepath string) (Document, error) {
	return pdf.OpenWithLedongthuc(filepath)
}

// OpenWithDslipak opens a PDF using the dslipak/pdf library
func OpenWithDslipak(filepath string) (Document, error) {
	return pdf.OpenWithDslipak(filepath)
}

// OpenWithPdfcpu opens a PDF using pdfcpu, interpreting page content itself
func OpenWithPdfcpu(filepath string) (Document, error) {
	return pdf.OpenWithPdfcpu(filepath)
}

// RenderPage renders page index of doc onto a white width x height raster at
// 72 dpi, clipping pages larger than the target.
func RenderPage(doc Document, index, width, height int) (*Raster, error) {
	return pdf.RenderPage(doc, index, width, height)
}

// RenderThumbnail returns the embedded thumbnail of the first page, or a
// render of it.
func RenderThumbnail(path string, width, height int) (*Raster, error) {
	return pdf.RenderThumbnail(path, width, height)
}

// DecodeImageFile decodes a picture file honoring its EXIF orientation.
func DecodeImageFile(path string) (*Raster, error) {
	return raster.DecodeImageFile(path)
}

// ScaleToFit resamples r to exactly width x height.
func ScaleToFit(r *Raster, width, height int) *Raster {
	return raster.ScaleToFit(r, width, height)
}

// ComputeFit returns the letterbox geometry of content in a viewport.
func ComputeFit(viewportW, viewportH, contentW, contentH int) Fit {
	return viewer.ComputeFit(viewportW, viewportH, contentW, contentH)
}
