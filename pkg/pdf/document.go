package pdf

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pyhub-apps/mediakiosk/pkg/logging"
	"github.com/pyhub-apps/mediakiosk/pkg/metrics"
)

// Backend opens a document with one PDF library.
type Backend struct {
	Name string
	Open func(path string) (Document, error)
}

// Backends is the order Open tries libraries in. MuPDF renders real page
// content; the pure-Go readers recover text and rectangles only, and
// pdfcpu is the last resort for files the others reject.
var Backends = []Backend{
	{Name: "mupdf", Open: OpenWithFitz},
	{Name: "ledongthuc", Open: OpenWithLedongthuc},
	{Name: "dslipak", Open: OpenWithDslipak},
	{Name: "pdfcpu", Open: OpenWithPdfcpu},
}

// Open opens a PDF file with the first backend that accepts it.
// Failures are reported as *DocumentOpenError; a document without pages
// is closed and reported as ErrNoPages.
func Open(path string) (Document, error) {
	return OpenWith(path, Backends...)
}

// OpenWith opens path with the given backends in order.
func OpenWith(path string, backends ...Backend) (Document, error) {
	var errs []error
	for _, b := range backends {
		doc, err := b.Open(path)
		metrics.RecordDocumentOpen(b.Name, err)
		if err != nil {
			logging.Debug("pdf: backend rejected document",
				zap.String("backend", b.Name),
				zap.String("path", path),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", b.Name, err))
			continue
		}

		if doc.PageCount() < 1 {
			doc.Close()
			return nil, &DocumentOpenError{Path: path, Err: ErrNoPages}
		}

		logging.Debug("pdf: document opened",
			zap.String("backend", b.Name),
			zap.String("path", path),
			zap.Int("pages", doc.PageCount()))
		return doc, nil
	}

	if len(errs) == 0 {
		errs = append(errs, errors.New("no backend configured"))
	}
	return nil, &DocumentOpenError{Path: path, Err: errors.Join(errs...)}
}
