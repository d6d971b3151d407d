package pdf

import (
	"image/draw"
)

// Document is an open PDF. It owns native resources until Close.
type Document interface {
	// GetMetadata returns the PDF metadata
	GetMetadata() Metadata

	// PageCount returns the total number of pages
	PageCount() int

	// GetPage returns a specific page by index (0-based)
	GetPage(index int) (Page, error)

	// Close releases resources associated with the document
	Close() error
}

// Page is a single page of an open Document. It is only valid while the
// document is open.
type Page interface {
	// GetPageNumber returns the page number (1-based)
	GetPageNumber() int

	// GetWidth returns the page width in points
	GetWidth() float64

	// GetHeight returns the page height in points
	GetHeight() float64

	// GetBBox returns the page bounding box
	GetBBox() BoundingBox

	// ExtractText returns the page text in content order
	ExtractText() string

	// Render draws the page at 72 dpi with its top-left corner at
	// dst.Bounds().Min. Content outside dst is clipped.
	Render(dst draw.Image) error
}
