package mediakiosk

import (
	"errors"
	"image/color"
	"strings"
	"testing"
)

const samplePDF = "pkg/pdf/testdata/sample.pdf"

func TestOpenWithLedongthuc(t *testing.T) {
	doc, err := OpenWithLedongthuc(samplePDF)
	if err != nil {
		t.Fatalf("Failed to open PDF: %v", err)
	}
	defer doc.Close()

	if doc.PageCount() != 2 {
		t.Errorf("Expected 2 pages, got %d", doc.PageCount())
	}

	page, err := doc.GetPage(0)
	if err != nil {
		t.Fatalf("Failed to get page: %v", err)
	}
	if !strings.Contains(page.ExtractText(), "Hello") {
		t.Errorf("Expected text to contain Hello, got: %s", page.ExtractText())
	}
}

func TestRenderPageThroughRootAPI(t *testing.T) {
	doc, err := OpenWithDslipak(samplePDF)
	if err != nil {
		t.Fatalf("Failed to open PDF: %v", err)
	}
	defer doc.Close()

	r, err := RenderPage(doc, 0, 595, 842)
	if err != nil {
		t.Fatalf("RenderPage failed: %v", err)
	}
	defer r.Release()
	if r.Width() != 595 || r.Height() != 842 {
		t.Errorf("Expected 595x842 raster, got %dx%d", r.Width(), r.Height())
	}
	// Outside the 200x100 page the target stays white.
	if got := r.RGBA().RGBAAt(400, 600); got != (color.RGBA{0xff, 0xff, 0xff, 0xff}) {
		t.Errorf("Expected white margin, got %v", got)
	}

	var rangeErr *PageRangeError
	if _, err := RenderPage(doc, 5, 10, 10); !errors.As(err, &rangeErr) {
		t.Errorf("Expected PageRangeError, got %v", err)
	}
}

func TestDecodeMissingImage(t *testing.T) {
	_, err := DecodeImageFile("does-not-exist.png")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Expected DecodeError, got %v", err)
	}
}

func TestComputeFit(t *testing.T) {
	f := ComputeFit(800, 600, 1600, 300)
	if f.Scale != 0.5 || f.OffsetX != 0 || f.OffsetY != 225 {
		t.Errorf("Unexpected fit %+v", f)
	}
}
