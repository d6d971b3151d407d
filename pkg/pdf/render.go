package pdf

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"go.uber.org/zap"

	"github.com/pyhub-apps/mediakiosk/pkg/logging"
	"github.com/pyhub-apps/mediakiosk/pkg/metrics"
	"github.com/pyhub-apps/mediakiosk/pkg/raster"
)

// RenderPage renders page index of doc into a new width x height raster.
// The raster is filled white and the page is drawn at its native 72 dpi size
// from the top-left corner: larger pages are clipped, smaller ones leave a margin.
func RenderPage(doc Document, index, width, height int) (*raster.Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid render target %dx%d", width, height)
	}
	page, err := doc.GetPage(index)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out := raster.New(width, height, color.White)
	if err := page.Render(out.RGBA()); err != nil {
		out.Release()
		return nil, fmt.Errorf("failed to render page %d: %w", index+1, err)
	}
	metrics.ObservePageRender(time.Since(start))
	return out, nil
}

// RenderThumbnail returns the document's embedded thumbnail, or a render of
// the first page at width x height when there is none. It fails when the
// document cannot be opened or its first page cannot be rendered.
func RenderThumbnail(path string, width, height int) (*raster.Raster, error) {
	thumb, err := EmbeddedThumbnail(path)
	if err == nil {
		return thumb, nil
	}
	if !errors.Is(err, ErrNoThumbnail) {
		logging.Debug("pdf: embedded thumbnail unavailable",
			zap.String("path", path), zap.Error(err))
	}

	doc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	r, err := RenderPage(doc, 0, width, height)
	if err != nil {
		logging.Warn("pdf: thumbnail render failed",
			zap.String("path", path), zap.Error(err))
		return nil, err
	}
	return r, nil
}
