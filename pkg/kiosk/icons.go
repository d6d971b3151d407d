package kiosk

import (
	"go.uber.org/zap"

	"github.com/pyhub-apps/mediakiosk/pkg/browser"
	"github.com/pyhub-apps/mediakiosk/pkg/logging"
	"github.com/pyhub-apps/mediakiosk/pkg/raster"
)

// IconRaster produces the IconSize x IconSize picture of a tile. Image files
// that cannot be decoded get the error asset. The caller owns the result.
func IconRaster(icon browser.Icon, assets *raster.Assets) *raster.Raster {
	var src *raster.Raster
	switch {
	case icon.Path != "":
		r, err := raster.DecodeImageFile(icon.Path)
		if err != nil {
			logging.Debug("kiosk: icon decode failed", zap.String("path", icon.Path), zap.Error(err))
			r = assets.Get(raster.AssetError)
		}
		src = r
	case icon.Raster != nil && !icon.Raster.Released():
		return raster.ScaleToFit(icon.Raster, IconSize, IconSize)
	default:
		src = assets.Get(icon.Asset)
	}
	out := raster.ScaleToFit(src, IconSize, IconSize)
	src.Release()
	return out
}

// IconOffset is where the icon sits inside its tile.
func IconOffset() (x, y int) {
	return TileSize/2 - IconSize/2, TileSize/2 - IconSize/2
}
