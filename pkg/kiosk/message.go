package kiosk

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/pyhub-apps/mediakiosk/pkg/browser"
	"github.com/pyhub-apps/mediakiosk/pkg/pdf"
	"github.com/pyhub-apps/mediakiosk/pkg/raster"
)

// Message turns an error into the text of the error dialog.
func Message(err error) string {
	var (
		decodeErr *raster.DecodeError
		openErr   *pdf.DocumentOpenError
		readErr   *browser.DirectoryReadError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &decodeErr):
		return fmt.Sprintf("The picture %q cannot be displayed.", filepath.Base(decodeErr.Path))
	case errors.Is(err, pdf.ErrNoPages) && errors.As(err, &openErr):
		return fmt.Sprintf("The document %q has no pages.", filepath.Base(openErr.Path))
	case errors.As(err, &openErr):
		return fmt.Sprintf("No preview available for %q.", filepath.Base(openErr.Path))
	case errors.As(err, &readErr):
		return fmt.Sprintf("The folder %q cannot be read.", filepath.Base(readErr.Path))
	}
	return err.Error()
}
