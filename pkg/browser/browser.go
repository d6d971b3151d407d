// Package browser turns a directory listing into file items for the icon grid.
package browser

import (
	"fmt"
	"io"
	"io/fs"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/pyhub-apps/mediakiosk/pkg/logging"
	"github.com/pyhub-apps/mediakiosk/pkg/metrics"
	"github.com/pyhub-apps/mediakiosk/pkg/raster"
)

// DirectoryReadError reports a directory that could not be listed.
type DirectoryReadError struct {
	Path string
	Err  error
}

func (e *DirectoryReadError) Error() string {
	return fmt.Sprintf("read directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryReadError) Unwrap() error { return e.Err }

// Icon is what a tile shows: an image file, a ready raster or a built-in asset,
// checked in that order.
type Icon struct {
	Path   string
	Raster *raster.Raster
	Asset  raster.Asset
}

// FileItem is one tile of a listing.
type FileItem struct {
	Label string
	Icon  Icon
	Kind  Kind
	// Back marks the synthetic entry leading to the parent directory.
	Back bool
	// Node is the directory to enter for directory items.
	Node *Node
	// Path is the file to show for image and PDF items.
	Path string
}

// Thumbnailer produces a preview raster for a PDF.
type Thumbnailer interface {
	Thumbnail(path string, width, height int) (*raster.Raster, error)
}

// ThumbnailerFunc adapts a function to Thumbnailer.
type ThumbnailerFunc func(path string, width, height int) (*raster.Raster, error)

// Thumbnail calls f.
func (f ThumbnailerFunc) Thumbnail(path string, width, height int) (*raster.Raster, error) {
	return f(path, width, height)
}

// Browser lists directories.
type Browser struct {
	fs     FileSystem
	thumbs Thumbnailer

	// ShowHidden includes dot-files.
	ShowHidden bool
	// ThumbWidth and ThumbHeight size first-page renders of PDFs without an
	// embedded thumbnail.
	ThumbWidth  int
	ThumbHeight int
	// IconSize is the square size thumbnails are reduced to before they are
	// kept in a listing.
	IconSize int
}

// New returns a browser over fsys. thumbs may be nil, in which case PDFs get
// the built-in PDF icon.
func New(fsys FileSystem, thumbs Thumbnailer) *Browser {
	if fsys == nil {
		fsys = OSFileSystem{}
	}
	return &Browser{
		fs:          fsys,
		thumbs:      thumbs,
		ThumbWidth:  595,
		ThumbHeight: 842,
		IconSize:    122,
	}
}

// List reads node's directory. Entries keep filesystem order; anything that is
// not a directory, image or PDF is skipped. Non-root nodes get a leading back
// item. The directory is read completely before anything is returned.
func (b *Browser) List(node *Node) ([]FileItem, error) {
	entries, err := b.fs.ReadDir(node.Path())
	metrics.RecordListing(err)
	if err != nil {
		logging.Warn("browser: cannot read directory",
			zap.String("path", node.Path()), zap.Error(err))
		return nil, &DirectoryReadError{Path: node.Path(), Err: err}
	}

	items := make([]FileItem, 0, len(entries)+1)
	if parent := node.Parent(); parent != nil {
		items = append(items, FileItem{
			Label: parent.Name(),
			Icon:  Icon{Asset: raster.AssetBack},
			Kind:  KindDirectory,
			Back:  true,
			Node:  parent,
		})
	}

	for _, entry := range entries {
		name := entry.Name()
		if !b.ShowHidden && strings.HasPrefix(name, ".") {
			continue
		}
		item, ok := b.item(node, entry)
		if !ok {
			continue
		}
		metrics.RecordListedItem(item.Kind.String())
		items = append(items, item)
	}

	logging.Debug("browser: listed directory",
		zap.String("path", node.Path()),
		zap.Int("count", len(items)))
	return items, nil
}

func (b *Browser) item(node *Node, entry fs.DirEntry) (FileItem, bool) {
	name := entry.Name()
	label := norm.NFC.String(name)

	if b.isDir(node, entry) {
		return FileItem{
			Label: label,
			Icon:  Icon{Asset: raster.AssetFolder},
			Kind:  KindDirectory,
			Node:  node.Child(name),
		}, true
	}

	path := node.Child(name).Path()
	switch kind := b.classify(path, name); kind {
	case KindImage:
		return FileItem{Label: label, Icon: Icon{Path: path}, Kind: kind, Path: path}, true
	case KindPdf:
		return FileItem{Label: label, Icon: b.pdfIcon(path), Kind: kind, Path: path}, true
	default:
		return FileItem{}, false
	}
}

func (b *Browser) isDir(node *Node, entry fs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := b.fs.Stat(node.Child(entry.Name()).Path())
	return err == nil && info.IsDir()
}

// classify prefers the extension and sniffs content only when the extension
// is unknown.
func (b *Browser) classify(path, name string) Kind {
	if t := MimeByName(name); t != "" {
		return KindOf(t)
	}

	f, err := b.fs.Open(path)
	if err != nil {
		logging.Debug("browser: cannot sniff entry", zap.String("path", path), zap.Error(err))
		return KindOther
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		logging.Debug("browser: cannot sniff entry", zap.String("path", path), zap.Error(err))
		return KindOther
	}
	t := MimeByContent(head[:n])
	if t == "" {
		logging.Debug("browser: unknown content type", zap.String("path", path))
		return KindOther
	}
	return KindOf(t)
}

func (b *Browser) pdfIcon(path string) Icon {
	if b.thumbs == nil {
		return Icon{Asset: raster.AssetPDF}
	}
	r, err := b.thumbs.Thumbnail(path, b.ThumbWidth, b.ThumbHeight)
	if err != nil || r == nil {
		logging.Debug("browser: no PDF preview", zap.String("path", path), zap.Error(err))
		return Icon{Asset: raster.AssetPDF}
	}
	if b.IconSize > 0 && (r.Width() != b.IconSize || r.Height() != b.IconSize) {
		icon := raster.ScaleToFit(r, b.IconSize, b.IconSize)
		r.Release()
		r = icon
	}
	return Icon{Raster: r}
}

// ReleaseItems releases thumbnail rasters held by items.
func ReleaseItems(items []FileItem) {
	for i := range items {
		if r := items[i].Icon.Raster; r != nil {
			r.Release()
		}
	}
}
