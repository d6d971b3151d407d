// Package kiosk wires the browser, document session and viewer together and
// decides what the user sees after every event. It has no toolkit dependency.
package kiosk

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pyhub-apps/mediakiosk/pkg/browser"
	"github.com/pyhub-apps/mediakiosk/pkg/logging"
	"github.com/pyhub-apps/mediakiosk/pkg/metrics"
	"github.com/pyhub-apps/mediakiosk/pkg/raster"
	"github.com/pyhub-apps/mediakiosk/pkg/session"
	"github.com/pyhub-apps/mediakiosk/pkg/viewer"
)

// Dialog shows a modal error message with a single OK button.
type Dialog interface {
	ShowError(message string)
}

// Toolbar is the PDF navigation state shown next to the picture.
type Toolbar struct {
	Visible bool
	Title   string
	Label   string
	CanPrev bool
	CanNext bool
}

// Options configure a Controller.
type Options struct {
	// RootLabel names the top directory of a mounted volume.
	RootLabel string
	// PageWidth and PageHeight are the render target for PDF pages.
	PageWidth  int
	PageHeight int
	// Decode loads image files; raster.DecodeImageFile by default.
	Decode func(path string) (*raster.Raster, error)
}

// Controller owns the current listing, the document session and the viewer.
// All methods must be called from the UI loop.
type Controller struct {
	browser *browser.Browser
	session *session.Session
	viewer  *viewer.Viewer
	dialog  Dialog
	inv     viewer.Invalidator
	opts    Options

	mountRoot string
	node      *browser.Node
	items     []browser.FileItem
	listGen   uint64
	toolbar   Toolbar
}

// New creates a controller and subscribes it to the session's frames.
func New(b *browser.Browser, s *session.Session, v *viewer.Viewer, d Dialog, inv viewer.Invalidator, opts Options) *Controller {
	if opts.RootLabel == "" {
		opts.RootLabel = "Storage device"
	}
	if opts.PageWidth <= 0 || opts.PageHeight <= 0 {
		opts.PageWidth, opts.PageHeight = 595, 842
	}
	if opts.Decode == nil {
		opts.Decode = raster.DecodeImageFile
	}
	c := &Controller{
		browser: b,
		session: s,
		viewer:  v,
		dialog:  d,
		inv:     inv,
		opts:    opts,
	}
	s.Subscribe(c.onFrame)
	return c
}

// MountAdded browses the root of a newly mounted volume.
func (c *Controller) MountAdded(path string) {
	logging.Info("kiosk: volume mounted", zap.String("path", path))
	if c.Open(browser.Root(path, c.opts.RootLabel)) {
		c.mountRoot = path
	}
}

// MountRemoved clears everything that came from the volume at path.
func (c *Controller) MountRemoved(path string) {
	if c.mountRoot == "" || !within(c.mountRoot, path) {
		return
	}
	logging.Info("kiosk: volume removed", zap.String("path", path))

	browser.ReleaseItems(c.items)
	c.items = nil
	c.node = nil
	c.mountRoot = ""
	c.listGen++

	if c.session.IsOpen() && within(c.session.Path(), path) {
		c.closeDocument()
	}
	c.viewer.ShowDefault()
	c.invalidate()
}

// Open lists node and replaces the current listing. On failure the previous
// listing stays and an error dialog is shown.
func (c *Controller) Open(node *browser.Node) bool {
	items, err := c.browser.List(node)
	if err != nil {
		c.fail(err)
		return false
	}
	browser.ReleaseItems(c.items)
	c.items = items
	c.node = node
	c.listGen++
	c.invalidate()
	return true
}

// Activate handles a tap on a tile.
func (c *Controller) Activate(item browser.FileItem) {
	switch item.Kind {
	case browser.KindDirectory:
		if item.Node != nil {
			c.Open(item.Node)
		}
	case browser.KindImage:
		c.showImage(item.Path)
	case browser.KindPdf:
		c.openDocument(item.Path)
	}
}

// ActivateIndex activates the i-th item of the current listing.
func (c *Controller) ActivateIndex(i int) {
	if i < 0 || i >= len(c.items) {
		return
	}
	c.Activate(c.items[i])
}

// NextPage moves the open document forward one page.
func (c *Controller) NextPage() { c.session.NextPage() }

// PrevPage moves the open document back one page.
func (c *Controller) PrevPage() { c.session.PrevPage() }

// Items returns the current listing.
func (c *Controller) Items() []browser.FileItem { return c.items }

// Node returns the listed directory, nil before the first mount.
func (c *Controller) Node() *browser.Node { return c.node }

// ListingGeneration increases whenever the listing is replaced.
func (c *Controller) ListingGeneration() uint64 { return c.listGen }

// HasMedia reports whether a listing is shown; otherwise the insert prompt is.
func (c *Controller) HasMedia() bool { return c.node != nil }

// Toolbar returns the PDF toolbar state.
func (c *Controller) Toolbar() Toolbar { return c.toolbar }

// Viewer returns the picture viewer.
func (c *Controller) Viewer() *viewer.Viewer { return c.viewer }

// Close releases the open document and listing thumbnails.
func (c *Controller) Close() {
	c.closeDocument()
	browser.ReleaseItems(c.items)
	c.items = nil
}

func (c *Controller) showImage(path string) {
	r, err := c.opts.Decode(path)
	if err != nil {
		c.fail(err)
		return
	}
	c.closeDocument()
	c.viewer.ShowImage(r)
	logging.Debug("kiosk: image shown", zap.String("path", path))
}

func (c *Controller) openDocument(path string) {
	if err := c.session.Open(path, c.opts.PageWidth, c.opts.PageHeight); err != nil {
		c.toolbar = Toolbar{}
		c.invalidate()
		c.fail(err)
		return
	}
}

func (c *Controller) closeDocument() {
	if err := c.session.Close(); err != nil {
		logging.Warn("kiosk: closing document failed", zap.Error(err))
	}
	if c.toolbar.Visible {
		c.toolbar = Toolbar{}
		c.invalidate()
	}
}

func (c *Controller) onFrame(f session.Frame) {
	c.viewer.ShowRenderedSurface(f.Surface, c.opts.PageWidth, c.opts.PageHeight)
	c.toolbar = Toolbar{
		Visible: true,
		Title:   f.Title,
		Label:   f.Label,
		CanPrev: f.PageIndex > 0,
		CanNext: f.PageIndex < f.PageCount-1,
	}
	c.invalidate()
}

// fail logs err and shows it in the modal dialog.
func (c *Controller) fail(err error) {
	logging.Warn("kiosk: action failed", zap.Error(err))
	metrics.RecordErrorDialog()
	if c.dialog != nil {
		c.dialog.ShowError(Message(err))
	}
}

func (c *Controller) invalidate() {
	if c.inv != nil {
		c.inv.Invalidate()
	}
}

// within reports whether path is root or below it.
func within(path, root string) bool {
	path, root = filepath.Clean(path), filepath.Clean(root)
	return path == root || strings.HasPrefix(path, strings.TrimSuffix(root, "/")+"/")
}
